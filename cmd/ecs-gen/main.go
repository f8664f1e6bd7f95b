// Command ecs-gen turns a YAML component manifest into typed Go components and
// a RegisterTypes function.
//
//	ecs-gen -in types.yaml -out types_gen.go -pkg game
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plus3/flagecs/ecs/manifest"
)

func main() {
	in := flag.String("in", "", "The YAML manifest to read.")
	out := flag.String("out", "", "The Go file to write. Stdout when empty.")
	pkg := flag.String("pkg", "", "The package name. Defaults to the output directory name.")
	flag.Parse()

	if err := run(*in, *out, *pkg); err != nil {
		fmt.Fprintf(os.Stderr, "ecs-gen: %v\n", err)
		os.Exit(1)
	}
}

func run(in, out, pkg string) error {
	if in == "" {
		return fmt.Errorf("-in is required")
	}
	m, err := manifest.Load(in)
	if err != nil {
		return err
	}
	if pkg == "" {
		pkg = "main"
		if out != "" {
			if abs, err := filepath.Abs(out); err == nil {
				pkg = filepath.Base(filepath.Dir(abs))
			}
		}
	}

	src, err := Generate(m, pkg, filepath.Base(in))
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(src)
		return err
	}
	return os.WriteFile(out, src, 0o644)
}
