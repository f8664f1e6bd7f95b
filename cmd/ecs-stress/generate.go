package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/plus3/flagecs/ecs"
	"github.com/plus3/flagecs/ecs/manifest"
	"github.com/plus3/flagecs/internal/config"
)

const entityKinds = 16

// generateManifest describes cfg.Components component types named C000...
// Every tenth type extends the one before it, every twenty-fifth mixes in
// C000, and a PoolableRatio share is pooled. Entity kinds carry one to five
// random components each.
func generateManifest(cfg config.StressConfig, rng *rand.Rand) *manifest.Manifest {
	m := &manifest.Manifest{}
	for i := 0; i < cfg.Components; i++ {
		c := manifest.Component{
			Name:   componentName(i),
			Pooled: rng.Float64() < cfg.PoolableRatio,
			Fields: []manifest.Field{{Name: "value", Type: "int", Default: i}},
		}
		if i%10 == 9 {
			c.Extends = componentName(i - 1)
		}
		if i%25 == 24 {
			c.Mixins = []string{componentName(0)}
		}
		m.Components = append(m.Components, c)
	}

	for k := 0; k < entityKinds; k++ {
		kind := manifest.Entity{Name: fmt.Sprintf("Kind%02d", k), Pooled: k%2 == 0}
		for n := rng.IntN(5) + 1; n > 0; n-- {
			kind.Components = append(kind.Components, componentName(rng.IntN(cfg.Components)))
		}
		m.Entities = append(m.Entities, kind)
	}
	return m
}

func componentName(i int) string {
	return fmt.Sprintf("C%03d", i)
}

// registerChurnSystems registers cfg.Systems churn systems and returns their
// names.
func registerChurnSystems(registry *ecs.Registry, cfg config.StressConfig, m *manifest.Manifest, rng *rand.Rand) []string {
	budget := 1
	if cfg.Systems > 0 {
		budget = max(1, cfg.ChurnPerFrame/cfg.Systems)
	}
	kinds := make([]string, len(m.Entities))
	for i, e := range m.Entities {
		kinds[i] = e.Name
	}

	names := make([]string, 0, cfg.Systems)
	for i := 0; i < cfg.Systems; i++ {
		name := fmt.Sprintf("Churn%02d", i)
		include := componentName(rng.IntN(cfg.Components))
		exclude := componentName(rng.IntN(cfg.Components))
		toggle := componentName(rng.IntN(cfg.Components))
		seed := rng.Uint64()
		registry.RegisterSystem(name, func() ecs.System {
			return &churnSystem{
				rng:     rand.New(rand.NewPCG(seed, uint64(i))),
				include: include,
				exclude: exclude,
				toggle:  toggle,
				kinds:   kinds,
				budget:  budget,
			}
		})
		names = append(names, name)
	}
	return names
}
