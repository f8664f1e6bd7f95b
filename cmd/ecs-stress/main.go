package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/plus3/flagecs/ecs"
	"github.com/plus3/flagecs/ecs/manifest"
	"github.com/plus3/flagecs/ecs/script"
	"github.com/plus3/flagecs/internal/config"
	"github.com/plus3/flagecs/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "TOML config file. Defaults are used when empty.")
	duration := flag.Duration("duration", 0, "Overrides stress.duration when set.")
	flag.Parse()

	if err := run(*configPath, *duration); err != nil {
		fmt.Fprintf(os.Stderr, "ecs-stress: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, duration time.Duration) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if duration > 0 {
		cfg.Stress.Duration = duration
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	log.Info("starting ECS stress test",
		zap.Int("entities", cfg.Stress.Entities),
		zap.Int("components", cfg.Stress.Components),
		zap.Int("systems", cfg.Stress.Systems),
		zap.Int("worlds", cfg.Worlds.Count+1))

	// 1. Registry, generated types and systems
	rng := rand.New(rand.NewPCG(uint64(cfg.Stress.Seed), 0))
	registry := ecs.NewRegistry(ecs.WithLogger(log), ecs.WithMaxWords(cfg.Engine.MaxFlagWords))

	generated := generateManifest(cfg.Stress, rng)
	if err := manifest.Register(registry, generated); err != nil {
		return err
	}
	if cfg.Engine.Manifest != "" {
		extra, err := manifest.Load(cfg.Engine.Manifest)
		if err != nil {
			return err
		}
		if err := manifest.Register(registry, extra); err != nil {
			return err
		}
		log.Info("manifest loaded", zap.String("path", cfg.Engine.Manifest),
			zap.Int("components", len(extra.Components)), zap.Int("entities", len(extra.Entities)))
	}
	systems := registerChurnSystems(registry, cfg.Stress, generated, rng)

	var engine *script.Engine
	if cfg.Script.Dir != "" {
		engine = script.NewEngine(log)
		defer engine.Close()
		if err := engine.LoadDir(cfg.Script.Dir); err != nil {
			return err
		}
		engine.Register(registry)
	}

	// 2. Worlds
	worlds := ecs.NewWorlds(registry)
	for key := 1; key <= cfg.Worlds.Count; key++ {
		worlds.Get(key)
	}
	for _, w := range worlds.All() {
		for i, name := range systems {
			w.AddSystem(name, i%5)
		}
		if engine != nil {
			engine.AddTo(w)
		}
	}

	log.Info("populating worlds", zap.Int("entities", cfg.Stress.Entities))
	kinds := generated.Entities
	for i := 0; i < cfg.Stress.Entities; i++ {
		kind := kinds[rng.IntN(len(kinds))].Name
		worlds.CreateEntity(kind, ecs.InWorld(i%worlds.Len()))
	}
	log.Info("population complete")

	// 3. Simulation loop
	report := &Report{
		Duration:       cfg.Stress.Duration,
		Entities:       cfg.Stress.Entities,
		Components:     cfg.Stress.Components,
		Systems:        cfg.Stress.Systems,
		Worlds:         worlds.Len(),
		GCPauseMetrics: cfg.Stress.GCPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation", zap.Duration("duration", cfg.Stress.Duration))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()

	var tick <-chan time.Time
	if cfg.Stress.TickInterval > 0 {
		ticker := time.NewTicker(cfg.Stress.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				break Loop
			case <-tick:
			}
		} else if ctx.Err() != nil {
			break Loop
		}

		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()
		dt := float64(deltaTime) / float64(time.Second)

		updateStart := time.Now()
		worlds.ExecuteAll(dt)
		worlds.UpdateAll(dt)
		updateDuration := time.Since(updateStart)

		report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
		totalUpdates++
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Collect(worlds, 5)

	log.Info("simulation finished", zap.Int64("frames", totalUpdates))

	// 4. Report
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}

func startProfile(cfg config.ProfileConfig) interface{ Stop() } {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "allocs":
		mode = profile.MemProfileAllocs
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	case "trace":
		mode = profile.TraceProfile
	default:
		return nil
	}
	return profile.Start(mode, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
}
