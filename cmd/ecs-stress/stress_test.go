package main

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/flagecs/ecs"
	"github.com/plus3/flagecs/ecs/manifest"
	"github.com/plus3/flagecs/internal/config"
)

func TestGenerateManifest(t *testing.T) {
	cfg := config.Default().Stress
	cfg.Components = 50

	a := generateManifest(cfg, rand.New(rand.NewPCG(7, 0)))
	b := generateManifest(cfg, rand.New(rand.NewPCG(7, 0)))
	assert.Equal(t, a, b, "same seed, same types")

	require.Len(t, a.Components, 50)
	assert.Equal(t, "C008", a.Components[9].Extends)
	assert.Equal(t, []string{"C000"}, a.Components[24].Mixins)
	assert.Len(t, a.Entities, entityKinds)
	for _, kind := range a.Entities {
		assert.NotEmpty(t, kind.Components)
	}
}

func TestChurnWorld(t *testing.T) {
	cfg := config.Default().Stress
	cfg.Components = 40
	cfg.Systems = 4
	cfg.ChurnPerFrame = 20
	rng := rand.New(rand.NewPCG(3, 0))

	registry := ecs.NewRegistry(ecs.WithMaxWords(2))
	m := generateManifest(cfg, rng)
	require.NoError(t, manifest.Register(registry, m))
	names := registerChurnSystems(registry, cfg, m, rng)
	require.Len(t, names, 4)

	worlds := ecs.NewWorlds(registry)
	worlds.Get(1)
	for _, w := range worlds.All() {
		for _, name := range names {
			require.NotNil(t, w.AddSystem(name))
		}
	}
	for i := 0; i < 200; i++ {
		worlds.CreateEntity(m.Entities[i%len(m.Entities)].Name, ecs.InWorld(i%2))
	}

	for frame := 0; frame < 50; frame++ {
		worlds.ExecuteAll(0.016)
		worlds.UpdateAll(0.016)
	}

	report := &Report{Duration: time.Second, Worlds: worlds.Len()}
	report.Collect(worlds, 3)
	require.Len(t, report.WorldStats, 2)
	assert.Len(t, report.Slowest, 3)
	for _, ws := range report.WorldStats {
		assert.Equal(t, uint64(50), ws.ExecuteFrames)
		assert.Equal(t, 4, ws.SystemCount)
	}

	var out bytes.Buffer
	require.NoError(t, report.Generate(&out))
	assert.Contains(t, out.String(), "## Worlds")
	assert.Contains(t, out.String(), "## Slowest Systems")
	assert.Contains(t, out.String(), "Churn")
}

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 2 * time.Millisecond}}
	s.Finalize()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 3*time.Millisecond, s.Max)
	assert.Equal(t, 2*time.Millisecond, s.Avg)
}
