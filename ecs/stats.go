package ecs

import (
	"slices"
	"time"
)

// WorldStats is a point-in-time summary of a World.
type WorldStats struct {
	Key              int
	TotalEntityCount int
	DisabledEntities int
	ComponentCount   int
	TypeCount        int
	SingletonCount   int
	SystemCount      int
	ExecuteFrames    uint64
	UpdateFrames     uint64
	TypeBreakdown    []TypeStats
	SingletonTypes   []string
	PooledEntities   map[string]int
	PooledComponents map[string]int
}

// TypeStats counts the entities indexed under one component type name.
type TypeStats struct {
	Name        string
	Bit         int
	EntityCount int
}

// SystemStats provides execution statistics for a single system. Durations
// cover one frame-driver call: timers and the before, main and after hooks.
type SystemStats struct {
	Name          string
	Priority      int
	Enabled       bool
	ExecuteCalls  int64
	UpdateCalls   int64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	AvgDuration   time.Duration
	LastDuration  time.Duration
	TotalDuration time.Duration
	PendingTimers int
}

// CollectStats summarizes the World.
func (w *World) CollectStats() *WorldStats {
	stats := &WorldStats{
		Key:              w.key,
		TotalEntityCount: w.entities.Len(),
		SingletonCount:   len(w.singletons),
		SystemCount:      w.systems.Len(),
		ExecuteFrames:    w.executeFrames,
		UpdateFrames:     w.updateFrames,
		SingletonTypes:   w.Singletons(),
		PooledEntities:   make(map[string]int, len(w.entityPool)),
		PooledComponents: make(map[string]int, len(w.componentPool)),
	}

	for _, e := range w.entities.entities {
		if !e.enabled {
			stats.DisabledEntities++
		}
		stats.ComponentCount += e.Len()
	}

	for _, name := range w.index.Names() {
		bit, _ := w.registry.flags.Bit(name)
		stats.TypeBreakdown = append(stats.TypeBreakdown, TypeStats{
			Name:        name,
			Bit:         bit,
			EntityCount: w.index.Len(name),
		})
	}
	stats.TypeCount = len(stats.TypeBreakdown)

	for name, pool := range w.entityPool {
		if len(pool) > 0 {
			stats.PooledEntities[name] = len(pool)
		}
	}
	for name, pool := range w.componentPool {
		if len(pool) > 0 {
			stats.PooledComponents[name] = len(pool)
		}
	}
	return stats
}

// SystemStats returns execution statistics for every system in execution
// order.
func (w *World) SystemStats() []SystemStats {
	out := make([]SystemStats, 0, w.systems.Len())
	for _, s := range w.systems.systems {
		b := s.systemBase()
		st := SystemStats{
			Name:          b.name,
			Priority:      b.priority,
			Enabled:       !b.disabled,
			ExecuteCalls:  b.stats.executeCalls,
			UpdateCalls:   b.stats.updateCalls,
			MinDuration:   b.stats.minDuration,
			MaxDuration:   b.stats.maxDuration,
			LastDuration:  b.stats.lastDuration,
			TotalDuration: b.stats.total,
			PendingTimers: b.executeTimers.Len() + b.updateTimers.Len(),
		}
		if calls := st.ExecuteCalls + st.UpdateCalls; calls > 0 {
			st.AvgDuration = b.stats.total / time.Duration(calls)
		}
		out = append(out, st)
	}
	return out
}

// Slowest returns up to n systems ordered by average duration, slowest first.
func Slowest(stats []SystemStats, n int) []SystemStats {
	sorted := slices.Clone(stats)
	slices.SortStableFunc(sorted, func(a, b SystemStats) int {
		switch {
		case a.AvgDuration > b.AvgDuration:
			return -1
		case a.AvgDuration < b.AvgDuration:
			return 1
		}
		return 0
	})
	return sorted[:min(n, len(sorted))]
}
