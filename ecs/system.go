package ecs

import "time"

// System is a logic unit driven by a World's frame phases. User systems embed
// SystemBase and implement any of these optional hooks:
//
//	OnEnable(w *World)             // after the system joins the world
//	OnDisable(w *World)            // before the system leaves the world
//	BeforeExecute(args ...any)     // Execute before-phase, after timers
//	Execute(args ...any)           // Execute main phase
//	AfterExecute(args ...any)      // Execute after-phase
//	BeforeUpdate(args ...any)      // Update before-phase, after timers
//	Update(args ...any)            // Update main phase
//	AfterUpdate(args ...any)       // Update after-phase
//
// Systems keep no entity identity; they find entities through World.Filter.
type System interface {
	systemBase() *SystemBase
}

// SystemBase holds the engine-managed state of a system.
type SystemBase struct {
	name          string
	world         *World
	priority      int
	disabled      bool
	executeTimers Timers
	updateTimers  Timers
	stats         systemStatsInternal
}

func (s *SystemBase) systemBase() *SystemBase { return s }

// Name returns the name the system was added under.
func (s *SystemBase) Name() string { return s.name }

// World returns the World the system belongs to, or nil before it is added.
func (s *SystemBase) World() *World { return s.world }

// Priority returns the priority the system was added with.
func (s *SystemBase) Priority() int { return s.priority }

// ExecuteTimers returns the timers drained at the start of every Execute.
func (s *SystemBase) ExecuteTimers() *Timers { return &s.executeTimers }

// UpdateTimers returns the timers drained at the start of every Update.
func (s *SystemBase) UpdateTimers() *Timers { return &s.updateTimers }

// SetEnabled pauses or resumes the system's hooks and timers.
func (s *SystemBase) SetEnabled(enabled bool) { s.disabled = !enabled }

// Enabled reports whether the system runs.
func (s *SystemBase) Enabled() bool { return !s.disabled }

type systemEnabler interface {
	OnEnable(w *World)
}

type systemDisabler interface {
	OnDisable(w *World)
}

type beforeExecutor interface {
	BeforeExecute(args ...any)
}

type executor interface {
	Execute(args ...any)
}

type afterExecutor interface {
	AfterExecute(args ...any)
}

type beforeUpdater interface {
	BeforeUpdate(args ...any)
}

type updater interface {
	Update(args ...any)
}

type afterUpdater interface {
	AfterUpdate(args ...any)
}

type systemStatsInternal struct {
	executeCalls int64
	updateCalls  int64
	minDuration  time.Duration
	maxDuration  time.Duration
	lastDuration time.Duration
	total        time.Duration
	current      time.Duration
}

func (s *systemStatsInternal) commit() {
	d := s.current
	s.current = 0
	if s.executeCalls+s.updateCalls == 1 || d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
	s.lastDuration = d
	s.total += d
}
