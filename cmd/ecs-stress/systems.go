package main

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/plus3/flagecs/ecs"
	"github.com/plus3/flagecs/ecs/manifest"
)

// churnSystem reshapes entities every frame: it toggles a component it owns on
// entities matching its filter and replaces a few of them with fresh ones.
type churnSystem struct {
	ecs.SystemBase
	rng     *rand.Rand
	include string
	exclude string
	toggle  string
	kinds   []string
	budget  int

	added, removed, respawned int
}

func (s *churnSystem) OnEnable(w *ecs.World) {
	s.UpdateTimers().Repeat(120, 0, func(...any) {
		w.Logger().Debug("churn audit",
			zap.String("system", s.Name()),
			zap.String("filter", w.Filter().All(s.include).Exclude(s.exclude).Describe()),
			zap.Int("matches", w.Filter().All(s.include).Exclude(s.exclude).Count()),
			zap.Int("added", s.added),
			zap.Int("removed", s.removed),
			zap.Int("respawned", s.respawned))
	})
}

func (s *churnSystem) Execute(args ...any) {
	w := s.World()
	matches := w.Filter().All(s.include).Exclude(s.exclude).Query()
	if len(matches) == 0 {
		w.CreateEntity(s.kinds[s.rng.IntN(len(s.kinds))]).AddComponentFor(s.include, s)
		s.respawned++
		return
	}

	for n := 0; n < s.budget; n++ {
		e := matches[s.rng.IntN(len(matches))]
		switch {
		case s.rng.IntN(10) == 0:
			w.Commands().Destroy(e.ID())
			w.CreateEntity(s.kinds[s.rng.IntN(len(s.kinds))])
			s.respawned++
		case e.RemoveComponentFor(s.toggle, s):
			s.removed++
		default:
			if e.AddComponentFor(s.toggle, s) != nil {
				s.added++
			}
		}
	}
}

func (s *churnSystem) Update(args ...any) {
	e := s.World().Filter().Any(s.include, s.toggle).Find()
	if e == nil {
		return
	}
	if data, ok := e.GetComponent(s.include).(*manifest.Data); ok {
		data.Set("value", data.Int("value")+1)
	}
}
