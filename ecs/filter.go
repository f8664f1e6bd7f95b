package ecs

type stageKind uint8

const (
	stageAny stageKind = iota
	stageAll
	stageOnly
	stageExclude
)

func (k stageKind) String() string {
	switch k {
	case stageAny:
		return "any"
	case stageAll:
		return "all"
	case stageOnly:
		return "only"
	case stageExclude:
		return "exclude"
	}
	return "unknown"
}

type stage struct {
	kind  stageKind
	names []string
	flag  Flag
	never bool
}

// resolve rebuilds the stage flag from the names that hold a bit. Unknown
// names are never given one: they add nothing to Any and Exclude, and make
// All and Only match nothing.
func (s *stage) resolve(flags *FlagAllocator) {
	s.flag = nil
	s.never = false
	for _, name := range s.names {
		if _, ok := flags.Bit(name); !ok {
			if s.kind == stageAll || s.kind == stageOnly {
				s.never = true
			}
			continue
		}
		if s.kind == stageAny || s.kind == stageExclude {
			s.flag = s.flag.Or(flags.OwnFlag(name))
		} else {
			s.flag = s.flag.Or(flags.AllInclusive(name))
		}
	}
}

func (s *stage) match(e *Entity) bool {
	if !e.valid || !e.enabled || s.never {
		return false
	}
	switch s.kind {
	case stageAny:
		return e.CheckFlagAny(s.flag)
	case stageAll:
		return e.CheckFlagAll(s.flag)
	case stageOnly:
		return e.CheckFlagOnly(s.flag)
	case stageExclude:
		return !e.CheckFlagAny(s.flag)
	}
	return false
}

// Filter is a reusable entity query built from Any, All, Only and Exclude
// stages. Stages run in the order they were added.
//
// All and Only compare against the union of the named types' all-inclusive
// flags. Any and Exclude compare against the union of their own bits, which an
// entity carries exactly when it holds that type or a type extending it.
type Filter struct {
	world    *World
	anyOf    []string
	include  string
	stages   []stage
	resolved uint64
	stale    bool
}

// Filter starts a new filter on w.
func (w *World) Filter() *Filter {
	return &Filter{world: w}
}

// Any keeps entities holding at least one of the named types.
func (f *Filter) Any(names ...string) *Filter {
	if len(names) == 0 {
		return f
	}
	f.seed(names)
	f.anyOf = append(f.anyOf, names...)
	f.stages = append(f.stages, stage{kind: stageAny, names: names})
	f.stale = true
	return f
}

// All keeps entities holding every named type.
func (f *Filter) All(names ...string) *Filter {
	if len(names) == 0 {
		return f
	}
	f.seed(names)
	f.stages = append(f.stages, stage{kind: stageAll, names: names})
	f.stale = true
	return f
}

// Only keeps entities holding every named type and nothing else.
func (f *Filter) Only(names ...string) *Filter {
	if len(names) == 0 {
		return f
	}
	f.seed(names)
	f.stages = append(f.stages, stage{kind: stageOnly, names: names})
	f.stale = true
	return f
}

// Exclude drops entities holding any of the named types.
func (f *Filter) Exclude(names ...string) *Filter {
	if len(names) == 0 {
		return f
	}
	f.stages = append(f.stages, stage{kind: stageExclude, names: names})
	f.stale = true
	return f
}

// seed records the first name of the first Any, All or Only call. It bounds
// the candidate set when no Any bucket applies.
func (f *Filter) seed(names []string) {
	if f.include == "" {
		f.include = names[0]
	}
}

// Query returns every matching entity. Candidates are the union of the Any
// buckets when that is non-empty, otherwise the include bucket, otherwise the
// whole table; they are copied before the stages run, so hooks that attach or
// detach while the caller iterates cannot disturb the result.
func (f *Filter) Query() []*Entity {
	f.prepare()
	return f.run(f.candidates())
}

// Find returns the first matching entity or nil. Any names are tried one at a
// time, in order, and the search stops at the first one with a match.
func (f *Filter) Find() *Entity {
	f.prepare()
	if len(f.anyOf) > 0 {
		for _, name := range f.anyOf {
			if e := f.first(f.bucket(name)); e != nil {
				return e
			}
		}
		return nil
	}
	if f.include != "" {
		return f.first(f.bucket(f.include))
	}
	return f.first(f.world.entities.Snapshot())
}

// Count returns the number of matching entities.
func (f *Filter) Count() int {
	return len(f.Query())
}

// Each calls fn for every matching entity. Entities invalidated by an earlier
// call are skipped.
func (f *Filter) Each(fn func(*Entity)) {
	for _, e := range f.Query() {
		if e.valid {
			fn(e)
		}
	}
}

// Describe renders the stages, e.g. "all(Position,Velocity) exclude(Dead)".
func (f *Filter) Describe() string {
	out := ""
	for i, s := range f.stages {
		if i > 0 {
			out += " "
		}
		out += s.kind.String() + "("
		for j, name := range s.names {
			if j > 0 {
				out += ","
			}
			out += name
		}
		out += ")"
	}
	return out
}

// prepare re-resolves stage flags when stages were added or the allocator
// changed since the last run.
func (f *Filter) prepare() {
	flags := f.world.registry.flags
	if !f.stale && f.resolved == flags.gen {
		return
	}
	for i := range f.stages {
		f.stages[i].resolve(flags)
	}
	f.resolved = flags.gen
	f.stale = false
}

func (f *Filter) candidates() []*Entity {
	if len(f.anyOf) > 0 {
		seen := make(map[EntityID]struct{})
		var out []*Entity
		for _, name := range f.anyOf {
			for _, id := range f.world.index.Entities(name) {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				if e := f.world.entities.Get(id); e != nil {
					out = append(out, e)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if f.include != "" {
		return f.bucket(f.include)
	}
	return f.world.entities.Snapshot()
}

func (f *Filter) bucket(name string) []*Entity {
	ids := f.world.index.Entities(name)
	out := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		if e := f.world.entities.Get(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (f *Filter) run(candidates []*Entity) []*Entity {
	out := candidates[:0]
	for _, e := range candidates {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (f *Filter) first(candidates []*Entity) *Entity {
	for _, e := range candidates {
		if f.match(e) {
			return e
		}
	}
	return nil
}

func (f *Filter) match(e *Entity) bool {
	if !e.valid || !e.enabled {
		return false
	}
	for i := range f.stages {
		if !f.stages[i].match(e) {
			return false
		}
	}
	return true
}

// Match reports whether e passes every stage.
func (f *Filter) Match(e *Entity) bool {
	f.prepare()
	return e != nil && e.world == f.world && f.match(e)
}
