package ecs

// SystemTable is the ordered list of a World's systems. Systems run in arrival
// order; a system added with a higher priority runs earlier, and systems of
// equal priority keep their arrival order.
type SystemTable struct {
	systems []System
}

func newSystemTable() *SystemTable {
	return &SystemTable{systems: make([]System, 0, 16)}
}

func (t *SystemTable) insert(s System) {
	p := s.systemBase().priority
	at := len(t.systems)
	for i, existing := range t.systems {
		if existing.systemBase().priority < p {
			at = i
			break
		}
	}
	t.systems = append(t.systems, nil)
	copy(t.systems[at+1:], t.systems[at:])
	t.systems[at] = s
}

// Get returns the system added under name, or nil.
func (t *SystemTable) Get(name string) System {
	for _, s := range t.systems {
		if s.systemBase().name == name {
			return s
		}
	}
	return nil
}

func (t *SystemTable) remove(name string) System {
	for i, s := range t.systems {
		if s.systemBase().name == name {
			t.systems = append(t.systems[:i], t.systems[i+1:]...)
			return s
		}
	}
	return nil
}

// Len returns the number of systems.
func (t *SystemTable) Len() int { return len(t.systems) }

// Snapshot returns the systems in execution order.
func (t *SystemTable) Snapshot() []System {
	out := make([]System, len(t.systems))
	copy(out, t.systems)
	return out
}

// Names returns the system names in execution order.
func (t *SystemTable) Names() []string {
	names := make([]string, len(t.systems))
	for i, s := range t.systems {
		names[i] = s.systemBase().name
	}
	return names
}
