package ecs

// Commands buffers structural changes to apply once the current frame-driver
// call has finished its after-phase. Direct calls on Entity apply immediately;
// Commands is for changes a hook wants to land after every system has run.
type Commands struct {
	destroys []EntityID
	removes  []componentCommand
	adds     []componentCommand
	defers   []func()
}

type componentCommand struct {
	entity EntityID
	name   string
	token  Token
}

func newCommands() *Commands {
	return &Commands{}
}

// Destroy queues the destruction of an entity.
func (c *Commands) Destroy(id EntityID) {
	c.destroys = append(c.destroys, id)
}

// AddComponent queues attaching a component of the named type with token.
func (c *Commands) AddComponent(id EntityID, name string, token Token) {
	c.adds = append(c.adds, componentCommand{entity: id, name: name, token: token})
}

// RemoveComponent queues removing a component of the named type with token.
func (c *Commands) RemoveComponent(id EntityID, name string, token Token) {
	c.removes = append(c.removes, componentCommand{entity: id, name: name, token: token})
}

// Defer queues a function call.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.destroys) + len(c.removes) + len(c.adds) + len(c.defers)
}

// Flush applies the queued commands to w: destroys, then removals, then
// additions, then deferred calls. Commands queued while flushing wait for the
// next flush.
func (c *Commands) Flush(w *World) {
	destroys, removes, adds, defers := c.destroys, c.removes, c.adds, c.defers
	c.destroys, c.removes, c.adds, c.defers = nil, nil, nil, nil

	destroyed := make(map[EntityID]bool, len(destroys))
	for _, id := range destroys {
		if e := w.entities.Get(id); e != nil {
			e.Destroy()
		}
		destroyed[id] = true
	}

	for _, cmd := range removes {
		if destroyed[cmd.entity] {
			continue
		}
		if e := w.entities.Get(cmd.entity); e != nil {
			e.RemoveComponentFor(cmd.name, cmd.token)
		}
	}

	for _, cmd := range adds {
		if destroyed[cmd.entity] {
			continue
		}
		if e := w.entities.Get(cmd.entity); e != nil {
			e.AddComponentFor(cmd.name, cmd.token)
		}
	}

	for _, fn := range defers {
		fn()
	}
}
