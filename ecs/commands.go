package ecs

import "reflect"

// Commands provides a buffer for deferred structural changes that are applied
// at the end of a scheduler phase. Use it instead of despawning or spawning
// while ranging over a query.
type Commands struct {
	spawns    []func(*EntityBuilder)
	despawns  []EntityId
	registers []registerCommand
	removes   []removeCommand
	defers    []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// NewCommands creates an empty buffer.
func NewCommands() *Commands {
	return newCommands()
}

type registerCommand struct {
	entity    EntityId
	component Component
}

type removeCommand struct {
	entity EntityId
	kind   reflect.Type
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues the creation of an entity. setup may be nil.
func (c *Commands) Spawn(setup func(*EntityBuilder)) {
	c.spawns = append(c.spawns, setup)
}

// Despawn queues an entity removal.
func (c *Commands) Despawn(entity EntityId) {
	c.despawns = append(c.despawns, entity)
}

// Register queues a component registration on an existing entity.
func (c *Commands) Register(entity EntityId, component Component) {
	c.registers = append(c.registers, registerCommand{
		entity:    entity,
		component: component,
	})
}

// Remove queues the removal of every component of the given type.
func (c *Commands) Remove(entity EntityId, kind reflect.Type) {
	c.removes = append(c.removes, removeCommand{
		entity: entity,
		kind:   kind,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.despawns) + len(c.registers) + len(c.removes) + len(c.defers)
}

// Flush applies all queued commands to entities and resets the buffer.
// Commands targeting despawned or unknown entities are dropped. Commands
// queued while flushing, from spawn setup functions, hooks or deferred
// functions, wait for the next flush.
func (c *Commands) Flush(entities *Entities) {
	if c.Len() == 0 {
		return
	}

	despawns, removes, registers, spawns, defers := c.despawns, c.removes, c.registers, c.spawns, c.defers
	c.despawns, c.removes, c.registers, c.spawns, c.defers = nil, nil, nil, nil, nil

	despawned := make(map[EntityId]bool)

	for _, id := range despawns {
		entities.Despawn(id)
		despawned[id] = true
	}

	for _, cmd := range removes {
		if despawned[cmd.entity] {
			continue
		}
		entities.GetMut(cmd.entity, func(e *Entity) {
			e.Components().RemoveKind(cmd.kind)
		})
	}

	for _, cmd := range registers {
		if despawned[cmd.entity] {
			continue
		}
		entities.GetMut(cmd.entity, func(e *Entity) {
			e.Components().Register(cmd.component)
		})
	}

	for _, setup := range spawns {
		b := entities.Create()
		if setup != nil {
			setup(b)
		}
		b.Build()
	}

	for _, fn := range defers {
		fn()
	}
}
