package ecs

import "strconv"

// EntityId identifies an entity within one Entities registry. Ids are handed
// out in increasing order and never reused; zero is never a live id.
type EntityId uint64

// NoEntity is the zero EntityId. It is used for "no parent" style links.
const NoEntity EntityId = 0

// Valid reports whether the id can refer to a live entity.
func (e EntityId) Valid() bool {
	return e != NoEntity
}

func (e EntityId) String() string {
	return "entity#" + strconv.FormatUint(uint64(e), 10)
}

// Entity is one record in the registry. It owns its component store, which
// keeps the entity id as its owner.
type Entity struct {
	id         EntityId
	components *Components
	state      borrowState
}

func newEntity(id EntityId, registry *ComponentRegistry) *Entity {
	return &Entity{
		id:         id,
		components: newComponents(id, registry),
	}
}

// Id returns the entity identifier.
func (e *Entity) Id() EntityId {
	return e.id
}

// Components returns the entity's component store.
func (e *Entity) Components() *Components {
	return e.components
}
