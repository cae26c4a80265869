package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/rs/zerolog"
)

// Entities owns every entity record and hands out ids.
type Entities struct {
	registry *ComponentRegistry
	records  *intmap.Map[EntityId, *Entity]
	order    []EntityId
	nextId   EntityId
	setup    func(*EntityBuilder)
	logger   zerolog.Logger
}

// EntitiesOption configures an Entities registry.
type EntitiesOption func(*Entities)

// WithRegistry sets the component registry used to classify component types.
func WithRegistry(registry *ComponentRegistry) EntitiesOption {
	return func(e *Entities) {
		e.registry = registry
	}
}

// WithSetupHook runs fn on every new entity before Create returns, e.g. to
// attach a Transform to everything.
func WithSetupHook(fn func(*EntityBuilder)) EntitiesOption {
	return func(e *Entities) {
		e.setup = fn
	}
}

// WithFirstId sets the id given to the first created entity. It must not be zero.
func WithFirstId(id EntityId) EntitiesOption {
	return func(e *Entities) {
		if !id.Valid() {
			panic("ecs: first entity id must be non-zero")
		}
		e.nextId = id
	}
}

// WithEntitiesLogger sets the logger used for lifecycle events.
func WithEntitiesLogger(logger zerolog.Logger) EntitiesOption {
	return func(e *Entities) {
		e.logger = logger
	}
}

// NewEntities creates an empty registry.
func NewEntities(opts ...EntitiesOption) *Entities {
	e := &Entities{
		records: intmap.New[EntityId, *Entity](256),
		nextId:  1,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewComponentRegistry()
	}
	return e
}

// Registry returns the component registry.
func (e *Entities) Registry() *ComponentRegistry {
	return e.registry
}

// Create allocates the next id and returns a builder for the new entity.
// The entity is not visible until Build is called.
func (e *Entities) Create() *EntityBuilder {
	id := e.nextId
	e.nextId++

	b := &EntityBuilder{
		entities: e,
		entity:   newEntity(id, e.registry),
	}
	if e.setup != nil {
		e.setup(b)
	}
	return b
}

// Spawn creates and builds an entity with the given components.
func (e *Entities) Spawn(components ...Component) EntityId {
	return e.Create().With(components...).Build()
}

func (e *Entities) insert(entity *Entity) {
	if _, exists := e.records.Get(entity.id); exists {
		panic("ecs: duplicate entity id " + entity.id.String())
	}
	e.records.Put(entity.id, entity)

	if n := len(e.order); n == 0 || e.order[n-1] < entity.id {
		e.order = append(e.order, entity.id)
	} else {
		idx, _ := slices.BinarySearch(e.order, entity.id)
		e.order = slices.Insert(slices.Clone(e.order), idx, entity.id)
	}

	e.logger.Debug().
		Uint64("entity", uint64(entity.id)).
		Int("components", entity.components.Len()).
		Msg("entity built")
}

// Get runs fn with a shared borrow of the entity. It returns false if the
// entity does not exist.
func (e *Entities) Get(id EntityId, fn func(*Entity)) bool {
	entity, ok := e.records.Get(id)
	if !ok {
		return false
	}
	if !entity.state.acquireRead() {
		panic(&BorrowError{Kind: BorrowShared, Target: "entity", Entity: id})
	}
	defer entity.state.releaseRead()
	fn(entity)
	return true
}

// GetMut runs fn with an exclusive borrow of the entity. It returns false if
// the entity does not exist.
func (e *Entities) GetMut(id EntityId, fn func(*Entity)) bool {
	entity, ok := e.records.Get(id)
	if !ok {
		return false
	}
	if !entity.state.acquireWrite() {
		panic(&BorrowError{Kind: BorrowExclusive, Target: "entity", Entity: id})
	}
	defer entity.state.releaseWrite()
	fn(entity)
	return true
}

// Contains reports whether the entity exists.
func (e *Entities) Contains(id EntityId) bool {
	_, ok := e.records.Get(id)
	return ok
}

// Len returns the number of live entities.
func (e *Entities) Len() int {
	return len(e.order)
}

// Iter yields every live entity in ascending id order. Entities built while
// iterating may or may not be visited.
func (e *Entities) Iter() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, id := range e.order {
			entity, ok := e.records.Get(id)
			if !ok {
				continue
			}
			if !yield(entity) {
				return
			}
		}
	}
}

// Despawn removes the entity and all of its components. Weak references to
// those components stop resolving. It returns false if the entity does not exist.
func (e *Entities) Despawn(id EntityId) bool {
	entity, ok := e.records.Get(id)
	if !ok {
		return false
	}
	if !entity.state.acquireWrite() {
		panic(&BorrowError{Kind: BorrowExclusive, Target: "entity", Entity: id})
	}
	entity.components.clear()
	entity.state.releaseWrite()

	e.records.Del(id)
	e.order = slices.DeleteFunc(slices.Clone(e.order), func(other EntityId) bool {
		return other == id
	})

	e.logger.Debug().Uint64("entity", uint64(id)).Msg("entity despawned")
	return true
}

// EntityBuilder exposes an entity under construction.
type EntityBuilder struct {
	entities *Entities
	entity   *Entity
	built    bool
}

// Id returns the id allocated for the entity.
func (b *EntityBuilder) Id() EntityId {
	return b.entity.id
}

// Entity returns the entity under construction.
func (b *EntityBuilder) Entity() *Entity {
	return b.entity
}

// With registers components on the entity under construction.
func (b *EntityBuilder) With(components ...Component) *EntityBuilder {
	for _, c := range components {
		b.entity.components.Register(c)
	}
	return b
}

// Build inserts the entity into the registry and returns its id.
func (b *EntityBuilder) Build() EntityId {
	if b.built {
		panic("ecs: entity " + b.entity.id.String() + " already built")
	}
	b.built = true
	b.entities.insert(b.entity)
	return b.entity.id
}
