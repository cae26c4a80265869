package ecs

import (
	"iter"
	"reflect"
	"weak"
)

// slot is the shared cell holding one component. The owning store keeps the
// only strong pointer; references observe it weakly until they upgrade.
type slot struct {
	value   any
	kind    Kind
	owner   EntityId
	removed bool
	state   borrowState
}

func (s *slot) conflict(kind BorrowKind) *BorrowError {
	return &BorrowError{Kind: kind, Target: s.kind.Name(), Entity: s.owner}
}

// Components is the per-entity component store. Unique components live in a
// table keyed by type; every other component is appended to an ordered list.
type Components struct {
	owner       EntityId
	registry    *ComponentRegistry
	unique      map[reflect.Type]*slot
	uniqueOrder []reflect.Type
	regular     []*slot
}

func newComponents(owner EntityId, registry *ComponentRegistry) *Components {
	return &Components{
		owner:    owner,
		registry: registry,
		unique:   make(map[reflect.Type]*slot),
	}
}

// Owner returns the id of the entity owning this store.
func (c *Components) Owner() EntityId {
	return c.owner
}

// Register stores the component. For unique types it replaces the current
// instance and returns it (nil if there was none); for other types it appends
// and returns nil.
func (c *Components) Register(component Component) Component {
	value, t := normalizeComponent(component)
	kind := c.registry.kindOf(t)

	s := &slot{
		value: value,
		kind:  kind,
		owner: c.owner,
	}

	if !kind.Unique {
		c.regular = append(c.regular, s)
		notifyRegister(s)
		return nil
	}

	previous, replaced := c.unique[t]
	c.unique[t] = s
	if !replaced {
		c.uniqueOrder = append(c.uniqueOrder, t)
	} else {
		c.release(previous)
	}
	notifyRegister(s)

	if replaced {
		return previous.value
	}
	return nil
}

// RemoveKind removes every instance of the given type and returns how many
// were removed. Outstanding weak references to them stop resolving.
func (c *Components) RemoveKind(t reflect.Type) int {
	removed := 0

	if s, ok := c.unique[t]; ok {
		delete(c.unique, t)
		order := make([]reflect.Type, 0, len(c.uniqueOrder))
		for _, ut := range c.uniqueOrder {
			if ut != t {
				order = append(order, ut)
			}
		}
		c.uniqueOrder = order
		c.release(s)
		removed++
	}

	kept := make([]*slot, 0, len(c.regular))
	for _, s := range c.regular {
		if s.kind.Type == t {
			c.release(s)
			removed++
			continue
		}
		kept = append(kept, s)
	}
	c.regular = kept

	return removed
}

// Remove removes every instance of T from the store.
func Remove[T any](c *Components) int {
	return c.RemoveKind(reflect.TypeFor[T]())
}

// Count returns the number of regular (non-unique) components.
func (c *Components) Count() int {
	return len(c.regular)
}

// UniqueCount returns the number of occupied unique slots.
func (c *Components) UniqueCount() int {
	return len(c.unique)
}

// Len returns the total number of stored components.
func (c *Components) Len() int {
	return len(c.unique) + len(c.regular)
}

// Has reports whether at least one instance of the type is stored.
func (c *Components) Has(t reflect.Type) bool {
	if _, ok := c.unique[t]; ok {
		return true
	}
	for _, s := range c.regular {
		if s.kind.Type == t {
			return true
		}
	}
	return false
}

// Kinds returns the distinct stored types, unique ones first.
func (c *Components) Kinds() []Kind {
	kinds := make([]Kind, 0, len(c.uniqueOrder))
	seen := make(map[reflect.Type]bool, len(c.uniqueOrder))
	for _, t := range c.uniqueOrder {
		kinds = append(kinds, c.unique[t].kind)
		seen[t] = true
	}
	for _, s := range c.regular {
		if !seen[s.kind.Type] {
			kinds = append(kinds, s.kind)
			seen[s.kind.Type] = true
		}
	}
	return kinds
}

// IterKind yields a weak reference to every stored instance of T: the unique
// slot if T is unique, otherwise every matching regular entry in insertion
// order. The sequence reflects the store at the time it is ranged over.
func IterKind[T any](c *Components) iter.Seq[WeakRef[T]] {
	t := reflect.TypeFor[T]()
	return func(yield func(WeakRef[T]) bool) {
		if s, ok := c.unique[t]; ok {
			if !yield(newWeakRef[T](s)) {
				return
			}
		}
		for _, s := range c.regular {
			if s.kind.Type != t {
				continue
			}
			if !yield(newWeakRef[T](s)) {
				return
			}
		}
	}
}

// UniqueOf returns the unique instance of T, if stored.
func UniqueOf[T any](c *Components) (*StrongRef[T], bool) {
	s, ok := c.unique[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return &StrongRef[T]{entity: c.owner, slot: s}, true
}

// All yields an untyped reference to every stored component, unique ones in
// table order first.
func (c *Components) All() iter.Seq[*ErasedRef] {
	return func(yield func(*ErasedRef) bool) {
		for s := range c.iterSlots() {
			if !yield(&ErasedRef{entity: c.owner, slot: s}) {
				return
			}
		}
	}
}

// iterSlots yields every slot, unique ones in table order first.
func (c *Components) iterSlots() iter.Seq[*slot] {
	return func(yield func(*slot) bool) {
		for _, t := range c.uniqueOrder {
			if !yield(c.unique[t]) {
				return
			}
		}
		for _, s := range c.regular {
			if !yield(s) {
				return
			}
		}
	}
}

// clear removes every component, used when the owning entity is despawned.
func (c *Components) clear() {
	for s := range c.iterSlots() {
		c.release(s)
	}
	c.unique = make(map[reflect.Type]*slot)
	c.uniqueOrder = nil
	c.regular = nil
}

func (c *Components) release(s *slot) {
	s.removed = true
	if hook, ok := s.value.(UnregisterHook); ok {
		hook.OnUnregister(c.owner)
	}
}

func notifyRegister(s *slot) {
	if hook, ok := s.value.(RegisterHook); ok {
		hook.OnRegister(s.owner)
	}
}

func newWeakRef[T any](s *slot) WeakRef[T] {
	return WeakRef[T]{entity: s.owner, slot: weak.Make(s)}
}
