package ecs

import (
	"fmt"
	"reflect"
	"weak"

	"github.com/rotisserie/eris"
)

// WeakRef is a typed handle to a component that does not keep it alive.
// Retrieve upgrades it to a StrongRef while the store still holds the slot.
type WeakRef[T any] struct {
	entity EntityId
	slot   weak.Pointer[slot]
}

// Entity returns the owner of the referenced component.
func (r WeakRef[T]) Entity() EntityId {
	return r.entity
}

// Retrieve upgrades the reference. It returns an error wrapping
// ErrComponentGone when the component has been removed from its store.
func (r WeakRef[T]) Retrieve() (*StrongRef[T], error) {
	s := r.slot.Value()
	if s == nil || s.removed {
		return nil, eris.Wrapf(ErrComponentGone, "retrieve %s on %s", reflect.TypeFor[T](), r.entity)
	}
	return &StrongRef[T]{entity: r.entity, slot: s}, nil
}

// StrongRef is a typed handle that keeps its slot reachable. Access goes
// through scoped borrows.
type StrongRef[T any] struct {
	entity EntityId
	slot   *slot
}

// Entity returns the owner of the referenced component.
func (r *StrongRef[T]) Entity() EntityId {
	return r.entity
}

// Alive reports whether the owning store still holds the component.
func (r *StrongRef[T]) Alive() bool {
	return !r.slot.removed
}

// Weak downgrades the reference.
func (r *StrongRef[T]) Weak() WeakRef[T] {
	return newWeakRef[T](r.slot)
}

// TryBorrowValue takes a shared borrow, failing with *BorrowError while the
// component is exclusively borrowed.
func (r *StrongRef[T]) TryBorrowValue() (*ValueRef[T], error) {
	value := downcast[T](r.slot)
	if !r.slot.state.acquireRead() {
		return nil, r.slot.conflict(BorrowShared)
	}
	return &ValueRef[T]{value: value, state: &r.slot.state}, nil
}

// TryBorrowMutValue takes an exclusive borrow, failing with *BorrowError
// while any other borrow is live.
func (r *StrongRef[T]) TryBorrowMutValue() (*ValueMutRef[T], error) {
	value := downcast[T](r.slot)
	if !r.slot.state.acquireWrite() {
		return nil, r.slot.conflict(BorrowExclusive)
	}
	return &ValueMutRef[T]{value: value, state: &r.slot.state}, nil
}

// BorrowValue is TryBorrowValue that panics on conflict.
func (r *StrongRef[T]) BorrowValue() *ValueRef[T] {
	v, err := r.TryBorrowValue()
	if err != nil {
		panic(err)
	}
	return v
}

// BorrowMutValue is TryBorrowMutValue that panics on conflict.
func (r *StrongRef[T]) BorrowMutValue() *ValueMutRef[T] {
	v, err := r.TryBorrowMutValue()
	if err != nil {
		panic(err)
	}
	return v
}

// Read runs fn with a shared borrow held.
func (r *StrongRef[T]) Read(fn func(*T)) {
	v := r.BorrowValue()
	defer v.Release()
	fn(v.Get())
}

// Write runs fn with an exclusive borrow held.
func (r *StrongRef[T]) Write(fn func(*T)) {
	v := r.BorrowMutValue()
	defer v.Release()
	fn(v.Get())
}

// Value returns a copy of the component taken under a shared borrow.
func (r *StrongRef[T]) Value() T {
	v := r.BorrowValue()
	defer v.Release()
	return *v.Get()
}

func downcast[T any](s *slot) *T {
	value, ok := s.value.(*T)
	if !ok {
		panic(fmt.Sprintf("ecs: unreachable: component %s on %s requested as %s", s.kind.Name(), s.owner, reflect.TypeFor[T]()))
	}
	return value
}

// ErasedRef is an untyped strong handle, produced by filter queries that do
// not know the concrete component types.
type ErasedRef struct {
	entity EntityId
	slot   *slot
}

// Entity returns the owner of the referenced component.
func (r *ErasedRef) Entity() EntityId {
	return r.entity
}

// Kind returns the stored component kind.
func (r *ErasedRef) Kind() Kind {
	return r.slot.kind
}

// Alive reports whether the owning store still holds the component.
func (r *ErasedRef) Alive() bool {
	return !r.slot.removed
}

// Read runs fn with a shared borrow held. fn receives the component pointer.
func (r *ErasedRef) Read(fn func(Component)) {
	if !r.slot.state.acquireRead() {
		panic(r.slot.conflict(BorrowShared))
	}
	defer r.slot.state.releaseRead()
	fn(r.slot.value)
}

// Write runs fn with an exclusive borrow held.
func (r *ErasedRef) Write(fn func(Component)) {
	if !r.slot.state.acquireWrite() {
		panic(r.slot.conflict(BorrowExclusive))
	}
	defer r.slot.state.releaseWrite()
	fn(r.slot.value)
}

// TryRead is Read that reports a conflicting borrow instead of panicking.
func (r *ErasedRef) TryRead(fn func(Component)) error {
	if !r.slot.state.acquireRead() {
		return r.slot.conflict(BorrowShared)
	}
	defer r.slot.state.releaseRead()
	fn(r.slot.value)
	return nil
}

// TryWrite is Write that reports a conflicting borrow instead of panicking.
func (r *ErasedRef) TryWrite(fn func(Component)) error {
	if !r.slot.state.acquireWrite() {
		return r.slot.conflict(BorrowExclusive)
	}
	defer r.slot.state.releaseWrite()
	fn(r.slot.value)
	return nil
}

// As converts an erased reference to a typed one after checking the type.
func As[T any](r *ErasedRef) (*StrongRef[T], bool) {
	if _, ok := r.slot.value.(*T); !ok {
		return nil, false
	}
	return &StrongRef[T]{entity: r.entity, slot: r.slot}, true
}
