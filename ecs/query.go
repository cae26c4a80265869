package ecs

import (
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
)

// Query is the capture side of every query shape. The scheduler builds a
// fresh query for each system invocation and feeds it every live entity's
// store before the system runs.
type Query interface {
	CaptureComponents(store *Components)
}

// Capture feeds every live entity of the registry to the query.
func Capture(q Query, entities *Entities) {
	for entity := range entities.Iter() {
		if !entity.state.acquireRead() {
			panic(&BorrowError{Kind: BorrowShared, Target: "entity", Entity: entity.id})
		}
		q.CaptureComponents(entity.components)
		entity.state.releaseRead()
	}
}

func retrieveForCapture[T any](ref WeakRef[T]) *StrongRef[T] {
	strong, err := ref.Retrieve()
	if err != nil {
		panic(eris.Wrap(err, "ecs: unreachable: component vanished during capture"))
	}
	return strong
}

type eachEntry[T any] struct {
	entity EntityId
	ref    *StrongRef[T]
}

// Each captures every instance of T across the scanned stores.
type Each[T any] struct {
	entries  []eachEntry[T]
	byEntity map[EntityId]int
}

// NewEach creates an empty query for T.
func NewEach[T any]() *Each[T] {
	return &Each[T]{
		byEntity: make(map[EntityId]int),
	}
}

// CaptureComponents buffers strong references to every T in store.
func (q *Each[T]) CaptureComponents(store *Components) {
	if q.byEntity == nil {
		q.byEntity = make(map[EntityId]int)
	}
	for ref := range IterKind[T](store) {
		if _, ok := q.byEntity[ref.Entity()]; !ok {
			q.byEntity[ref.Entity()] = len(q.entries)
		}
		q.entries = append(q.entries, eachEntry[T]{
			entity: ref.Entity(),
			ref:    retrieveForCapture(ref),
		})
	}
}

// Len returns the number of captured components.
func (q *Each[T]) Len() int {
	return len(q.entries)
}

// Iter yields every captured component tagged with its entity. It can be
// ranged over any number of times.
func (q *Each[T]) Iter() iter.Seq2[EntityId, *StrongRef[T]] {
	return func(yield func(EntityId, *StrongRef[T]) bool) {
		for _, entry := range q.entries {
			if !yield(entry.entity, entry.ref) {
				return
			}
		}
	}
}

// Values yields the captured components without their entities.
func (q *Each[T]) Values() iter.Seq[*StrongRef[T]] {
	return func(yield func(*StrongRef[T]) bool) {
		for _, entry := range q.entries {
			if !yield(entry.ref) {
				return
			}
		}
	}
}

// Find returns the first captured component of the given entity.
func (q *Each[T]) Find(id EntityId) (*StrongRef[T], bool) {
	idx, ok := q.byEntity[id]
	if !ok {
		return nil, false
	}
	return q.entries[idx].ref, true
}

// Update borrows each captured component exclusively in turn and passes it to fn.
func (q *Each[T]) Update(fn func(EntityId, *T)) {
	for _, entry := range q.entries {
		entry.ref.Write(func(v *T) {
			fn(entry.entity, v)
		})
	}
}

// UnitQuery captures at most one instance of T, the first one found.
type UnitQuery[T any] struct {
	entity EntityId
	ref    *StrongRef[T]
}

// NewUnitQuery creates an empty unit query.
func NewUnitQuery[T any]() *UnitQuery[T] {
	return &UnitQuery[T]{}
}

// CaptureComponents keeps the first T seen across all captures.
func (q *UnitQuery[T]) CaptureComponents(store *Components) {
	if q.ref != nil {
		return
	}
	for ref := range IterKind[T](store) {
		q.entity = ref.Entity()
		q.ref = retrieveForCapture(ref)
		return
	}
}

// IsEmpty reports whether nothing was captured.
func (q *UnitQuery[T]) IsEmpty() bool {
	return q.ref == nil
}

// Get returns the captured component.
func (q *UnitQuery[T]) Get() (*StrongRef[T], bool) {
	return q.ref, q.ref != nil
}

// Entity returns the owner of the captured component.
func (q *UnitQuery[T]) Entity() (EntityId, bool) {
	return q.entity, q.ref != nil
}

// Pair is one row of a PairQuery. First is always set; Second is nil when
// the entity has no B.
type Pair[A, B any] struct {
	First  *StrongRef[A]
	Second *StrongRef[B]
}

// PairQuery joins two Each queries on entity id. Every captured A produces
// one row; a missing B leaves Second nil instead of dropping the row.
type PairQuery[A, B any] struct {
	first  *Each[A]
	second *Each[B]
}

// NewPairQuery creates an empty pair query.
func NewPairQuery[A, B any]() *PairQuery[A, B] {
	return JoinPair(NewEach[A](), NewEach[B]())
}

// JoinPair combines two existing queries.
func JoinPair[A, B any](first *Each[A], second *Each[B]) *PairQuery[A, B] {
	return &PairQuery[A, B]{first: first, second: second}
}

// CaptureComponents captures both sides independently.
func (q *PairQuery[A, B]) CaptureComponents(store *Components) {
	q.first.CaptureComponents(store)
	q.second.CaptureComponents(store)
}

// First returns the left-hand query.
func (q *PairQuery[A, B]) First() *Each[A] {
	return q.first
}

// Second returns the right-hand query.
func (q *PairQuery[A, B]) Second() *Each[B] {
	return q.second
}

// Len returns the number of rows, which is the number of captured A.
func (q *PairQuery[A, B]) Len() int {
	return q.first.Len()
}

// Iter yields one row per captured A.
func (q *PairQuery[A, B]) Iter() iter.Seq2[EntityId, Pair[A, B]] {
	return func(yield func(EntityId, Pair[A, B]) bool) {
		for id, a := range q.first.Iter() {
			b, _ := q.second.Find(id)
			if !yield(id, Pair[A, B]{First: a, Second: b}) {
				return
			}
		}
	}
}

// Triple is one row of a TripleQuery.
type Triple[A, B, C any] struct {
	First  *StrongRef[A]
	Second *StrongRef[B]
	Third  *StrongRef[C]
}

// TripleQuery left-joins three Each queries on entity id.
type TripleQuery[A, B, C any] struct {
	first  *Each[A]
	second *Each[B]
	third  *Each[C]
}

// NewTripleQuery creates an empty triple query.
func NewTripleQuery[A, B, C any]() *TripleQuery[A, B, C] {
	return JoinTriple(NewEach[A](), NewEach[B](), NewEach[C]())
}

// JoinTriple combines three existing queries.
func JoinTriple[A, B, C any](first *Each[A], second *Each[B], third *Each[C]) *TripleQuery[A, B, C] {
	return &TripleQuery[A, B, C]{first: first, second: second, third: third}
}

// CaptureComponents captures all three sides independently.
func (q *TripleQuery[A, B, C]) CaptureComponents(store *Components) {
	q.first.CaptureComponents(store)
	q.second.CaptureComponents(store)
	q.third.CaptureComponents(store)
}

// Len returns the number of rows, which is the number of captured A.
func (q *TripleQuery[A, B, C]) Len() int {
	return q.first.Len()
}

// Iter yields one row per captured A.
func (q *TripleQuery[A, B, C]) Iter() iter.Seq2[EntityId, Triple[A, B, C]] {
	return func(yield func(EntityId, Triple[A, B, C]) bool) {
		for id, a := range q.first.Iter() {
			b, _ := q.second.Find(id)
			c, _ := q.third.Find(id)
			if !yield(id, Triple[A, B, C]{First: a, Second: b, Third: c}) {
				return
			}
		}
	}
}

// FilterQuery captures every component whose value satisfies a predicate,
// regardless of its concrete type.
type FilterQuery struct {
	match   func(Component) bool
	entries []*ErasedRef
}

// NewFilterQuery creates a filter query. match receives the component
// pointer under a shared borrow.
func NewFilterQuery(match func(Component) bool) *FilterQuery {
	return &FilterQuery{match: match}
}

// CaptureComponents buffers every matching component of store. Components
// that are exclusively borrowed while capturing, such as the one held by a
// system that captures a nested query, cannot be inspected and are skipped.
func (q *FilterQuery) CaptureComponents(store *Components) {
	for s := range store.iterSlots() {
		ref := &ErasedRef{entity: store.owner, slot: s}
		matched := false
		err := ref.TryRead(func(value Component) {
			matched = q.match(value)
		})
		if err == nil && matched {
			q.entries = append(q.entries, ref)
		}
	}
}

// Len returns the number of captured components.
func (q *FilterQuery) Len() int {
	return len(q.entries)
}

// Iter yields every captured component tagged with its entity.
func (q *FilterQuery) Iter() iter.Seq2[EntityId, *ErasedRef] {
	return func(yield func(EntityId, *ErasedRef) bool) {
		for _, ref := range q.entries {
			if !yield(ref.entity, ref) {
				return
			}
		}
	}
}

// Implementing matches components whose pointer type implements I.
func Implementing[I any]() func(Component) bool {
	return func(c Component) bool {
		_, ok := c.(I)
		return ok
	}
}

// OfKinds matches components of any of the given types.
func OfKinds(types ...reflect.Type) func(Component) bool {
	set := make(map[reflect.Type]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return func(c Component) bool {
		return set[reflect.TypeOf(c).Elem()]
	}
}

// AnyComponent matches every component.
func AnyComponent(Component) bool {
	return true
}
