package ecs_test

import (
	"reflect"
	"sort"
	"testing"

	"github.com/plus3/kestrel/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEachCapturesEveryInstance(t *testing.T) {
	entities := newTestEntities()
	e1 := entities.Spawn(Tag{Value: "a"}, Tag{Value: "b"})
	entities.Spawn(Position{})
	e3 := entities.Spawn(Tag{Value: "c"})

	q := ecs.NewEach[Tag]()
	ecs.Capture(q, entities)

	require.Equal(t, 3, q.Len())

	var owners []ecs.EntityId
	var values []string
	for id, ref := range q.Iter() {
		owners = append(owners, id)
		values = append(values, ref.Value().Value)
	}
	assert.Equal(t, []ecs.EntityId{e1, e1, e3}, owners)
	assert.Equal(t, []string{"a", "b", "c"}, values)

	first, ok := q.Find(e1)
	require.True(t, ok)
	assert.Equal(t, "a", first.Value().Value)

	// Ranging twice yields the same rows.
	count := 0
	for range q.Values() {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestEachUpdate(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Health{Current: 1, Max: 10})

	q := ecs.NewEach[Health]()
	ecs.Capture(q, entities)
	q.Update(func(owner ecs.EntityId, h *Health) {
		assert.Equal(t, id, owner)
		h.Current = h.Max
	})

	ref, _ := ecs.UniqueOf[Health](storeOf(t, entities, id))
	assert.Equal(t, 10, ref.Value().Current)
}

func TestCapturedRefsOutliveRemoval(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Position{X: 4})

	q := ecs.NewEach[Position]()
	ecs.Capture(q, entities)
	ecs.Remove[Position](storeOf(t, entities, id))

	ref, ok := q.Find(id)
	require.True(t, ok)
	assert.False(t, ref.Alive())
	assert.Equal(t, 4.0, ref.Value().X)
}

func TestPairQueryIsLeftJoin(t *testing.T) {
	entities := newTestEntities()
	e1 := entities.Spawn(Position{X: 1}, Velocity{DX: 2})
	e2 := entities.Spawn(Position{X: 3})
	entities.Spawn(Velocity{DX: 9})

	q := ecs.NewPairQuery[Position, Velocity]()
	ecs.Capture(q, entities)

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.Second().Len())

	rows := map[ecs.EntityId]ecs.Pair[Position, Velocity]{}
	for id, row := range q.Iter() {
		require.NotNil(t, row.First)
		rows[id] = row
	}

	require.Contains(t, rows, e1)
	require.Contains(t, rows, e2)
	require.NotNil(t, rows[e1].Second)
	assert.Equal(t, 2.0, rows[e1].Second.Value().DX)
	assert.Nil(t, rows[e2].Second)
}

func TestJoinPairWithRegularComponents(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Tag{Value: "a"}, Tag{Value: "b"}, Health{Current: 7})

	q := ecs.JoinPair(ecs.NewEach[Tag](), ecs.NewEach[Health]())
	ecs.Capture(q, entities)

	rows := 0
	for owner, row := range q.Iter() {
		rows++
		assert.Equal(t, id, owner)
		assert.Equal(t, 7, row.Second.Value().Current)
	}
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, q.First().Len())
}

func TestTripleQuery(t *testing.T) {
	entities := newTestEntities()
	full := entities.Spawn(Position{}, Velocity{}, Health{})
	partial := entities.Spawn(Position{}, Health{})

	q := ecs.NewTripleQuery[Position, Velocity, Health]()
	ecs.Capture(q, entities)
	require.Equal(t, 2, q.Len())

	for id, row := range q.Iter() {
		assert.NotNil(t, row.First)
		assert.NotNil(t, row.Third)
		switch id {
		case full:
			assert.NotNil(t, row.Second)
		case partial:
			assert.Nil(t, row.Second)
		default:
			t.Fatalf("unexpected entity %s", id)
		}
	}
}

func TestUnitQuery(t *testing.T) {
	entities := newTestEntities()

	q := ecs.NewUnitQuery[Health]()
	ecs.Capture(q, entities)
	assert.True(t, q.IsEmpty())
	_, ok := q.Get()
	assert.False(t, ok)

	first := entities.Spawn(Health{Current: 1})
	entities.Spawn(Health{Current: 2})

	q = ecs.NewUnitQuery[Health]()
	ecs.Capture(q, entities)
	require.False(t, q.IsEmpty())

	ref, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, 1, ref.Value().Current)

	owner, ok := q.Entity()
	require.True(t, ok)
	assert.Equal(t, first, owner)
}

func TestFilterQueryImplementing(t *testing.T) {
	entities := newTestEntities()
	entities.Spawn(Label{Text: "one"}, Position{})
	entities.Spawn(Badge{Title: "two"}, Label{Text: "three"})

	q := ecs.NewFilterQuery(ecs.Implementing[Describer]())
	ecs.Capture(q, entities)
	require.Equal(t, 3, q.Len())

	var described []string
	for _, ref := range q.Iter() {
		ref.Read(func(c ecs.Component) {
			described = append(described, c.(Describer).Describe())
		})
	}
	sort.Strings(described)
	assert.Equal(t, []string{"badge:two", "one", "three"}, described)
}

func TestFilterQueryOfKinds(t *testing.T) {
	entities := newTestEntities()
	entities.Spawn(Position{}, Velocity{}, Tag{})
	entities.Spawn(Tag{})

	q := ecs.NewFilterQuery(ecs.OfKinds(reflect.TypeFor[Position](), reflect.TypeFor[Tag]()))
	ecs.Capture(q, entities)
	assert.Equal(t, 3, q.Len())

	all := ecs.NewFilterQuery(ecs.AnyComponent)
	ecs.Capture(all, entities)
	assert.Equal(t, 4, all.Len())
}

func TestCaptureDuringExclusiveEntityBorrowPanics(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Position{})

	assert.Panics(t, func() {
		entities.GetMut(id, func(*ecs.Entity) {
			ecs.Capture(ecs.NewEach[Position](), entities)
		})
	})
}

func TestFilterQuerySkipsExclusivelyBorrowed(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Badge{Title: "held"}, Label{Text: "free"})

	badge, ok := ecs.UniqueOf[Badge](storeOf(t, entities, id))
	require.True(t, ok)

	badge.Write(func(*Badge) {
		q := ecs.NewFilterQuery(ecs.Implementing[Describer]())
		ecs.Capture(q, entities)
		assert.Equal(t, 1, q.Len())
	})
}
