package ecs_test

import (
	"reflect"
	"slices"
	"testing"

	"github.com/plus3/kestrel/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeOf(t *testing.T, entities *ecs.Entities, id ecs.EntityId) *ecs.Components {
	t.Helper()
	var store *ecs.Components
	require.True(t, entities.Get(id, func(e *ecs.Entity) {
		store = e.Components()
	}))
	return store
}

func TestUniqueComponentReplaces(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Position{X: 1, Y: 2})
	store := storeOf(t, entities, id)

	previous := store.Register(Position{X: 5, Y: 5})
	require.NotNil(t, previous)
	assert.Equal(t, 1.0, previous.(*Position).X)

	var xs []float64
	for ref := range ecs.IterKind[Position](store) {
		strong, err := ref.Retrieve()
		require.NoError(t, err)
		xs = append(xs, strong.Value().X)
	}
	assert.Equal(t, []float64{5}, xs)
	assert.Equal(t, 1, store.UniqueCount())
	assert.Equal(t, 0, store.Count())
}

func TestUniqueFirstRegistrationReturnsNil(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn()
	store := storeOf(t, entities, id)

	assert.Nil(t, store.Register(&Health{Current: 10, Max: 10}))
	assert.True(t, store.Has(reflect.TypeFor[Health]()))
}

func TestRegularComponentsAccumulateInOrder(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Tag{Value: "a"}, Tag{Value: "b"})
	store := storeOf(t, entities, id)

	assert.Nil(t, store.Register(Tag{Value: "c"}))

	var values []string
	for ref := range ecs.IterKind[Tag](store) {
		strong, err := ref.Retrieve()
		require.NoError(t, err)
		values = append(values, strong.Value().Value)
	}
	assert.Equal(t, []string{"a", "b", "c"}, values)
	assert.Equal(t, 3, store.Count())
	assert.Equal(t, 3, store.Len())
}

func TestPrimitiveComponents(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Score(3), Score(4))
	store := storeOf(t, entities, id)

	total := int32(0)
	for ref := range ecs.IterKind[Score](store) {
		strong, err := ref.Retrieve()
		require.NoError(t, err)
		total += int32(strong.Value())
	}
	assert.Equal(t, int32(7), total)
}

func TestIterKindMissingType(t *testing.T) {
	entities := newTestEntities()
	store := storeOf(t, entities, entities.Spawn(Position{}))

	count := 0
	for range ecs.IterKind[Velocity](store) {
		count++
	}
	assert.Zero(t, count)

	_, ok := ecs.UniqueOf[Velocity](store)
	assert.False(t, ok)
}

func TestRemoveKind(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Position{}, Tag{Value: "a"}, Tag{Value: "b"}, Velocity{})
	store := storeOf(t, entities, id)

	assert.Equal(t, 2, ecs.Remove[Tag](store))
	assert.Equal(t, 1, ecs.Remove[Position](store))
	assert.Equal(t, 0, ecs.Remove[Position](store))

	assert.False(t, store.Has(reflect.TypeFor[Tag]()))
	assert.False(t, store.Has(reflect.TypeFor[Position]()))
	assert.True(t, store.Has(reflect.TypeFor[Velocity]()))
	assert.Equal(t, 1, store.Len())
}

func TestKindsListsUniqueFirst(t *testing.T) {
	entities := newTestEntities()
	store := storeOf(t, entities, entities.Spawn(Tag{}, Position{}, Tag{}, Velocity{}))

	var names []string
	for _, kind := range store.Kinds() {
		names = append(names, kind.Name())
	}
	assert.Equal(t, []string{"ecs_test.Position", "ecs_test.Velocity", "ecs_test.Tag"}, names)
}

func TestAllYieldsEveryComponent(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Tag{Value: "x"}, Position{X: 1})
	store := storeOf(t, entities, id)

	var kinds []string
	for ref := range store.All() {
		assert.Equal(t, id, ref.Entity())
		kinds = append(kinds, ref.Kind().Name())
	}
	assert.Equal(t, []string{"ecs_test.Position", "ecs_test.Tag"}, kinds)
}

func TestRegisterHooks(t *testing.T) {
	var events []string
	entities := newTestEntities()

	id := entities.Spawn(Lifecycle{Events: &events})
	store := storeOf(t, entities, id)
	store.Register(Lifecycle{Events: &events})
	ecs.Remove[Lifecycle](store)

	owner := id.String()
	assert.Equal(t, []string{
		"register " + owner,
		"unregister " + owner,
		"register " + owner,
		"unregister " + owner,
	}, events)
}

func TestDespawnFiresUnregister(t *testing.T) {
	var events []string
	entities := newTestEntities()
	id := entities.Spawn(Lifecycle{Events: &events})

	require.True(t, entities.Despawn(id))
	assert.True(t, slices.Contains(events, "unregister "+id.String()))
}

func TestRejectsInvalidComponents(t *testing.T) {
	entities := newTestEntities()
	store := storeOf(t, entities, entities.Spawn())

	assert.Panics(t, func() { store.Register(nil) })
	assert.Panics(t, func() { store.Register(map[string]int{}) })
	assert.Panics(t, func() { store.Register(func() {}) })
	var nilPos *Position
	assert.Panics(t, func() { store.Register(nilPos) })
}
