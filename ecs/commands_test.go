package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/kestrel/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsSpawn(t *testing.T) {
	entities := newTestEntities()
	commands := ecs.NewCommands()

	commands.Spawn(func(b *ecs.EntityBuilder) {
		b.With(Position{X: 1})
	})
	commands.Spawn(nil)
	assert.Equal(t, 2, commands.Len())
	assert.Equal(t, 0, entities.Len())

	commands.Flush(entities)
	assert.Equal(t, 2, entities.Len())
	assert.Equal(t, 0, commands.Len())
}

func TestCommandsDespawnWinsOverRegister(t *testing.T) {
	entities := newTestEntities()
	keep := entities.Spawn(Position{})
	drop := entities.Spawn(Position{})

	commands := ecs.NewCommands()
	commands.Register(drop, Health{Current: 1})
	commands.Register(keep, Health{Current: 2})
	commands.Despawn(drop)
	commands.Flush(entities)

	assert.False(t, entities.Contains(drop))
	ref, ok := ecs.UniqueOf[Health](storeOf(t, entities, keep))
	require.True(t, ok)
	assert.Equal(t, 2, ref.Value().Current)
}

func TestCommandsRemove(t *testing.T) {
	entities := newTestEntities()
	id := entities.Spawn(Position{}, Tag{Value: "a"}, Tag{Value: "b"})

	commands := ecs.NewCommands()
	commands.Remove(id, reflect.TypeFor[Tag]())
	commands.Remove(ecs.EntityId(999), reflect.TypeFor[Tag]())
	commands.Flush(entities)

	store := storeOf(t, entities, id)
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, 1, store.UniqueCount())
}

func TestCommandsDefer(t *testing.T) {
	entities := newTestEntities()
	commands := ecs.NewCommands()

	var calls []string
	commands.Defer(func() {
		calls = append(calls, "first")
		commands.Defer(func() { calls = append(calls, "later") })
	})
	commands.Flush(entities)
	assert.Equal(t, []string{"first"}, calls)
	assert.Equal(t, 1, commands.Len())

	commands.Flush(entities)
	assert.Equal(t, []string{"first", "later"}, calls)
}

// Reaper despawns every entity whose health reached zero while ranging over
// its query.
type Reaper struct{}

func (Reaper) NewQuery() *ecs.Each[Health] { return ecs.NewEach[Health]() }

func (Reaper) Run(frame *ecs.UpdateFrame, q *ecs.Each[Health]) {
	for id, ref := range q.Iter() {
		if ref.Value().Current <= 0 {
			frame.Commands.Despawn(id)
		}
	}
}

func TestCommandsFlushAfterPhase(t *testing.T) {
	entities := newTestEntities()
	scheduler := ecs.NewScheduler(entities)

	dead := entities.Spawn(Health{Current: 0})
	alive := entities.Spawn(Health{Current: 5})

	var seenDuringPhase bool
	ecs.Register(scheduler, ecs.PhaseUpdate, Reaper{})
	ecs.Register(scheduler, ecs.PhaseUpdate, &ecs.FuncSystem[*ecs.Each[Health]]{
		Label: "observer",
		Query: ecs.NewEach[Health],
		Fn: func(frame *ecs.UpdateFrame, q *ecs.Each[Health]) {
			_, seenDuringPhase = q.Find(dead)
		},
	})

	scheduler.Update(0, nil)

	assert.True(t, seenDuringPhase)
	assert.False(t, entities.Contains(dead))
	assert.True(t, entities.Contains(alive))
}

func TestCommandsQueuedDuringFlushRunNextFlush(t *testing.T) {
	entities := newTestEntities()
	commands := ecs.NewCommands()

	var spawned ecs.EntityId
	commands.Spawn(func(b *ecs.EntityBuilder) {
		spawned = b.Id()
		commands.Register(b.Id(), Health{Current: 7})
		commands.Spawn(nil)
	})

	commands.Flush(entities)
	assert.Equal(t, 1, entities.Len())
	assert.Equal(t, 2, commands.Len())
	_, ok := ecs.UniqueOf[Health](storeOf(t, entities, spawned))
	assert.False(t, ok)

	commands.Flush(entities)
	assert.Equal(t, 2, entities.Len())
	assert.Equal(t, 0, commands.Len())
	ref, ok := ecs.UniqueOf[Health](storeOf(t, entities, spawned))
	require.True(t, ok)
	assert.Equal(t, 7, ref.Value().Current)
}

func TestCommandsQueuedByUnregisterHookSurvive(t *testing.T) {
	entities := newTestEntities()
	commands := ecs.NewCommands()

	id := entities.Spawn(Position{}, &despawnNotifier{commands: commands})

	commands.Despawn(id)
	commands.Flush(entities)
	assert.False(t, entities.Contains(id))
	assert.Equal(t, 1, commands.Len())

	commands.Flush(entities)
	assert.Equal(t, 1, entities.Len())
}

// despawnNotifier spawns a replacement entity when its owner goes away.
type despawnNotifier struct {
	commands *ecs.Commands
}

func (n *despawnNotifier) OnUnregister(ecs.EntityId) {
	n.commands.Spawn(func(b *ecs.EntityBuilder) {
		b.With(Tag{Value: "replacement"})
	})
}
