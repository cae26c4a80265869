package debugui

import (
	"reflect"
	"testing"

	"github.com/plus3/kestrel/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	ecs.Unique
	X, Y  float64
	Label string
	Size  struct {
		W, H int
	}
	Owner  *point
	hidden int
}

type marker struct {
	Name string
}

func TestCollectAndFilterEntities(t *testing.T) {
	entities := ecs.NewEntities()
	a := entities.Spawn(point{X: 1}, marker{Name: "m"})
	b := entities.Spawn(marker{}, marker{}, marker{})
	c := entities.Spawn()

	infos := collectEntities(entities)
	require.Len(t, infos, 3)
	assert.Equal(t, a, infos[0].ID)
	assert.Equal(t, []string{"debugui.point", "debugui.marker"}, infos[0].Kinds)
	assert.Equal(t, 3, infos[1].ComponentCount)
	assert.Equal(t, c, infos[2].ID)

	assert.Len(t, filterEntities(infos, "", ""), 3)
	assert.Len(t, filterEntities(infos, "MARKER", ""), 2)
	assert.Len(t, filterEntities(infos, "", "debugui.point"), 1)

	sortEntities(infos, 2, false)
	assert.Equal(t, b, infos[0].ID)
	sortEntities(infos, 0, true)
	assert.Equal(t, []ecs.EntityId{a, b, c}, []ecs.EntityId{infos[0].ID, infos[1].ID, infos[2].ID})
}

func TestPageBounds(t *testing.T) {
	start, end := pageBounds(250, 2, 100)
	assert.Equal(t, 200, start)
	assert.Equal(t, 250, end)

	start, end = pageBounds(10, 3, 100)
	assert.Equal(t, 10, start)
	assert.Equal(t, 10, end)
}

func TestKindInfos(t *testing.T) {
	entities := ecs.NewEntities()
	entities.Spawn(point{}, marker{}, marker{})
	entities.Spawn(point{})

	kinds := kindInfos(entities.CollectStats())
	sortKinds(kinds, 2, false)

	require.Len(t, kinds, 2)
	assert.Equal(t, KindInfo{Name: "debugui.marker", Count: 2}, kinds[0])
	assert.Equal(t, KindInfo{Name: "debugui.point", Unique: true, Count: 2}, kinds[1])

	sortKinds(kinds, 1, false)
	assert.True(t, kinds[0].Unique)
}

func TestMatchEntities(t *testing.T) {
	entities := ecs.NewEntities()
	both := entities.Spawn(point{}, marker{}, marker{})
	entities.Spawn(marker{})
	entities.Spawn(point{})

	matches := matchEntities(entities, []reflect.Type{reflect.TypeFor[point](), reflect.TypeFor[marker]()})
	assert.Equal(t, []QueryMatch{{ID: both, Components: 3}}, matches)

	matches = matchEntities(entities, []reflect.Type{reflect.TypeFor[marker]()})
	assert.Len(t, matches, 2)
}

func TestInspectorFields(t *testing.T) {
	fields := inspectorFields.get(reflect.TypeFor[point]())

	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"X", "Y", "Label", "Size", "Owner"}, names)
	assert.True(t, fields[4].IsPointer)
	assert.Equal(t, reflect.TypeFor[point](), fields[4].Type)

	assert.Nil(t, inspectorFields.get(reflect.TypeFor[int]()))
}

func TestApplyEdits(t *testing.T) {
	p := &point{}
	root := reflect.ValueOf(p).Elem()

	applyEdits(root, []fieldEdit{
		{path: []int{1}, value: 2.5},
		{path: []int{3}, value: "moved"},
		{path: []int{4, 1}, value: int64(7)},
		{path: []int{2}, value: "ignored"},
	})

	assert.Equal(t, 2.5, p.X)
	assert.Equal(t, "moved", p.Label)
	assert.Equal(t, 7, p.Size.H)
	assert.Zero(t, p.Y)

	var score uint16
	applyEdits(reflect.ValueOf(&score).Elem(), []fieldEdit{{value: uint64(9)}})
	assert.Equal(t, uint16(9), score)
}

func TestFrameHistory(t *testing.T) {
	h := NewFrameHistory(3)
	assert.Zero(t, h.Average())

	h.Record(0.010)
	h.Record(0.020)
	assert.InDelta(t, 15, h.Average(), 1e-4)

	h.Record(0.030)
	h.Record(0.040)
	assert.InDelta(t, 30, h.Average(), 1e-4)
}

func TestDebugUISelection(t *testing.T) {
	entities := ecs.NewEntities()
	scheduler := ecs.NewScheduler(entities)
	system := NewDebugUISystem(scheduler)
	ecs.Register(scheduler, ecs.PhaseUpdate, system)

	id := entities.Spawn(marker{})
	system.Select(id)
	scheduler.Update(0.016, nil)
	assert.Equal(t, id, system.Selected())

	entities.Despawn(id)
	scheduler.Update(0.016, nil)
	assert.Equal(t, ecs.NoEntity, system.Selected())
}

func TestSpawnDebugUI(t *testing.T) {
	registry := ecs.NewStrictComponentRegistry()
	RegisterDebugUIComponents(registry)
	entities := ecs.NewEntities(ecs.WithRegistry(registry))

	ids := SpawnDebugUI(entities)
	assert.Len(t, ids, 6)

	q := ecs.NewFilterQuery(ecs.Implementing[Panel]())
	ecs.Capture(q, entities)
	assert.Equal(t, 5, q.Len())
}
