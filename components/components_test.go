package components_test

import (
	"math"
	"testing"

	"github.com/plus3/kestrel/components"
	"github.com/plus3/kestrel/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type disposable struct {
	disposed int
}

func (d *disposable) Dispose() { d.disposed++ }

func uniqueOf[T any](t *testing.T, entities *ecs.Entities, id ecs.EntityId) *ecs.StrongRef[T] {
	t.Helper()
	var ref *ecs.StrongRef[T]
	require.True(t, entities.Get(id, func(e *ecs.Entity) {
		ref, _ = ecs.UniqueOf[T](e.Components())
	}))
	require.NotNil(t, ref)
	return ref
}

func TestDiagSystem(t *testing.T) {
	entities := ecs.NewEntities()
	scheduler := ecs.NewScheduler(entities)
	ecs.Register(scheduler, ecs.PhaseUpdate, &components.DiagSystem{})

	id := entities.Spawn(components.Diag{})
	diag := uniqueOf[components.Diag](t, entities, id)
	assert.Zero(t, diag.Value().FPS)

	scheduler.Update(1.0/60, nil)

	got := diag.Value()
	assert.InDelta(t, 60, got.FPS, 1e-9)
	assert.Equal(t, uint64(1), got.Frames)
	assert.Equal(t, 1, got.Entities)
}

func TestDiagSystemSmoothing(t *testing.T) {
	entities := ecs.NewEntities()
	scheduler := ecs.NewScheduler(entities)
	ecs.Register(scheduler, ecs.PhaseUpdate, &components.DiagSystem{Smoothing: 0.5})

	id := entities.Spawn(components.Diag{})
	scheduler.Update(0.1, nil)
	scheduler.Update(0.05, nil)
	scheduler.Update(0, nil)

	got := uniqueOf[components.Diag](t, entities, id).Value()
	assert.InDelta(t, 15, got.FPS, 1e-9)
	assert.Equal(t, uint64(3), got.Frames)
	assert.InDelta(t, 0.15, got.Elapsed, 1e-9)
}

func TestDiagSystemWithoutDiag(t *testing.T) {
	scheduler := ecs.NewScheduler(ecs.NewEntities())
	ecs.Register(scheduler, ecs.PhaseUpdate, &components.DiagSystem{})
	assert.NotPanics(t, func() { scheduler.Update(0.1, nil) })
}

func TestTransformReplace(t *testing.T) {
	entities := ecs.NewEntities()
	id := entities.Spawn(components.NewTransform(0, 0))

	first := uniqueOf[components.Transform](t, entities, id)
	assert.Equal(t, components.Vec2{}, first.Value().LocalPosition)

	entities.GetMut(id, func(e *ecs.Entity) {
		e.Components().Register(components.NewTransform(5, 5))
	})

	assert.False(t, first.Alive())
	current := uniqueOf[components.Transform](t, entities, id)
	assert.Equal(t, components.Vec2{X: 5, Y: 5}, current.Value().LocalPosition)
}

func TestTransformWorld(t *testing.T) {
	entities := ecs.NewEntities()

	root := components.NewTransform(10, 0)
	root.Rotation = math.Pi / 2
	rootId := entities.Spawn(root)

	child := components.NewTransform(5, 0)
	child.Parent = rootId
	childId := entities.Spawn(child)

	grandchild := components.NewTransform(1, 0)
	grandchild.Parent = childId

	pos := grandchild.WorldPosition(entities)
	assert.InDelta(t, 10, pos.X, 1e-9)
	assert.InDelta(t, 6, pos.Y, 1e-9)

	m, ok := components.WorldMatrix(entities, childId)
	require.True(t, ok)
	x, y := m.Apply(0, 0)
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 5, y, 1e-9)

	_, ok = components.WorldMatrix(entities, 999)
	assert.False(t, ok)
}

func TestTransformMissingParentIsRoot(t *testing.T) {
	entities := ecs.NewEntities()

	orphan := components.NewTransform(2, 3)
	orphan.Parent = 42

	assert.Equal(t, components.Vec2{X: 2, Y: 3}, orphan.WorldPosition(entities))
}

func TestTransformCycleTerminates(t *testing.T) {
	entities := ecs.NewEntities()
	a := entities.Spawn(components.NewTransform(1, 0))
	b := entities.Spawn(components.NewTransform(1, 0))

	uniqueOf[components.Transform](t, entities, a).Write(func(tr *components.Transform) { tr.Parent = b })
	uniqueOf[components.Transform](t, entities, b).Write(func(tr *components.Transform) { tr.Parent = a })

	assert.NotPanics(t, func() {
		_, _ = components.WorldMatrix(entities, a)
	})
}

func TestTransformScale(t *testing.T) {
	tr := components.NewTransform(1, 1)
	tr.Scale = components.Vec2{X: 2, Y: 3}

	m := tr.LocalMatrix()
	x, y := m.Apply(1, 1)
	assert.InDelta(t, 3, x, 1e-9)
	assert.InDelta(t, 4, y, 1e-9)
}

func TestSpinSystem(t *testing.T) {
	entities := ecs.NewEntities()
	scheduler := ecs.NewScheduler(entities)
	ecs.Register(scheduler, ecs.PhaseUpdate, &components.SpinSystem{})

	spinning := entities.Spawn(components.NewTransform(0, 0), components.Spin{Speed: 2})
	entities.Spawn(components.Spin{Speed: 1})

	scheduler.Update(0.25, nil)

	assert.InDelta(t, 0.5, uniqueOf[components.Transform](t, entities, spinning).Value().Rotation, 1e-9)
}

func TestGraphicDisplayerDisposesOnRemoval(t *testing.T) {
	entities := ecs.NewEntities()
	drawable := &disposable{}

	id := entities.Spawn(components.NewGraphicDisplayer(drawable))
	entities.GetMut(id, func(e *ecs.Entity) {
		e.Components().Register(components.NewGraphicDisplayer(nil))
	})
	assert.Equal(t, 1, drawable.disposed)

	other := &disposable{}
	id = entities.Spawn(components.GraphicDisplayer{Drawable: other, Layer: 2})
	entities.Despawn(id)
	assert.Equal(t, 1, other.disposed)
}
