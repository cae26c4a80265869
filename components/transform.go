package components

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/kestrel/ecs"
)

// maxHierarchyDepth bounds parent walks so a cycle cannot loop forever.
const maxHierarchyDepth = 64

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// Transform positions an entity relative to its parent, or to the world when
// Parent is ecs.NoEntity or no longer exists.
type Transform struct {
	ecs.Unique
	LocalPosition Vec2
	Rotation      float64
	Scale         Vec2
	Parent        ecs.EntityId
}

// NewTransform returns a transform at (x, y) with unit scale.
func NewTransform(x, y float64) Transform {
	return Transform{
		LocalPosition: Vec2{X: x, Y: y},
		Scale:         Vec2{X: 1, Y: 1},
	}
}

// LocalMatrix returns scale, then rotation, then translation.
func (t Transform) LocalMatrix() ebiten.GeoM {
	var m ebiten.GeoM
	m.Scale(t.Scale.X, t.Scale.Y)
	m.Rotate(t.Rotation)
	m.Translate(t.LocalPosition.X, t.LocalPosition.Y)
	return m
}

// World returns the transform's matrix composed with every ancestor's. A
// parent id that no longer resolves, or that has no Transform, ends the walk.
func (t Transform) World(entities *ecs.Entities) ebiten.GeoM {
	world := t.LocalMatrix()
	visited := map[ecs.EntityId]bool{}

	parent := t.Parent
	for depth := 0; parent.Valid() && depth < maxHierarchyDepth; depth++ {
		if visited[parent] {
			break
		}
		visited[parent] = true

		local, next, ok := parentTransform(entities, parent)
		if !ok {
			break
		}
		world.Concat(local)
		parent = next
	}

	return world
}

// WorldPosition returns the world-space origin of the transform.
func (t Transform) WorldPosition(entities *ecs.Entities) Vec2 {
	m := t.World(entities)
	x, y := m.Apply(0, 0)
	return Vec2{X: x, Y: y}
}

// WorldMatrix resolves the world matrix of an entity's Transform.
func WorldMatrix(entities *ecs.Entities, id ecs.EntityId) (ebiten.GeoM, bool) {
	var (
		t     Transform
		found bool
	)
	entities.Get(id, func(e *ecs.Entity) {
		ref, ok := ecs.UniqueOf[Transform](e.Components())
		if !ok {
			return
		}
		t = ref.Value()
		found = true
	})
	if !found {
		return ebiten.GeoM{}, false
	}
	return t.World(entities), true
}

func parentTransform(entities *ecs.Entities, id ecs.EntityId) (ebiten.GeoM, ecs.EntityId, bool) {
	var (
		local ebiten.GeoM
		next  ecs.EntityId
		found bool
	)
	entities.Get(id, func(e *ecs.Entity) {
		ref, ok := ecs.UniqueOf[Transform](e.Components())
		if !ok {
			return
		}
		ref.Read(func(t *Transform) {
			local = t.LocalMatrix()
			next = t.Parent
		})
		found = true
	})
	return local, next, found
}

// Spin rotates an entity's Transform at a constant rate in radians per second.
type Spin struct {
	ecs.Unique
	Speed float64
}

// SpinSystem advances every Transform that has a Spin. Entities without a
// Transform are skipped.
type SpinSystem struct{}

func (s *SpinSystem) NewQuery() *ecs.PairQuery[Spin, Transform] {
	return ecs.NewPairQuery[Spin, Transform]()
}

func (s *SpinSystem) Run(frame *ecs.UpdateFrame, query *ecs.PairQuery[Spin, Transform]) {
	for _, row := range query.Iter() {
		if row.Second == nil {
			continue
		}
		speed := row.First.Value().Speed
		row.Second.Write(func(t *Transform) {
			t.Rotation = math.Mod(t.Rotation+speed*frame.DeltaTime, 2*math.Pi)
		})
	}
}
