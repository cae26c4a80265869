package main

import (
	"math/rand"
	"reflect"

	"github.com/plus3/kestrel/components"
	"github.com/plus3/kestrel/ecs"
)

type Velocity struct {
	ecs.Unique
	DX, DY float64
}

type Health struct {
	ecs.Unique
	Current, Max int
}

// Tag is a regular component; entities carry several of them.
type Tag struct {
	Name string
}

// Decaying entities lose health every frame and are despawned at zero.
type Decaying struct {
	ecs.Unique
	Rate int
}

var tagNames = []string{"red", "green", "blue", "fast", "slow"}

// spawnRandomEntity builds an entity with a random subset of the stress
// components, including between zero and three tags.
func spawnRandomEntity(b *ecs.EntityBuilder, rng *rand.Rand) {
	b.With(components.NewTransform(rng.Float64()*1000, rng.Float64()*1000))

	if rng.Intn(2) == 0 {
		b.With(Velocity{DX: rng.Float64()*2 - 1, DY: rng.Float64()*2 - 1})
	}
	if rng.Intn(3) == 0 {
		b.With(Health{Current: 100, Max: 100})
		if rng.Intn(4) == 0 {
			b.With(Decaying{Rate: 1 + rng.Intn(10)})
		}
	}
	for range rng.Intn(4) {
		b.With(Tag{Name: tagNames[rng.Intn(len(tagNames))]})
	}
	if rng.Intn(5) == 0 {
		b.With(components.Spin{Speed: rng.Float64()})
	}
}

type MovementSystem struct{}

func (MovementSystem) NewQuery() *ecs.PairQuery[Velocity, components.Transform] {
	return ecs.NewPairQuery[Velocity, components.Transform]()
}

func (MovementSystem) Run(frame *ecs.UpdateFrame, q *ecs.PairQuery[Velocity, components.Transform]) {
	for _, row := range q.Iter() {
		if row.Second == nil {
			continue
		}
		v := row.First.Value()
		row.Second.Write(func(t *components.Transform) {
			t.LocalPosition.X += v.DX * frame.DeltaTime
			t.LocalPosition.Y += v.DY * frame.DeltaTime
		})
	}
}

type DecaySystem struct {
	Despawned int
}

func (s *DecaySystem) NewQuery() *ecs.PairQuery[Decaying, Health] {
	return ecs.NewPairQuery[Decaying, Health]()
}

func (s *DecaySystem) Run(frame *ecs.UpdateFrame, q *ecs.PairQuery[Decaying, Health]) {
	for id, row := range q.Iter() {
		if row.Second == nil {
			continue
		}
		rate := row.First.Value().Rate
		dead := false
		row.Second.Write(func(h *Health) {
			h.Current -= rate
			dead = h.Current <= 0
		})
		if dead {
			frame.Commands.Despawn(id)
			s.Despawned++
		}
	}
}

// RespawnSystem keeps the population near its target by queueing spawns.
type RespawnSystem struct {
	Target  int
	Rng     *rand.Rand
	Spawned int
}

func (s *RespawnSystem) NewQuery() *ecs.UnitQuery[components.Diag] {
	return ecs.NewUnitQuery[components.Diag]()
}

func (s *RespawnSystem) Run(frame *ecs.UpdateFrame, _ *ecs.UnitQuery[components.Diag]) {
	for missing := s.Target - frame.Entities.Len(); missing > 0; missing-- {
		frame.Commands.Spawn(func(b *ecs.EntityBuilder) {
			spawnRandomEntity(b, s.Rng)
		})
		s.Spawned++
	}
}

// TagCensusSystem counts tags through an untyped filter query.
type TagCensusSystem struct {
	Counts map[string]int
}

func (s *TagCensusSystem) NewQuery() *ecs.FilterQuery {
	return ecs.NewFilterQuery(ecs.OfKinds(reflect.TypeFor[Tag]()))
}

func (s *TagCensusSystem) Run(_ *ecs.UpdateFrame, q *ecs.FilterQuery) {
	clear(s.Counts)
	for _, ref := range q.Iter() {
		ref.Read(func(c ecs.Component) {
			s.Counts[c.(*Tag).Name]++
		})
	}
}

// setupWorld registers the stress systems and populates the world.
func setupWorld(entities *ecs.Entities, scheduler *ecs.Scheduler, entityCount int, rng *rand.Rand) (*DecaySystem, *RespawnSystem) {
	decay := &DecaySystem{}
	// The Diag entity counts towards the population.
	respawn := &RespawnSystem{Target: entityCount + 1, Rng: rng}

	ecs.Register(scheduler, ecs.PhaseUpdate, MovementSystem{})
	ecs.Register(scheduler, ecs.PhaseUpdate, &components.SpinSystem{})
	ecs.Register(scheduler, ecs.PhaseUpdate, decay)
	ecs.Register(scheduler, ecs.PhaseUpdate, respawn)
	ecs.Register(scheduler, ecs.PhaseUpdate, &components.DiagSystem{Smoothing: 0.9})
	ecs.Register(scheduler, ecs.PhaseRender, &TagCensusSystem{Counts: make(map[string]int)})

	entities.Spawn(components.Diag{})
	for range entityCount {
		b := entities.Create()
		spawnRandomEntity(b, rng)
		b.Build()
	}

	return decay, respawn
}
