package ecs_test

import "github.com/plus3/kestrel/ecs"

// Common test component types
type Position struct {
	ecs.Unique
	X, Y float64
}

type Velocity struct {
	ecs.Unique
	DX, DY float64
}

type Health struct {
	ecs.Unique
	Current int
	Max     int
}

// Tag is a regular component; an entity may carry any number of them.
type Tag struct {
	Value string
}

type Score int32

// Lifecycle records register and unregister notifications.
type Lifecycle struct {
	ecs.Unique
	Events *[]string
}

func (l *Lifecycle) OnRegister(owner ecs.EntityId) {
	*l.Events = append(*l.Events, "register "+owner.String())
}

func (l *Lifecycle) OnUnregister(owner ecs.EntityId) {
	*l.Events = append(*l.Events, "unregister "+owner.String())
}

// Describer is implemented by components that can be listed by a filter query.
type Describer interface {
	Describe() string
}

type Label struct {
	Text string
}

func (l *Label) Describe() string { return l.Text }

type Badge struct {
	ecs.Unique
	Title string
}

func (b *Badge) Describe() string { return "badge:" + b.Title }

func newTestEntities() *ecs.Entities {
	return ecs.NewEntities()
}
