package ecs

import "reflect"

// System is per-frame logic over a query of shape Q. NewQuery is called for
// every invocation; the scheduler captures it over all live entities before
// calling Run. Fields of the implementing type persist between frames.
type System[Q Query] interface {
	NewQuery() Q
	Run(frame *UpdateFrame, query Q)
}

// InputSystem is implemented by systems that react to device input. Input is
// only dispatched to update-phase systems; registering one into the render
// phase panics.
type InputSystem[Q Query] interface {
	Input(frame *UpdateFrame, event InputEvent, query Q)
}

// SetupSystem is implemented by systems that need the application state once
// before the first frame.
type SetupSystem interface {
	Setup(state *AppState)
}

// SystemInterface is a system with its query type erased, so systems with
// different query shapes can share one list.
type SystemInterface interface {
	Name() string
	Setup(state *AppState)
	HandlesInput() bool
	Input(frame *UpdateFrame, event InputEvent, entities *Entities)
	Run(frame *UpdateFrame, entities *Entities)
}

type erasedSystem struct {
	name  string
	setup func(*AppState)
	input func(*UpdateFrame, InputEvent, *Entities)
	run   func(*UpdateFrame, *Entities)
}

func (s *erasedSystem) Name() string { return s.name }

func (s *erasedSystem) Setup(state *AppState) {
	if s.setup != nil {
		s.setup(state)
	}
}

func (s *erasedSystem) HandlesInput() bool { return s.input != nil }

func (s *erasedSystem) Input(frame *UpdateFrame, event InputEvent, entities *Entities) {
	if s.input != nil {
		s.input(frame, event, entities)
	}
}

func (s *erasedSystem) Run(frame *UpdateFrame, entities *Entities) {
	s.run(frame, entities)
}

// Erase wraps a typed system into a SystemInterface.
func Erase[Q Query](system System[Q]) SystemInterface {
	erased := &erasedSystem{
		name: systemName(system),
		run: func(frame *UpdateFrame, entities *Entities) {
			q := system.NewQuery()
			Capture(q, entities)
			system.Run(frame, q)
		},
	}

	if setup, ok := system.(SetupSystem); ok {
		erased.setup = setup.Setup
	}

	if input, ok := system.(InputSystem[Q]); ok {
		erased.input = func(frame *UpdateFrame, event InputEvent, entities *Entities) {
			q := system.NewQuery()
			Capture(q, entities)
			input.Input(frame, event, q)
		}
	}

	return erased
}

// FuncSystem adapts a pair of functions into a System.
type FuncSystem[Q Query] struct {
	Label string
	Query func() Q
	Fn    func(frame *UpdateFrame, query Q)
}

func (f *FuncSystem[Q]) NewQuery() Q { return f.Query() }

func (f *FuncSystem[Q]) Run(frame *UpdateFrame, query Q) { f.Fn(frame, query) }

func systemName(system any) string {
	if named, ok := system.(interface{ Name() string }); ok {
		return named.Name()
	}
	if fs, ok := system.(interface{ label() string }); ok && fs.label() != "" {
		return fs.label()
	}

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return systemType.Name()
}

func (f *FuncSystem[Q]) label() string { return f.Label }
