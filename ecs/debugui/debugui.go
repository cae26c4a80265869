// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kestrel/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	ecs.Unique
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiQuery captures every ImguiItem and the first ImguiInputState.
type ImguiQuery struct {
	Items      *ecs.Each[ImguiItem]
	InputState *ecs.UnitQuery[ImguiInputState]
}

func (q *ImguiQuery) CaptureComponents(store *ecs.Components) {
	q.Items.CaptureComponents(store)
	q.InputState.CaptureComponents(store)
}

// ImguiSystem defers every ImguiItem render function to the end of the phase
// and mirrors ImGui's input capture flags into ImguiInputState.
type ImguiSystem struct{}

func (i *ImguiSystem) NewQuery() *ImguiQuery {
	return &ImguiQuery{
		Items:      ecs.NewEach[ImguiItem](),
		InputState: ecs.NewUnitQuery[ImguiInputState](),
	}
}

// Run updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Run(frame *ecs.UpdateFrame, q *ImguiQuery) {
	if state, ok := q.InputState.Get(); ok {
		io := imgui.CurrentIO()
		state.Write(func(s *ImguiInputState) {
			s.WantCaptureMouse = io.WantCaptureMouse()
			s.WantCaptureKeyboard = io.WantCaptureKeyboard()
		})
	}

	for item := range q.Items.Values() {
		render := item.Value().Render
		if render != nil {
			frame.Commands.Defer(render)
		}
	}
}
