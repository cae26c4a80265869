package ecs

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ErrNoGraphics is returned by AppState.AcquireTarget when no graphics
// adapter is attached.
var ErrNoGraphics = eris.New("ecs: no graphics adapter attached")

// Phase names a scheduler phase.
type Phase uint8

const (
	PhaseUpdate Phase = iota
	PhaseRender
	// PhaseInput tags frames handed to Input; systems are not registered into it.
	PhaseInput
)

func (p Phase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhaseRender:
		return "render"
	case PhaseInput:
		return "input"
	default:
		return "unknown"
	}
}

// InputEvent is one platform input event, opaque to the core.
type InputEvent any

// RenderTarget is whatever the rendering backend draws into for this frame.
type RenderTarget any

// Graphics is the rendering backend as seen by systems.
type Graphics interface {
	AcquireTarget() (RenderTarget, error)
}

// Clock is the application time base.
type Clock struct {
	start  time.Time
	now    func() time.Time
	frames uint64
}

// NewClock starts a clock at the current time.
func NewClock() *Clock {
	return NewClockAt(time.Now)
}

// NewClockAt starts a clock reading time from now.
func NewClockAt(now func() time.Time) *Clock {
	return &Clock{start: now(), now: now}
}

// Elapsed returns the time since the clock started.
func (c *Clock) Elapsed() time.Duration {
	return c.now().Sub(c.start)
}

// Frames returns how many update phases have run.
func (c *Clock) Frames() uint64 {
	return c.frames
}

// AppState is the shared application state handed to every system.
type AppState struct {
	Window   any
	Clock    *Clock
	Graphics *Cell[Graphics]
}

// NewAppState creates application state for the given window handle and
// graphics adapter. Either may be nil in headless runs.
func NewAppState(window any, graphics Graphics) *AppState {
	state := &AppState{
		Window: window,
		Clock:  NewClock(),
	}
	if graphics != nil {
		state.Graphics = NewCell("graphics", graphics)
	}
	return state
}

// AcquireTarget borrows the graphics adapter exclusively and returns the
// current render target.
func (s *AppState) AcquireTarget() (RenderTarget, error) {
	if s == nil || s.Graphics == nil {
		return nil, ErrNoGraphics
	}
	g, err := s.Graphics.TryBorrowMut()
	if err != nil {
		return nil, err
	}
	defer g.Release()

	target, err := (*g.Get()).AcquireTarget()
	if err != nil {
		return nil, eris.Wrap(err, "acquire render target")
	}
	return target, nil
}

// UpdateFrame is what a system receives on each invocation.
type UpdateFrame struct {
	DeltaTime float64
	Phase     Phase
	State     *AppState
	Entities  *Entities
	Commands  *Commands
	Logger    zerolog.Logger
}

func newUpdateFrame(dt float64, phase Phase, state *AppState, entities *Entities, commands *Commands) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Phase:     phase,
		State:     state,
		Entities:  entities,
		Commands:  commands,
	}
}

// Delta returns DeltaTime as a duration.
func (f *UpdateFrame) Delta() time.Duration {
	return time.Duration(f.DeltaTime * float64(time.Second))
}
