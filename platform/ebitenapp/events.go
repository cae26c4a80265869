package ebitenapp

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/kestrel/ecs"
)

// KeyEvent reports a key going down or up.
type KeyEvent struct {
	Key     ebiten.Key
	Pressed bool
}

// MouseButtonEvent reports a mouse button going down or up at the cursor position.
type MouseButtonEvent struct {
	Button  ebiten.MouseButton
	Pressed bool
	X, Y    int
}

// CursorEvent reports a cursor move.
type CursorEvent struct {
	X, Y int
}

// WheelEvent reports scrolling.
type WheelEvent struct {
	DX, DY float64
}

// InputSource turns device state into input events once per tick.
type InputSource interface {
	Poll(events []ecs.InputEvent) []ecs.InputEvent
}

var mouseButtons = []ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// ebitenInput polls ebiten's input state and reports edges.
type ebitenInput struct {
	keys        []ebiten.Key
	cursorX     int
	cursorY     int
	cursorKnown bool
}

func (in *ebitenInput) Poll(events []ecs.InputEvent) []ecs.InputEvent {
	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, key := range in.keys {
		events = append(events, KeyEvent{Key: key, Pressed: true})
	}
	in.keys = inpututil.AppendJustReleasedKeys(in.keys[:0])
	for _, key := range in.keys {
		events = append(events, KeyEvent{Key: key, Pressed: false})
	}

	x, y := ebiten.CursorPosition()
	if !in.cursorKnown || x != in.cursorX || y != in.cursorY {
		in.cursorX, in.cursorY, in.cursorKnown = x, y, true
		events = append(events, CursorEvent{X: x, Y: y})
	}

	for _, button := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(button) {
			events = append(events, MouseButtonEvent{Button: button, Pressed: true, X: x, Y: y})
		}
		if inpututil.IsMouseButtonJustReleased(button) {
			events = append(events, MouseButtonEvent{Button: button, Pressed: false, X: x, Y: y})
		}
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		events = append(events, WheelEvent{DX: dx, DY: dy})
	}

	return events
}
