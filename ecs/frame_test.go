package ecs_test

import (
	"errors"
	"testing"
	"time"

	"github.com/plus3/kestrel/ecs"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraphics struct {
	target ecs.RenderTarget
	err    error
}

func (g *fakeGraphics) AcquireTarget() (ecs.RenderTarget, error) {
	return g.target, g.err
}

func TestAcquireTarget(t *testing.T) {
	t.Run("headless", func(t *testing.T) {
		state := ecs.NewAppState(nil, nil)
		_, err := state.AcquireTarget()
		assert.True(t, eris.Is(err, ecs.ErrNoGraphics))
	})

	t.Run("target", func(t *testing.T) {
		state := ecs.NewAppState("window", &fakeGraphics{target: "screen"})
		target, err := state.AcquireTarget()
		require.NoError(t, err)
		assert.Equal(t, "screen", target)
		assert.Equal(t, "window", state.Window)
	})

	t.Run("backend error", func(t *testing.T) {
		cause := errors.New("surface lost")
		state := ecs.NewAppState(nil, &fakeGraphics{err: cause})
		_, err := state.AcquireTarget()
		assert.ErrorIs(t, err, cause)
	})

	t.Run("graphics already borrowed", func(t *testing.T) {
		state := ecs.NewAppState(nil, &fakeGraphics{target: "screen"})
		held := state.Graphics.Borrow()
		defer held.Release()

		_, err := state.AcquireTarget()
		var borrowErr *ecs.BorrowError
		assert.ErrorAs(t, err, &borrowErr)
	})
}

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	clock := ecs.NewClockAt(func() time.Time { return now })

	now = now.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, clock.Elapsed())
	assert.Zero(t, clock.Frames())
}

func TestUpdateFrameDelta(t *testing.T) {
	frame := &ecs.UpdateFrame{DeltaTime: 0.5}
	assert.Equal(t, 500*time.Millisecond, frame.Delta())
	assert.Equal(t, "render", ecs.PhaseRender.String())
	assert.Equal(t, "input", ecs.PhaseInput.String())
}
