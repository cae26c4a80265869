// Package ebitenapp runs an ECS scheduler inside an Ebiten game loop. Ebiten's
// Update drives input dispatch and the update phase, Draw drives the render
// phase with the screen image as render target.
package ebitenapp

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/kestrel/config"
	"github.com/plus3/kestrel/ecs"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ErrNoScreen is returned when a render target is requested outside Draw.
var ErrNoScreen = eris.New("ebitenapp: no screen outside of Draw")

// Overlay is drawn over the scene, e.g. the debug UI. Begin and End bracket
// the update phase.
type Overlay interface {
	Begin()
	End()
	Render(screen *ebiten.Image)
	Resize(width, height int)
}

// ScreenGraphics exposes the screen image handed to Draw as render target.
type ScreenGraphics struct {
	screen *ebiten.Image
}

func (g *ScreenGraphics) AcquireTarget() (ecs.RenderTarget, error) {
	if g.screen == nil {
		return nil, ErrNoScreen
	}
	return g.screen, nil
}

// Game implements ebiten.Game on top of a scheduler.
type Game struct {
	loop       *ecs.FrameLoop
	graphics   *ScreenGraphics
	overlay    Overlay
	input      InputSource
	logger     zerolog.Logger
	now        func() time.Time
	lastUpdate time.Time
	lastDraw   time.Time
	events     []ecs.InputEvent
	quit       bool
	width      int
	height     int
}

// Option configures a Game.
type Option func(*Game)

// WithOverlay draws o over every frame.
func WithOverlay(o Overlay) Option {
	return func(g *Game) {
		g.overlay = o
	}
}

// WithInputSource replaces ebiten input polling.
func WithInputSource(src InputSource) Option {
	return func(g *Game) {
		g.input = src
	}
}

// WithLogger sets the logger used by the game loop.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithClock replaces time.Now when computing frame deltas.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		g.now = now
	}
}

// NewGame binds the scheduler to a new application state whose window is the
// game itself and whose graphics adapter is the ebiten screen.
func NewGame(scheduler *ecs.Scheduler, opts ...Option) *Game {
	g := &Game{
		graphics: &ScreenGraphics{},
		input:    &ebitenInput{},
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.loop = scheduler.Bind(ecs.NewAppState(g, g.graphics))
	return g
}

// State returns the application state handed to systems.
func (g *Game) State() *ecs.AppState {
	return g.loop.State()
}

// RequestQuit makes the next Update end the game loop.
func (g *Game) RequestQuit() {
	g.quit = true
}

// Size returns the last layout size.
func (g *Game) Size() (int, int) {
	return g.width, g.height
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	dt := g.since(&g.lastUpdate)

	if g.overlay != nil {
		g.overlay.Begin()
	}

	g.events = g.input.Poll(g.events[:0])
	if !g.overlayWantsInput() {
		for _, event := range g.events {
			g.loop.DeviceEvent(event)
		}
	}

	g.loop.MainEventsCleared(dt)

	if g.overlay != nil {
		g.overlay.End()
	}

	if g.quit {
		g.logger.Info().Msg("quit requested")
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	dt := g.since(&g.lastDraw)

	g.graphics.screen = screen
	g.loop.RedrawRequested(dt)
	g.graphics.screen = nil

	if g.overlay != nil {
		g.overlay.Render(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.logger.Debug().Int("width", outsideWidth).Int("height", outsideHeight).Msg("layout changed")
	}
	g.width, g.height = outsideWidth, outsideHeight

	if g.overlay != nil {
		g.overlay.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// since returns the time elapsed since *last and moves *last to now. The
// first call returns zero.
func (g *Game) since(last *time.Time) time.Duration {
	now := g.now()
	if last.IsZero() {
		*last = now
		return 0
	}
	dt := now.Sub(*last)
	*last = now
	return dt
}

func (g *Game) overlayWantsInput() bool {
	capture, ok := g.overlay.(interface{ WantsInput() bool })
	return ok && capture.WantsInput()
}

// Run configures the window from cfg and runs the scheduler until the window
// is closed or a system calls RequestQuit on the state's window.
func Run(cfg *config.Config, scheduler *ecs.Scheduler, opts ...Option) error {
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetTPS(cfg.TPS)

	game := NewGame(scheduler, opts...)
	game.logger.Info().
		Str("title", cfg.Window.Title).
		Int("width", cfg.Window.Width).
		Int("height", cfg.Window.Height).
		Int("tps", cfg.TPS).
		Msg("starting game loop")

	if err := ebiten.RunGame(game); err != nil {
		return eris.Wrap(err, "run game")
	}
	return nil
}
