package main

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/kestrel/components"
	"github.com/plus3/kestrel/config"
	"github.com/plus3/kestrel/ecs"
	"github.com/plus3/kestrel/platform/ebitenapp"
)

const tintShaderName = "tint"

var palette = []color.RGBA{
	{R: 0xe0, G: 0x6c, B: 0x75, A: 0xff},
	{R: 0x98, G: 0xc3, B: 0x79, A: 0xff},
	{R: 0x61, G: 0xaf, B: 0xef, A: 0xff},
	{R: 0xe5, G: 0xc0, B: 0x7b, A: 0xff},
}

// spawnScene lays out cfg.Demo.Sprites spinning squares around a central
// pivot. Each square is a child of the pivot, so spinning the pivot carries
// the whole ring.
func spawnScene(entities *ecs.Entities, cfg *config.Config) {
	rng := rand.New(rand.NewSource(cfg.Demo.Seed))
	cx, cy := float64(cfg.Window.Width)/2, float64(cfg.Window.Height)/2

	pivot := entities.Spawn(components.NewTransform(cx, cy), components.Spin{Speed: 0.2})
	entities.Spawn(components.Diag{})

	// Sprite.Dispose deallocates its image, so only shader-drawn squares share one.
	square := newSquare()

	radius := math.Min(cx, cy) * 0.8
	for i := range cfg.Demo.Sprites {
		angle := 2 * math.Pi * float64(i) / float64(max(cfg.Demo.Sprites, 1))
		tint := palette[i%len(palette)]

		transform := components.NewTransform(math.Cos(angle)*radius, math.Sin(angle)*radius)
		transform.Parent = pivot
		scale := 0.5 + rng.Float64()
		transform.Scale = components.Vec2{X: scale, Y: scale}

		displayer := components.GraphicDisplayer{Layer: i % 3}
		if i%2 == 0 {
			sprite := ebitenapp.NewSprite(newSquare())
			sprite.Tint = tint
			displayer.Drawable = sprite
		} else {
			displayer.Drawable = square
			displayer.Shader = &components.ShaderConfig{
				Name: tintShaderName,
				Uniforms: map[string]any{
					"Tint": []float32{float32(tint.R) / 0xff, float32(tint.G) / 0xff, float32(tint.B) / 0xff, 1},
				},
			}
		}

		entities.Spawn(transform, displayer, components.Spin{Speed: rng.Float64()*4 - 2})
	}
}

func newSquare() *ebiten.Image {
	img := ebiten.NewImage(16, 16)
	img.Fill(color.White)
	return img
}

// QuitSystem ends the game loop when Escape is pressed.
type QuitSystem struct{}

func (QuitSystem) NewQuery() *ecs.UnitQuery[components.Diag] {
	return ecs.NewUnitQuery[components.Diag]()
}

func (QuitSystem) Run(*ecs.UpdateFrame, *ecs.UnitQuery[components.Diag]) {}

func (QuitSystem) Input(frame *ecs.UpdateFrame, event ecs.InputEvent, _ *ecs.UnitQuery[components.Diag]) {
	key, ok := event.(ebitenapp.KeyEvent)
	if !ok || !key.Pressed || key.Key != ebiten.KeyEscape {
		return
	}
	if quitter, ok := frame.State.Window.(interface{ RequestQuit() }); ok {
		frame.Logger.Info().Msg("escape pressed")
		quitter.RequestQuit()
	}
}
