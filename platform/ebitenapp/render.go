package ebitenapp

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/kestrel/components"
	"github.com/plus3/kestrel/ecs"
	"github.com/rotisserie/eris"
)

// Drawable is implemented by GraphicDisplayer payloads that draw themselves.
type Drawable interface {
	Draw(dst *ebiten.Image, geo ebiten.GeoM)
}

// Sprite draws an image around an origin point.
type Sprite struct {
	Image  *ebiten.Image
	Origin components.Vec2
	Tint   color.Color
}

// NewSprite centres the origin on the image.
func NewSprite(img *ebiten.Image) *Sprite {
	bounds := img.Bounds()
	return &Sprite{
		Image:  img,
		Origin: components.Vec2{X: float64(bounds.Dx()) / 2, Y: float64(bounds.Dy()) / 2},
	}
}

func (s *Sprite) Draw(dst *ebiten.Image, geo ebiten.GeoM) {
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(-s.Origin.X, -s.Origin.Y)
	opts.GeoM.Concat(geo)
	if s.Tint != nil {
		opts.ColorScale.ScaleWithColor(s.Tint)
	}
	dst.DrawImage(s.Image, opts)
}

// Dispose releases the image once its displayer leaves the store.
func (s *Sprite) Dispose() {
	s.Image.Deallocate()
}

// drawItem is one entry of a frame's draw list.
type drawItem struct {
	entity    ecs.EntityId
	layer     int
	geo       ebiten.GeoM
	displayer components.GraphicDisplayer
}

// RenderSystem draws every visible GraphicDisplayer at its Transform, lowest
// layer first. Displayers without a Transform are drawn at the origin.
type RenderSystem struct {
	Background color.Color
	Shaders    map[string]*ebiten.Shader

	textures map[string]*ebiten.Image
}

func (r *RenderSystem) NewQuery() *ecs.PairQuery[components.GraphicDisplayer, components.Transform] {
	return ecs.NewPairQuery[components.GraphicDisplayer, components.Transform]()
}

func (r *RenderSystem) Run(frame *ecs.UpdateFrame, q *ecs.PairQuery[components.GraphicDisplayer, components.Transform]) {
	target, err := frame.State.AcquireTarget()
	if err != nil {
		frame.Logger.Warn().Err(err).Msg("skipping render")
		return
	}
	screen, ok := target.(*ebiten.Image)
	if !ok {
		frame.Logger.Warn().Str("target", fmt.Sprintf("%T", target)).Msg("unsupported render target")
		return
	}

	if r.Background != nil {
		screen.Fill(r.Background)
	}

	for _, item := range buildDrawList(frame.Entities, q) {
		if err := r.draw(screen, item); err != nil {
			frame.Logger.Debug().Err(err).Uint64("entity", uint64(item.entity)).Msg("draw failed")
		}
	}
}

func buildDrawList(entities *ecs.Entities, q *ecs.PairQuery[components.GraphicDisplayer, components.Transform]) []drawItem {
	items := make([]drawItem, 0, q.Len())
	for id, row := range q.Iter() {
		displayer := row.First.Value()
		if displayer.Hidden {
			continue
		}

		var geo ebiten.GeoM
		if row.Second != nil {
			geo = row.Second.Value().World(entities)
		}

		items = append(items, drawItem{
			entity:    id,
			layer:     displayer.Layer,
			geo:       geo,
			displayer: displayer,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].layer < items[j].layer
	})
	return items
}

func (r *RenderSystem) draw(screen *ebiten.Image, item drawItem) error {
	d := item.displayer

	drawable := d.Drawable
	if drawable == nil && d.Texture != nil {
		img, err := r.texture(d.Texture)
		if err != nil {
			return err
		}
		drawable = img
	}

	switch v := drawable.(type) {
	case Drawable:
		v.Draw(screen, item.geo)
		return nil
	case *ebiten.Image:
		return r.drawImage(screen, v, item.geo, d)
	case nil:
		return eris.New("nothing to draw")
	default:
		return eris.Errorf("unsupported drawable %T", drawable)
	}
}

func (r *RenderSystem) drawImage(screen, img *ebiten.Image, geo ebiten.GeoM, d components.GraphicDisplayer) error {
	if d.Shader != nil {
		shader, ok := r.Shaders[d.Shader.Name]
		if !ok {
			return eris.Errorf("unknown shader %q", d.Shader.Name)
		}
		bounds := img.Bounds()
		opts := &ebiten.DrawRectShaderOptions{
			GeoM:     geo,
			Uniforms: d.Shader.Uniforms,
		}
		opts.Images[0] = img
		screen.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, opts)
		return nil
	}

	opts := &ebiten.DrawImageOptions{GeoM: geo}
	if d.Texture != nil && d.Texture.Linear {
		opts.Filter = ebiten.FilterLinear
	}
	screen.DrawImage(img, opts)
	return nil
}

// texture loads and caches the image named by cfg.
func (r *RenderSystem) texture(cfg *components.TextureConfig) (*ebiten.Image, error) {
	if img, ok := r.textures[cfg.Path]; ok {
		return img, nil
	}

	img, _, err := ebitenutil.NewImageFromFile(cfg.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "load texture %s", cfg.Path)
	}

	if r.textures == nil {
		r.textures = make(map[string]*ebiten.Image)
	}
	r.textures[cfg.Path] = img
	return img, nil
}

const (
	diagPanelWidth  = 120
	diagPanelHeight = 56
)

var diagPanelColor = color.RGBA{A: 0xa0}

// DiagOverlaySystem prints the first Diag component in the top-left corner.
type DiagOverlaySystem struct{}

func (s *DiagOverlaySystem) NewQuery() *ecs.UnitQuery[components.Diag] {
	return ecs.NewUnitQuery[components.Diag]()
}

func (s *DiagOverlaySystem) Run(frame *ecs.UpdateFrame, q *ecs.UnitQuery[components.Diag]) {
	diag, ok := q.Get()
	if !ok {
		return
	}
	target, err := frame.State.AcquireTarget()
	if err != nil {
		return
	}
	screen, ok := target.(*ebiten.Image)
	if !ok {
		return
	}

	d := diag.Value()
	vector.DrawFilledRect(screen, 0, 0, diagPanelWidth, diagPanelHeight, diagPanelColor, false)
	ebitenutil.DebugPrintAt(screen, formatDiag(d), 4, 4)
}

func formatDiag(d components.Diag) string {
	return fmt.Sprintf("FPS: %.1f\nFrames: %d\nEntities: %d", d.FPS, d.Frames, d.Entities)
}
