package components

import "github.com/plus3/kestrel/ecs"

// ShaderConfig names a shader and the uniforms to bind when drawing.
type ShaderConfig struct {
	Name     string
	Uniforms map[string]any
}

// TextureConfig describes the texture a drawable samples from.
type TextureConfig struct {
	Path   string
	Width  int
	Height int
	Linear bool
}

// Disposer is implemented by drawables holding backend resources.
type Disposer interface {
	Dispose()
}

// GraphicDisplayer hands an opaque drawable to the renderer. The core never
// looks inside Drawable; the rendering backend decides what it can draw.
type GraphicDisplayer struct {
	ecs.Unique
	Drawable any
	Shader   *ShaderConfig
	Texture  *TextureConfig
	Layer    int
	Hidden   bool
}

// NewGraphicDisplayer wraps a drawable.
func NewGraphicDisplayer(drawable any) GraphicDisplayer {
	return GraphicDisplayer{Drawable: drawable}
}

// OnUnregister releases the drawable when the displayer leaves its store.
func (g *GraphicDisplayer) OnUnregister(ecs.EntityId) {
	if d, ok := g.Drawable.(Disposer); ok {
		d.Dispose()
	}
}
