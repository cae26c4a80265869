// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// It satisfies the overlay hook of the ebitenapp game loop, so the debug UI
// frame brackets the update phase and is drawn over the rendered scene.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend and its window. The ImGui ini file is
// disabled so debug window layout is not persisted.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: backend}
}

func (b *ImguiBackend) Begin() {
	b.BeginFrame()
}

func (b *ImguiBackend) End() {
	b.EndFrame()
}

func (b *ImguiBackend) Render(screen *ebiten.Image) {
	b.Draw(screen)
}

func (b *ImguiBackend) Resize(width, height int) {
	b.Layout(width, height)
}

// WantsInput reports whether ImGui is consuming mouse or keyboard input this
// frame, in which case game input should be ignored.
func (b *ImguiBackend) WantsInput() bool {
	io := imgui.CurrentIO()
	return io.WantCaptureMouse() || io.WantCaptureKeyboard()
}
