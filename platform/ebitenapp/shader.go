package ebitenapp

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rotisserie/eris"
)

// TintShader multiplies the source image by the Tint uniform.
const TintShader = `//kage:unit pixels

package main

var Tint vec4

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	return imageSrc0At(srcPos) * Tint
}
`

// CompileShaders compiles Kage sources keyed by the name GraphicDisplayer
// shader configs refer to.
func CompileShaders(sources map[string]string) (map[string]*ebiten.Shader, error) {
	shaders := make(map[string]*ebiten.Shader, len(sources))
	for name, src := range sources {
		shader, err := ebiten.NewShader([]byte(src))
		if err != nil {
			return nil, eris.Wrapf(err, "compile shader %s", name)
		}
		shaders[name] = shader
	}
	return shaders, nil
}
