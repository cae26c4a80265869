// Package components holds the concrete components shipped with the engine
// and the systems that maintain them: frame diagnostics, hierarchical
// transforms and the graphic displayer handed to the renderer.
package components
