package renderer

import "github.com/SpaceCat-Chan/ray-otami/scene/compiler"

type Renderer interface {
	// Render one accumulation pass into the frame buffer.
	Render() error

	// Atomically replace the scene. The accumulation buffer and sample
	// counter are reset together before the next frame starts.
	SetScene(sc *compiler.Scene) error

	// Get the RGBA frame buffer backing the display output.
	FrameBuffer() []uint8

	// Get render statistics.
	Stats() FrameStats

	// Shutdown renderer and any attached tracer.
	Close()
}
