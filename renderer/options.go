package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of radiance samples per pixel per frame.
	SamplesPerPixel uint32

	// Exposure for tonemapping.
	Exposure float32

	// Override the scene's max ray depth when non-zero.
	MaxDepthOverride uint32

	// Worker pool size for the software tracer; 0 selects one worker
	// per logical CPU.
	NumWorkers int
}
