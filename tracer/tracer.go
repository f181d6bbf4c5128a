package tracer

import "github.com/SpaceCat-Chan/ray-otami/scene/compiler"

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The number of radiance samples emitted per traced pixel.
	SamplesPerPixel uint32

	// The exposure value controls HDR -> LDR mapping.
	Exposure float32

	// A random seed value for the tracer's random number generator.
	Seed uint32

	// Total number of accumulated samples per pixel once this request
	// completes. The collector divides the accumulation buffer by this.
	SampleCount uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block (in nanoseconds)
	BlockTime int64
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracer's computation speed estimate compared to a
	// baseline single-worker implementation.
	SpeedEstimate() float32

	// Setup the tracer. The accumulation and frame buffers are shared
	// with the frame driver; a tracer only touches the rows assigned
	// to it by a block request.
	Setup(frameW, frameH uint32, accumBuffer []float32, frameBuffer []uint8) error

	// Atomically replace the compiled scene used for subsequent blocks.
	UpdateScene(sc *compiler.Scene) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Retrieve last block statistics.
	Stats() *Stats
}
