package software

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SpaceCat-Chan/ray-otami/log"
	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
	"github.com/SpaceCat-Chan/ray-otami/tracer"
	"github.com/SpaceCat-Chan/ray-otami/types"
)

// A software SIMT-style tracer. Each enqueued block is split across a
// pool of row workers; within a block every pixel is an independent
// logical thread with its own slot register file and sampler, so no
// mutable state is shared between pixels. The tracer consumes the same
// flat object/material buffers a GPU kernel would.
type softTracer struct {
	logger     log.Logger
	id         string
	numWorkers int

	frameW uint32
	frameH uint32

	// Shared with the frame driver; only rows assigned by a block
	// request are written.
	accumBuffer []float32
	frameBuffer []uint8

	scene atomic.Pointer[compiler.Scene]

	stats tracer.Stats
}

// Create a software tracer with the given worker pool size.
func NewTracer(id string, numWorkers int) tracer.Tracer {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &softTracer{
		logger:     log.New(id),
		id:         id,
		numWorkers: numWorkers,
	}
}

// Get tracer id.
func (tr *softTracer) Id() string {
	return tr.id
}

// Shutdown and cleanup tracer.
func (tr *softTracer) Close() {
}

// Get the tracer's computation speed estimate.
func (tr *softTracer) SpeedEstimate() float32 {
	return float32(tr.numWorkers)
}

// Setup the tracer.
func (tr *softTracer) Setup(frameW, frameH uint32, accumBuffer []float32, frameBuffer []uint8) error {
	if len(accumBuffer) < int(frameW*frameH*4) || len(frameBuffer) < int(frameW*frameH*4) {
		return fmt.Errorf("tracer (%s): accumulation/frame buffer too small for %dx%d frame", tr.id, frameW, frameH)
	}

	tr.frameW = frameW
	tr.frameH = frameH
	tr.accumBuffer = accumBuffer
	tr.frameBuffer = frameBuffer
	return nil
}

// Atomically replace the compiled scene used for subsequent blocks.
func (tr *softTracer) UpdateScene(sc *compiler.Scene) error {
	if sc == nil {
		return fmt.Errorf("tracer (%s): nil scene", tr.id)
	}
	tr.scene.Store(sc)
	return nil
}

// Enqueue block request.
func (tr *softTracer) Enqueue(req tracer.BlockRequest) {
	go tr.process(req)
}

// Retrieve last block statistics.
func (tr *softTracer) Stats() *tracer.Stats {
	return &tr.stats
}

func (tr *softTracer) process(req tracer.BlockRequest) {
	sc := tr.scene.Load()
	if sc == nil {
		req.ErrChan <- fmt.Errorf("tracer (%s): no scene uploaded", tr.id)
		return
	}

	start := time.Now()

	// Split block rows into contiguous chunks, one per worker.
	workers := tr.numWorkers
	if uint32(workers) > req.BlockH {
		workers = int(req.BlockH)
	}
	rowsPerWorker := req.BlockH / uint32(workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		startY := req.BlockY + uint32(w)*rowsPerWorker
		endY := startY + rowsPerWorker
		if w == workers-1 {
			endY = req.BlockY + req.BlockH
		}

		wg.Add(1)
		go func(startY, endY uint32) {
			defer wg.Done()
			tr.traceRows(sc, req, startY, endY)
		}(startY, endY)
	}
	wg.Wait()

	tr.stats.BlockH = req.BlockH
	tr.stats.BlockTime = time.Since(start).Nanoseconds()

	req.DoneChan <- req.BlockH
}

// Trace all pixels in [startY, endY). One logical thread per pixel: the
// slot register file and sampler are local to the worker and reused
// across its pixels.
func (tr *softTracer) traceRows(sc *compiler.Scene, req tracer.BlockRequest, startY, endY uint32) {
	slots := make([]fieldSample, sc.SlotCount)
	rng := newXorshift(req.Seed ^ (startY * 0x85ebca6b))

	invH := 1.0 / float32(tr.frameH)
	origin := types.Vec3{}

	for y := startY; y < endY; y++ {
		for x := uint32(0); x < tr.frameW; x++ {
			pixelIndex := int(y*tr.frameW + x)

			for s := uint32(0); s < req.SamplesPerPixel; s++ {
				// Full-screen rays from the origin through a jittered
				// position on the z=1 pixel grid, aspect corrected.
				u := (2.0*(float32(x)+rng.float32()) - float32(tr.frameW)) * invH
				v := (float32(tr.frameH) - 2.0*(float32(y)+rng.float32())) * invH
				dir := types.XYZ(u, v, 1).Normalize()

				sample := shade(sc, slots, &rng, origin, dir)
				accumulate(tr.accumBuffer, pixelIndex, sample)
			}

			collect(tr.accumBuffer, tr.frameBuffer, pixelIndex, req.SampleCount, req.Exposure)
		}
	}
}
