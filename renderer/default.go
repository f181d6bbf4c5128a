package renderer

import (
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/SpaceCat-Chan/ray-otami/log"
	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
	"github.com/SpaceCat-Chan/ray-otami/tracer"
	"github.com/SpaceCat-Chan/ray-otami/tracer/software"
)

// A compiled scene tagged with a version counter. Scene swaps publish a
// new pair; the frame driver compares versions to decide when the
// accumulation reset barrier must run.
type versionedScene struct {
	scene   *compiler.Scene
	version uint64
}

type defaultRenderer struct {
	logger  log.Logger
	options Options

	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler

	// Per-pixel running radiance sums (4 floats) and the tone-mapped
	// RGBA display output.
	accumBuffer []float32
	frameBuffer []uint8

	// Latest published scene and the version the tracers last saw.
	pending        atomic.Pointer[versionedScene]
	versionCounter atomic.Uint64
	appliedVersion uint64

	// Accumulation passes since the last reset. Reset together with
	// the accumulation buffer, never separately.
	sampleCount uint32

	stats FrameStats
}

// Create a new renderer using the software tracer pool and the
// specified block scheduler.
func NewDefault(sc *compiler.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidDims
	}
	if opts.SamplesPerPixel == 0 {
		opts.SamplesPerPixel = 1
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = runtime.NumCPU()
	}

	r := &defaultRenderer{
		logger:      log.New("renderer"),
		options:     opts,
		scheduler:   scheduler,
		accumBuffer: make([]float32, opts.FrameW*opts.FrameH*4),
		frameBuffer: make([]uint8, opts.FrameW*opts.FrameH*4),
		tracers:     []tracer.Tracer{software.NewTracer("software-0", opts.NumWorkers)},
	}

	for _, tr := range r.tracers {
		if err := tr.Setup(opts.FrameW, opts.FrameH, r.accumBuffer, r.frameBuffer); err != nil {
			return nil, err
		}
	}

	if err := r.SetScene(sc); err != nil {
		return nil, err
	}

	r.logger.Noticef("attached %d tracer(s) for a %dx%d frame", len(r.tracers), opts.FrameW, opts.FrameH)
	return r, nil
}

// Atomically replace the scene used from the next frame on.
func (r *defaultRenderer) SetScene(sc *compiler.Scene) error {
	if sc == nil {
		return ErrSceneNotDefined
	}
	r.pending.Store(&versionedScene{
		scene:   r.applyOverrides(sc),
		version: r.versionCounter.Add(1),
	})
	return nil
}

func (r *defaultRenderer) applyOverrides(sc *compiler.Scene) *compiler.Scene {
	if r.options.MaxDepthOverride == 0 {
		return sc
	}
	clone := *sc
	clone.MaxRayDepth = r.options.MaxDepthOverride
	return &clone
}

// Get the RGBA frame buffer backing the display output.
func (r *defaultRenderer) FrameBuffer() []uint8 {
	return r.frameBuffer
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
}

// Render one accumulation pass. Frames are serialized: a pass only
// starts after the previous one fully completed, which is what makes
// the per-pixel read-modify-write of the accumulation buffer safe.
func (r *defaultRenderer) Render() error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	pending := r.pending.Load()
	if pending == nil {
		return ErrSceneNotDefined
	}

	// Scene changed: push the new buffers to every tracer and reset
	// the accumulation state as a barrier before any block is issued.
	if pending.version != r.appliedVersion {
		for _, tr := range r.tracers {
			if err := tr.UpdateScene(pending.scene); err != nil {
				return err
			}
		}
		clear(r.accumBuffer)
		r.sampleCount = 0
		r.appliedVersion = pending.version
		r.logger.Infof("scene v%d applied; accumulation reset", pending.version)
	}

	start := time.Now()
	r.sampleCount += r.options.SamplesPerPixel

	blockAssignment := r.scheduler.Schedule(r.tracers, r.options.FrameH)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	var blockY uint32
	for idx, tr := range r.tracers {
		tr.Enqueue(tracer.BlockRequest{
			BlockY:          blockY,
			BlockH:          blockAssignment[idx],
			SamplesPerPixel: r.options.SamplesPerPixel,
			Exposure:        r.options.Exposure,
			Seed:            rand.Uint32(),
			SampleCount:     r.sampleCount,
			DoneChan:        doneChan,
			ErrChan:         errChan,
		})
		blockY += blockAssignment[idx]
	}

	var doneRows uint32
	for doneRows < r.options.FrameH {
		select {
		case rows := <-doneChan:
			doneRows += rows
		case err := <-errChan:
			return err
		}
	}

	r.collectStats(blockAssignment, time.Since(start))
	return nil
}

func (r *defaultRenderer) collectStats(blockAssignment []uint32, frameTime time.Duration) {
	r.stats = FrameStats{
		Tracers:     make([]TracerStat, len(r.tracers)),
		RenderTime:  frameTime,
		SampleCount: r.sampleCount,
	}
	for idx, tr := range r.tracers {
		stats := tr.Stats()
		r.stats.Tracers[idx] = TracerStat{
			Id:           tr.Id(),
			BlockH:       blockAssignment[idx],
			FramePercent: 100.0 * float32(blockAssignment[idx]) / float32(r.options.FrameH),
			RenderTime:   time.Duration(stats.BlockTime),
		}
	}
}
