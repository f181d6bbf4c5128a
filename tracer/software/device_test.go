package software

import (
	"testing"
	"time"

	"github.com/SpaceCat-Chan/ray-otami/scene"
	"github.com/SpaceCat-Chan/ray-otami/tracer"
	"github.com/SpaceCat-Chan/ray-otami/types"
)

func TestTracerSetupValidation(t *testing.T) {
	tr := NewTracer("test-tracer", 1)

	if err := tr.Setup(4, 4, make([]float32, 8), make([]uint8, 8)); err == nil {
		t.Fatal("expected an error for undersized buffers")
	}
	if err := tr.Setup(4, 4, make([]float32, 4*4*4), make([]uint8, 4*4*4)); err != nil {
		t.Fatal(err)
	}

	if err := tr.UpdateScene(nil); err == nil {
		t.Fatal("expected an error for a nil scene")
	}
}

func TestTracerProcessBlock(t *testing.T) {
	sc, _ := compileWorld(t, &scene.World{
		MaxRayDepth: 2,
		SkyColor:    types.XYZ(1, 1, 1),
		Materials:   map[string]scene.Material{},
	})

	accumBuffer := make([]float32, 4*4*4)
	frameBuffer := make([]uint8, 4*4*4)

	tr := NewTracer("test-tracer", 2)
	if err := tr.Setup(4, 4, accumBuffer, frameBuffer); err != nil {
		t.Fatal(err)
	}
	if err := tr.UpdateScene(sc); err != nil {
		t.Fatal(err)
	}

	doneChan := make(chan uint32, 1)
	errChan := make(chan error, 1)
	tr.Enqueue(tracer.BlockRequest{
		BlockY:          0,
		BlockH:          4,
		SamplesPerPixel: 1,
		Exposure:        1,
		Seed:            42,
		SampleCount:     1,
		DoneChan:        doneChan,
		ErrChan:         errChan,
	})

	select {
	case rows := <-doneChan:
		if rows != 4 {
			t.Fatalf("expected 4 completed rows; got %d", rows)
		}
	case err := <-errChan:
		t.Fatal(err)
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for block completion")
	}

	// Every ray escapes to the white sky.
	exp := toneMapChannel(1)
	for pixel := 0; pixel < 4*4; pixel++ {
		base := pixel * 4
		if frameBuffer[base] != exp || frameBuffer[base+3] != 255 {
			t.Fatalf("[pixel %d] expected display value (%d, _, _, 255); got %v",
				pixel, exp, frameBuffer[base:base+4])
		}
	}

	if stats := tr.Stats(); stats.BlockH != 4 {
		t.Fatalf("expected block stats for 4 rows; got %d", stats.BlockH)
	}
}

func TestTracerRequiresScene(t *testing.T) {
	tr := NewTracer("test-tracer", 1)
	if err := tr.Setup(2, 2, make([]float32, 2*2*4), make([]uint8, 2*2*4)); err != nil {
		t.Fatal(err)
	}

	doneChan := make(chan uint32, 1)
	errChan := make(chan error, 1)
	tr.Enqueue(tracer.BlockRequest{BlockH: 2, DoneChan: doneChan, ErrChan: errChan})

	select {
	case <-doneChan:
		t.Fatal("expected the block to fail without an uploaded scene")
	case <-errChan:
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for block failure")
	}
}
