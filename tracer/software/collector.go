package software

import (
	"github.com/chewxy/math32"

	"github.com/SpaceCat-Chan/ray-otami/types"
)

// Add a radiance sample into the running per-pixel sum. The sum never
// decays; resetting is the frame driver's job and must happen together
// with the sample counter.
func accumulate(accumBuffer []float32, pixelIndex int, sample types.Vec3) {
	base := pixelIndex * 4
	accumBuffer[base+0] += sample[0]
	accumBuffer[base+1] += sample[1]
	accumBuffer[base+2] += sample[2]
}

// Tone-map the running sum into a display color: divide by the sample
// count and apply exponential exposure mapping, which compresses the
// unbounded average into [0, 1).
func collect(accumBuffer []float32, frameBuffer []uint8, pixelIndex int, sampleCount uint32, exposure float32) {
	base := pixelIndex * 4
	scale := exposure / float32(sampleCount)

	frameBuffer[base+0] = toneMapChannel(accumBuffer[base+0] * scale)
	frameBuffer[base+1] = toneMapChannel(accumBuffer[base+1] * scale)
	frameBuffer[base+2] = toneMapChannel(accumBuffer[base+2] * scale)
	frameBuffer[base+3] = 255
}

func toneMapChannel(v float32) uint8 {
	return uint8(255.0 * (1.0 - math32.Exp(-v)))
}
