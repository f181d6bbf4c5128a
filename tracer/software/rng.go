package software

import (
	"github.com/chewxy/math32"

	"github.com/SpaceCat-Chan/ray-otami/types"
)

// A tiny allocation-free xorshift generator. Every worker owns one,
// seeded from the block request seed and the worker's first row, so
// pixel threads never share sampler state.
type xorshift struct {
	state uint32
}

func newXorshift(seed uint32) xorshift {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return xorshift{state: seed}
}

func (r *xorshift) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Uniform float in [0, 1).
func (r *xorshift) float32() float32 {
	return float32(r.next()>>8) * (1.0 / 16777216.0)
}

// Uniform direction on the unit sphere.
func (r *xorshift) unitVec() types.Vec3 {
	z := 2.0*r.float32() - 1.0
	phi := 2.0 * math32.Pi * r.float32()
	rad := math32.Sqrt(1.0 - z*z)
	return types.Vec3{rad * math32.Cos(phi), rad * math32.Sin(phi), z}
}
