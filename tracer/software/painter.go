package software

import (
	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
	"github.com/SpaceCat-Chan/ray-otami/types"
)

// Offset applied along the surface normal before tracing a bounce ray,
// so the new ray starts outside the hit epsilon band.
const surfaceOffset = 2 * hitEpsilon

// Trace one radiance sample along a camera ray. The recursive bounce
// chain is expressed as a bounded loop carrying a radiance/throughput
// pair: each bounce adds the surface emittance through the current
// throughput, attenuates the throughput by the albedo and picks the
// next direction from the material's diffuse or specular lobe. A miss
// terminates with the sky color, as does running out of depth.
func shade(sc *compiler.Scene, slots []fieldSample, rng *xorshift, origin, dir types.Vec3) types.Vec3 {
	var radiance types.Vec3
	throughput := types.XYZ(1, 1, 1)

	for depth := uint32(0); depth <= sc.MaxRayDepth; depth++ {
		h, ok := march(sc, slots, origin, dir)
		if !ok {
			return radiance.Add(throughput.MulVec(sc.SkyColor))
		}

		mat := &sc.Materials[h.mat]
		normal := surfaceNormal(sc, slots, h.point)

		radiance = radiance.Add(throughput.MulVec(mat.Emittance.Vec3()))
		throughput = throughput.MulVec(mat.Color.Vec3())

		metalness := mat.MetalRough[0]
		roughness := mat.MetalRough[1]

		var bounce types.Vec3
		if rng.float32() < metalness {
			// Specular: mirror reflection perturbed by the roughness
			// scatter cone.
			reflected := dir.Sub(normal.Mul(2 * dir.Dot(normal)))
			bounce = reflected.Add(rng.unitVec().Mul(roughness)).Normalize()
			// A perturbation below the horizon would re-enter the
			// surface; fall back to the pure reflection.
			if bounce.Dot(normal) <= 0 {
				bounce = reflected
			}
		} else {
			// Diffuse: cosine-weighted lobe around the normal.
			bounce = normal.Add(rng.unitVec()).Normalize()
			if bounce.Dot(normal) <= 0 {
				bounce = normal
			}
		}

		origin = h.point.Add(normal.Mul(surfaceOffset))
		dir = bounce
	}

	// Depth exhausted: terminate with the sky, matching the miss
	// policy so truncated paths stay consistent with escaped ones.
	return radiance.Add(throughput.MulVec(sc.SkyColor))
}
