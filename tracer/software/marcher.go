package software

import (
	"github.com/chewxy/math32"

	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
	"github.com/SpaceCat-Chan/ray-otami/types"
)

// Sphere tracing bounds. The marching loop is total: it always
// terminates in a hit or a miss within these limits.
const (
	hitEpsilon    float32 = 1e-3
	normalEpsilon float32 = 5e-4
	farPlane      float32 = 100.0
	maxMarchSteps         = 256
)

// A field sample: the signed distance to the combined surface at a
// point and the material of the nearest contributing primitive.
type fieldSample struct {
	dist float32
	mat  uint32
}

// A ray/surface intersection.
type hit struct {
	dist  float32
	point types.Vec3
	mat   uint32
}

// Evaluate the combined signed-distance field at a point by walking the
// object records in order. Children publish their samples into the slot
// register file for their parents to combine; records flagged as
// rendered take part in the implicit top-level union, which selects the
// nearest (minimum) field so the marching step stays conservative. The
// max combinator itself keeps the documented maximum-of-fields
// semantics of the scene format.
func evalField(sc *compiler.Scene, slots []fieldSample, p types.Vec3) fieldSample {
	best := fieldSample{dist: math32.MaxFloat32}

	for i := range sc.Objects {
		rec := &sc.Objects[i]

		var s fieldSample
		switch rec.Meta[compiler.MetaKind] {
		case compiler.KindSphere:
			center := rec.Args1.Vec3()
			s = fieldSample{
				dist: p.Sub(center).Len() - rec.Args1[3],
				mat:  rec.Meta[compiler.MetaMaterial],
			}

		case compiler.KindBox:
			lower := rec.Args1.Vec3()
			upper := rec.Args2.Vec3()
			center := lower.Add(upper).Mul(0.5)
			half := upper.Sub(lower).Mul(0.5)
			q := p.Sub(center).Abs().Sub(half)
			outside := types.MaxVec3(q, types.Vec3{}).Len()
			inside := math32.Min(q.MaxComponent(), 0)
			s = fieldSample{
				dist: outside + inside,
				mat:  rec.Meta[compiler.MetaMaterial],
			}

		case compiler.KindTorus:
			rel := p.Sub(rec.Args1.Vec3())
			ring := types.XY(types.XY(rel[0], rel[2]).Len()-rec.Args1[3], rel[1])
			s = fieldSample{
				dist: ring.Len() - rec.Args2[0],
				mat:  rec.Meta[compiler.MetaMaterial],
			}

		case compiler.KindInv:
			child := slots[uint32(rec.Args1[0])]
			s = fieldSample{dist: -child.dist, mat: child.mat}

		case compiler.KindMax:
			a := slots[uint32(rec.Args1[0])]
			b := slots[uint32(rec.Args1[1])]
			if a.dist >= b.dist {
				s = a
			} else {
				s = b
			}

		case compiler.KindMin:
			a := slots[uint32(rec.Args1[0])]
			b := slots[uint32(rec.Args1[1])]
			if a.dist <= b.dist {
				s = a
			} else {
				s = b
			}

		case compiler.KindSmooth:
			a := slots[uint32(rec.Args1[0])]
			b := slots[uint32(rec.Args1[1])]
			s = smoothBlend(a, b, rec.Args1[3])

		default:
			// Unknown kinds (e.g. repeat placeholders) contribute
			// nothing; the compiler never emits them.
			continue
		}

		if slot, ok := rec.Slot(); ok {
			slots[slot] = s
		}
		if rec.Rendered() && s.dist < best.dist {
			best = s
		}
	}

	return best
}

// Exponential smooth-minimum of two field samples. A positive blend
// factor gives a smooth union, a negative one a smooth intersection.
// The operator is associative for a fixed factor, so the compiler's
// pairwise fold matches the n-ary blend; reordering children still
// changes the result under rounding, which is why evaluation order is
// fixed at encode time. The material follows whichever field dominates
// the blend.
func smoothBlend(a, b fieldSample, k float32) fieldSample {
	// Rescale around the dominant child so both exponents are <= 0;
	// the naive form underflows float32 for distant fields, turning
	// the blend into +/-Inf.
	m := math32.Min(a.dist, b.dist)
	if k < 0 {
		m = math32.Max(a.dist, b.dist)
	}
	res := m - math32.Log(math32.Exp(-k*(a.dist-m))+math32.Exp(-k*(b.dist-m)))/k

	out := fieldSample{dist: res, mat: a.mat}
	if k > 0 && b.dist < a.dist {
		out.mat = b.mat
	} else if k < 0 && b.dist > a.dist {
		out.mat = b.mat
	}
	return out
}

// Sphere-trace a ray against the scene: step by the field value until
// the surface band is entered (hit) or the ray leaves the far plane or
// exhausts its step budget (miss).
func march(sc *compiler.Scene, slots []fieldSample, origin, dir types.Vec3) (hit, bool) {
	var traveled float32

	for step := 0; step < maxMarchSteps; step++ {
		p := origin.Add(dir.Mul(traveled))
		s := evalField(sc, slots, p)

		if s.dist < hitEpsilon {
			return hit{dist: traveled, point: p, mat: s.mat}, true
		}

		traveled += s.dist
		if traveled > farPlane {
			break
		}
	}

	return hit{}, false
}

// Estimate the surface normal at a point with a tetrahedron
// finite-difference gradient of the field.
func surfaceNormal(sc *compiler.Scene, slots []fieldSample, p types.Vec3) types.Vec3 {
	const e = normalEpsilon
	k1 := types.XYZ(1, -1, -1)
	k2 := types.XYZ(-1, -1, 1)
	k3 := types.XYZ(-1, 1, -1)
	k4 := types.XYZ(1, 1, 1)

	n := k1.Mul(evalField(sc, slots, p.Add(k1.Mul(e))).dist)
	n = n.Add(k2.Mul(evalField(sc, slots, p.Add(k2.Mul(e))).dist))
	n = n.Add(k3.Mul(evalField(sc, slots, p.Add(k3.Mul(e))).dist))
	n = n.Add(k4.Mul(evalField(sc, slots, p.Add(k4.Mul(e))).dist))
	return n.Normalize()
}
