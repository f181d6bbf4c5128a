package software

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/SpaceCat-Chan/ray-otami/scene"
	"github.com/SpaceCat-Chan/ray-otami/types"
)

func TestShadeMissReturnsSky(t *testing.T) {
	sc, slots := compileWorld(t, &scene.World{
		MaxRayDepth: 4,
		SkyColor:    types.XYZ(0.2, 0.4, 0.6),
		Materials:   map[string]scene.Material{},
	})

	rng := newXorshift(1)
	out := shade(sc, slots, &rng, types.Vec3{}, types.XYZ(0, 0, 1))
	if out.Sub(sc.SkyColor).Len() > 1e-6 {
		t.Fatalf("expected an escaping ray to return the sky color %v; got %v", sc.SkyColor, out)
	}
}

// A black-albedo emitter kills the path throughput at the first bounce,
// so the sample is exactly the emittance.
func TestShadeEmissiveHit(t *testing.T) {
	sc, slots := compileWorld(t, &scene.World{
		MaxRayDepth: 4,
		SkyColor:    types.XYZ(0.2, 0.4, 0.6),
		Objects:     []scene.Node{sphereNode(types.XYZ(0, 0, 2), 0.5, "lamp")},
		Materials: map[string]scene.Material{
			"lamp": {Emittance: types.XYZ(5, 5, 5)},
		},
	})

	rng := newXorshift(1)
	out := shade(sc, slots, &rng, types.Vec3{}, types.XYZ(0, 0, 1))
	if out.Sub(types.XYZ(5, 5, 5)).Len() > 1e-5 {
		t.Fatalf("expected the emittance (5, 5, 5); got %v", out)
	}
}

// A ray trapped inside a white emissive mirror shell bounces until the
// depth bound and collects one emittance contribution per bounce.
func TestShadeDepthBound(t *testing.T) {
	sc, slots := compileWorld(t, &scene.World{
		MaxRayDepth: 2,
		Objects: []scene.Node{
			{Inv: &scene.Inv{Child: sphereNode(types.Vec3{}, 10, "shell")}},
		},
		Materials: map[string]scene.Material{
			"shell": {
				Color:     types.XYZ(1, 1, 1),
				Emittance: types.XYZ(1, 1, 1),
				Metalness: 1,
			},
		},
	})

	rng := newXorshift(1)
	out := shade(sc, slots, &rng, types.Vec3{}, types.XYZ(0, 0, 1))

	// Three bounces (depths 0..2), then termination with a black sky.
	exp := float32(3)
	for c := 0; c < 3; c++ {
		if math32.Abs(out[c]-exp) > 1e-3 {
			t.Fatalf("expected %f bounce contributions per channel; got %v", exp, out)
		}
	}
}
