package software

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/SpaceCat-Chan/ray-otami/scene"
	"github.com/SpaceCat-Chan/ray-otami/scene/compiler"
	"github.com/SpaceCat-Chan/ray-otami/types"
)

func compileWorld(t *testing.T, world *scene.World) (*compiler.Scene, []fieldSample) {
	t.Helper()
	sc, err := compiler.Compile(world)
	if err != nil {
		t.Fatal(err)
	}
	return sc, make([]fieldSample, sc.SlotCount)
}

func sphereNode(center types.Vec3, radius float32, material string) scene.Node {
	return scene.Node{Sphere: &scene.Sphere{Center: center, Radius: radius, Material: material}}
}

func TestSphereField(t *testing.T) {
	sc, slots := compileWorld(t, &scene.World{
		Objects:   []scene.Node{sphereNode(types.XYZ(0, 0, 2), 0.5, "m")},
		Materials: map[string]scene.Material{"m": {}},
	})

	specs := []struct {
		point   types.Vec3
		expDist float32
	}{
		{types.XYZ(0, 0, 0), 1.5},
		{types.XYZ(0, 0, 2), -0.5},
		{types.XYZ(0, 0.5, 2), 0},
	}
	for index, spec := range specs {
		s := evalField(sc, slots, spec.point)
		if math32.Abs(s.dist-spec.expDist) > 1e-6 {
			t.Errorf("[spec %d] expected field value %f; got %f", index, spec.expDist, s.dist)
		}
	}
}

func TestBoxField(t *testing.T) {
	sc, slots := compileWorld(t, &scene.World{
		Objects: []scene.Node{
			{Box: &scene.Box{
				LowerCorner: types.XYZ(-1, -1, -1),
				UpperCorner: types.XYZ(1, 1, 1),
				Material:    "m",
			}},
		},
		Materials: map[string]scene.Material{"m": {}},
	})

	specs := []struct {
		point   types.Vec3
		expDist float32
	}{
		{types.XYZ(3, 0, 0), 2},
		{types.XYZ(0, 0, 0), -1},
		{types.XYZ(2, 2, 0), math32.Sqrt(2)},
	}
	for index, spec := range specs {
		s := evalField(sc, slots, spec.point)
		if math32.Abs(s.dist-spec.expDist) > 1e-6 {
			t.Errorf("[spec %d] expected field value %f; got %f", index, spec.expDist, s.dist)
		}
	}
}

// Carving a solid: max of a sphere and its inverted smaller twin leaves
// a hollow shell. Inside the cavity the combined field is positive,
// inside the shell wall it stays negative.
func TestMaxInvCarving(t *testing.T) {
	center := types.XYZ(0, 0, 2)
	sc, slots := compileWorld(t, &scene.World{
		Objects: []scene.Node{
			{Max: &scene.Combine{Children: []scene.Node{
				sphereNode(center, 1.0, "m"),
				{Inv: &scene.Inv{Child: sphereNode(center, 0.5, "m")}},
			}}},
		},
		Materials: map[string]scene.Material{"m": {}},
	})

	// Cavity center: max(-1.0, +0.5) = 0.5.
	if s := evalField(sc, slots, center); math32.Abs(s.dist-0.5) > 1e-6 {
		t.Fatalf("expected the cavity center to be outside at distance 0.5; got %f", s.dist)
	}

	// Mid-shell: max(-0.25, -0.25) = -0.25.
	if s := evalField(sc, slots, center.Add(types.XYZ(0.75, 0, 0))); math32.Abs(s.dist+0.25) > 1e-6 {
		t.Fatalf("expected the shell interior to be inside at distance -0.25; got %f", s.dist)
	}
}

func TestInvInvolution(t *testing.T) {
	plain, plainSlots := compileWorld(t, &scene.World{
		Objects:   []scene.Node{sphereNode(types.XYZ(0, 0, 2), 0.5, "m")},
		Materials: map[string]scene.Material{"m": {}},
	})
	doubleInv, invSlots := compileWorld(t, &scene.World{
		Objects: []scene.Node{
			{Inv: &scene.Inv{Child: scene.Node{
				Inv: &scene.Inv{Child: sphereNode(types.XYZ(0, 0, 2), 0.5, "m")},
			}}},
		},
		Materials: map[string]scene.Material{"m": {}},
	})

	points := []types.Vec3{
		types.XYZ(0, 0, 0),
		types.XYZ(0, 0, 2),
		types.XYZ(0.3, -0.1, 1.7),
	}
	for _, p := range points {
		exp := evalField(plain, plainSlots, p)
		got := evalField(doubleInv, invSlots, p)
		if got.dist != exp.dist || got.mat != exp.mat {
			t.Errorf("expected double inversion to be the identity at %v: %f vs %f", p, exp.dist, got.dist)
		}
	}
}

func TestSmoothBlend(t *testing.T) {
	a := fieldSample{dist: 0.4, mat: 0}
	b := fieldSample{dist: 0.5, mat: 1}

	// A smooth union lies below the plain minimum and follows the
	// dominant (nearer) field's material.
	union := smoothBlend(a, b, 8.0)
	if union.dist >= a.dist {
		t.Fatalf("expected smooth union %f to fall below min %f", union.dist, a.dist)
	}
	if union.mat != a.mat {
		t.Fatalf("expected the union to take the nearer material; got %d", union.mat)
	}

	// A negative factor blends toward the maximum instead.
	inter := smoothBlend(a, b, -8.0)
	if inter.dist <= b.dist {
		t.Fatalf("expected smooth intersection %f to rise above max %f", inter.dist, b.dist)
	}
	if inter.mat != b.mat {
		t.Fatalf("expected the intersection to take the farther material; got %d", inter.mat)
	}

	// The fold order used by the compiler matches the n-ary blend.
	const k = 8.0
	c := fieldSample{dist: 0.45, mat: 2}
	folded := smoothBlend(smoothBlend(a, b, k), c, k)
	nary := -math32.Log(math32.Exp(-k*a.dist)+math32.Exp(-k*b.dist)+math32.Exp(-k*c.dist)) / k
	if math32.Abs(folded.dist-nary) > 1e-5 {
		t.Fatalf("expected folded blend %f to match n-ary blend %f", folded.dist, nary)
	}
}

// Far from its children the blend must degrade toward the plain
// minimum instead of blowing up: the unscaled exponential form loses
// both terms to float32 underflow once k*dist passes the exponent
// range, leaving an infinite field.
func TestSmoothBlendFarField(t *testing.T) {
	far := smoothBlend(fieldSample{dist: 40}, fieldSample{dist: 40.5}, 8.0)
	if math32.IsInf(far.dist, 0) || math32.IsNaN(far.dist) {
		t.Fatalf("expected a finite blend of far fields; got %f", far.dist)
	}
	if far.dist > 40 || far.dist < 39.9 {
		t.Fatalf("expected the far blend to track the nearer field; got %f", far.dist)
	}

	sc, slots := compileWorld(t, &scene.World{
		Objects: []scene.Node{
			{Smooth: &scene.Smooth{Blend: 8.0, Children: []scene.Node{
				sphereNode(types.XYZ(0, 0, 40), 0.5, "m"),
				sphereNode(types.XYZ(0, 0, 40.4), 0.5, "m"),
			}}},
		},
		Materials: map[string]scene.Material{"m": {}},
	})

	if s := evalField(sc, slots, types.Vec3{}); math32.Abs(s.dist-39.5) > 0.1 {
		t.Fatalf("expected a field value near 39.5 at the origin; got %f", s.dist)
	}

	h, ok := march(sc, slots, types.Vec3{}, types.XYZ(0, 0, 1))
	if !ok {
		t.Fatal("expected the ray to hit the distant blended pair")
	}
	if math32.Abs(h.dist-39.5) > 0.1 {
		t.Fatalf("expected a hit near distance 39.5; got %f", h.dist)
	}
}

func TestMarch(t *testing.T) {
	sc, slots := compileWorld(t, &scene.World{
		Objects:   []scene.Node{sphereNode(types.XYZ(0, 0, 2), 0.5, "m")},
		Materials: map[string]scene.Material{"m": {}},
	})

	h, ok := march(sc, slots, types.Vec3{}, types.XYZ(0, 0, 1))
	if !ok {
		t.Fatal("expected the ray to hit the sphere")
	}
	if math32.Abs(h.dist-1.5) > 2*hitEpsilon {
		t.Fatalf("expected a hit near distance 1.5; got %f", h.dist)
	}
	if h.mat != 0 {
		t.Fatalf("expected hit material 0; got %d", h.mat)
	}

	if _, ok = march(sc, slots, types.Vec3{}, types.XYZ(0, 0, -1)); ok {
		t.Fatal("expected a ray pointing away from the sphere to miss")
	}
	if _, ok = march(sc, slots, types.Vec3{}, types.XYZ(0, 1, 0)); ok {
		t.Fatal("expected a ray grazing past the sphere to miss")
	}
}

func TestSurfaceNormal(t *testing.T) {
	sc, slots := compileWorld(t, &scene.World{
		Objects:   []scene.Node{sphereNode(types.XYZ(0, 0, 2), 0.5, "m")},
		Materials: map[string]scene.Material{"m": {}},
	})

	n := surfaceNormal(sc, slots, types.XYZ(0, 0, 1.5))
	if n.Dot(types.XYZ(0, 0, -1)) < 0.999 {
		t.Fatalf("expected a normal close to -Z; got %v", n)
	}
}
