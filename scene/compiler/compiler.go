package compiler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SpaceCat-Chan/ray-otami/log"
	"github.com/SpaceCat-Chan/ray-otami/scene"
	"github.com/SpaceCat-Chan/ray-otami/types"
)

var (
	// A primitive names a material that is missing from the table.
	ErrUnresolvedMaterial = errors.New("compiler: unresolved material reference")

	// The tree contains a node the flat encoding cannot express.
	ErrUnsupportedNode = errors.New("compiler: unsupported object node")
)

// A compiled scene: flat object and material buffers in the layout the
// field evaluator traverses, plus the global render parameters.
type Scene struct {
	Objects   []ObjectRecord
	Materials []MaterialRecord

	// Material table index -> source name, kept for diagnostics.
	MaterialNames []string

	SkyColor    types.Vec3
	MaxRayDepth uint32

	// Number of register slots a traversal needs.
	SlotCount uint32
}

type sceneCompiler struct {
	world  *scene.World
	out    *Scene
	logger log.Logger

	// Resolved material name -> flat table index.
	matIndex map[string]uint32

	slotCount uint32
}

// Compile a parsed scene tree into the flat buffer representation. The
// encoding is deterministic: object records follow tree insertion order
// (children before parents) and materials are flattened in sorted name
// order.
func Compile(world *scene.World) (*Scene, error) {
	c := &sceneCompiler{
		world: world,
		out: &Scene{
			SkyColor:    world.SkyColor,
			MaxRayDepth: world.MaxRayDepth,
		},
		logger:   log.New("scene compiler"),
		matIndex: make(map[string]uint32, len(world.Materials)),
	}

	start := time.Now()
	c.logger.Notice("compiling scene")

	c.flattenMaterials()

	for i := range world.Objects {
		if _, err := c.emit(&world.Objects[i], true, false); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
	}
	c.out.SlotCount = c.slotCount

	c.logger.Noticef("compiled scene (%d object records, %d materials, %d slots) in %d ms",
		len(c.out.Objects), len(c.out.Materials), c.slotCount, time.Since(start).Nanoseconds()/1e6)
	return c.out, nil
}

// Flatten the material table in sorted name order so that indices are
// stable across compilations of the same scene.
func (c *sceneCompiler) flattenMaterials() {
	names := make([]string, 0, len(c.world.Materials))
	for name := range c.world.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mat := c.world.Materials[name]
		c.matIndex[name] = uint32(len(c.out.Materials))
		c.out.Materials = append(c.out.Materials, MaterialRecord{
			Color:      mat.Color.Vec4(0),
			Emittance:  mat.Emittance.Vec4(0),
			MetalRough: types.XYZW(mat.Metalness, mat.Roughness, 0, 0),
		})
		c.out.MaterialNames = append(c.out.MaterialNames, name)
	}
}

// Emit the records for a node subtree in post order. When referenced is
// set the node's root record is assigned a register slot for its parent
// to read; the returned slot is only meaningful in that case.
func (c *sceneCompiler) emit(n *scene.Node, rendered, referenced bool) (uint32, error) {
	switch {
	case n.Sphere != nil:
		p := n.Sphere
		matIdx, err := c.resolveMaterial(p.Material)
		if err != nil {
			return 0, err
		}
		return c.append(ObjectRecord{
			Meta:  [4]uint32{matIdx, 0, 0, KindSphere},
			Args1: p.Center.Vec4(p.Radius),
		}, rendered, referenced), nil

	case n.Box != nil:
		p := n.Box
		matIdx, err := c.resolveMaterial(p.Material)
		if err != nil {
			return 0, err
		}
		return c.append(ObjectRecord{
			Meta:  [4]uint32{matIdx, 0, 0, KindBox},
			Args1: p.LowerCorner.Vec4(0),
			Args2: p.UpperCorner.Vec4(0),
		}, rendered, referenced), nil

	case n.Torus != nil:
		p := n.Torus
		matIdx, err := c.resolveMaterial(p.Material)
		if err != nil {
			return 0, err
		}
		return c.append(ObjectRecord{
			Meta:  [4]uint32{matIdx, 0, 0, KindTorus},
			Args1: p.Center.Vec4(p.MajorRadius),
			Args2: types.XYZW(p.MinorRadius, 0, 0, 0),
		}, rendered, referenced), nil

	case n.Inv != nil:
		childSlot, err := c.emit(&n.Inv.Child, false, true)
		if err != nil {
			return 0, err
		}
		return c.append(ObjectRecord{
			Meta:  [4]uint32{0, 0, 0, KindInv},
			Args1: types.XYZW(float32(childSlot), 0, 0, 0),
		}, rendered, referenced), nil

	case n.Min != nil:
		return c.emitFold(KindMin, n.Min.Children, 0, rendered, referenced)

	case n.Max != nil:
		return c.emitFold(KindMax, n.Max.Children, 0, rendered, referenced)

	case n.Smooth != nil:
		return c.emitFold(KindSmooth, n.Smooth.Children, n.Smooth.Blend, rendered, referenced)

	case n.Repeat != nil:
		// Point-warping operators have no home in the slot-register
		// traversal; the child would need to be evaluated at a
		// transformed position.
		return 0, fmt.Errorf("%w: repeat", ErrUnsupportedNode)
	}

	return 0, fmt.Errorf("%w: empty node", ErrUnsupportedNode)
}

// Emit a left fold of a binary combinator over the child list. The
// exponential smooth blend is associative, and min/max trivially so,
// which makes the pairwise fold equivalent to the n-ary operator for
// the fixed child order.
func (c *sceneCompiler) emitFold(kind uint32, children []scene.Node, blend float32, rendered, referenced bool) (uint32, error) {
	left, err := c.emit(&children[0], false, true)
	if err != nil {
		return 0, err
	}

	var slot uint32
	for i := 1; i < len(children); i++ {
		right, err := c.emit(&children[i], false, true)
		if err != nil {
			return 0, err
		}

		last := i == len(children)-1
		slot = c.append(ObjectRecord{
			Meta:  [4]uint32{0, 0, 0, kind},
			Args1: types.XYZW(float32(left), float32(right), 0, blend),
		}, rendered && last, referenced || !last)
		left = slot
	}
	return slot, nil
}

// Append a record, assigning a register slot when the record is
// referenced by a parent. Returns the assigned slot (zero otherwise).
func (c *sceneCompiler) append(rec ObjectRecord, rendered, referenced bool) uint32 {
	var slot uint32
	if referenced {
		slot = c.slotCount
		c.slotCount++
		rec.Meta[MetaSlot] = slot + 1
	}
	if rendered {
		rec.Meta[MetaRendered] = 1
	}
	c.out.Objects = append(c.out.Objects, rec)
	return slot
}

func (c *sceneCompiler) resolveMaterial(name string) (uint32, error) {
	idx, ok := c.matIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnresolvedMaterial, name)
	}
	return idx, nil
}
