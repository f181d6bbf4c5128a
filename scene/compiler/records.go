package compiler

import (
	"unsafe"

	"github.com/SpaceCat-Chan/ray-otami/types"
)

// Object record kinds. The numeric values are part of the buffer
// contract with the field evaluator and must not be reordered.
const (
	KindSphere uint32 = 0
	KindBox    uint32 = 1
	KindRepeat uint32 = 2
	KindInv    uint32 = 3
	KindMax    uint32 = 4
	KindMin    uint32 = 5
	KindTorus  uint32 = 6
	KindSmooth uint32 = 7
)

// Indices into ObjectRecord.Meta.
const (
	MetaMaterial = 0
	MetaSlot     = 1
	MetaRendered = 2
	MetaKind     = 3
)

// A flattened scene object. Records are stored in evaluation order:
// every combinator child precedes its parent and publishes its field
// sample into the register slot named by Meta[MetaSlot] (stored as
// slot+1 so that zero means "not referenced"). Records with
// Meta[MetaRendered] set form the implicit top-level union.
//
// Geometry/combinator arguments by kind:
//
//	sphere: Args1 = center xyz, radius
//	box:    Args1 = lower corner, Args2 = upper corner
//	torus:  Args1 = center xyz, major radius; Args2[0] = minor radius
//	inv:    Args1[0] = child slot
//	max:    Args1[0], Args1[1] = child slots
//	min:    Args1[0], Args1[1] = child slots
//	smooth: Args1[0], Args1[1] = child slots, Args1[3] = blend factor
type ObjectRecord struct {
	Meta  [4]uint32
	Args1 types.Vec4
	Args2 types.Vec4
}

// A flattened material. The trailing component of Color and Emittance
// is padding; MetalRough packs metalness and roughness in its first two
// components.
type MaterialRecord struct {
	Color      types.Vec4
	Emittance  types.Vec4
	MetalRough types.Vec4
}

// Record sizes in bytes. Each record spans three 16 byte lanes so the
// layout maps 1:1 onto a GPU storage buffer of vec4s.
const (
	ObjectRecordSize   = 48
	MaterialRecordSize = 48
)

// Get the register slot this record publishes to and whether it
// publishes at all.
func (r *ObjectRecord) Slot() (uint32, bool) {
	if r.Meta[MetaSlot] == 0 {
		return 0, false
	}
	return r.Meta[MetaSlot] - 1, true
}

// True for records that take part in the top-level union.
func (r *ObjectRecord) Rendered() bool {
	return r.Meta[MetaRendered] != 0
}

// Get a raw byte view of the object buffer for device upload. The view
// aliases the record slice; it is valid as long as the scene is.
func (sc *Scene) ObjectBytes() []byte {
	if len(sc.Objects) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&sc.Objects[0])), len(sc.Objects)*ObjectRecordSize)
}

// Get a raw byte view of the material buffer for device upload.
func (sc *Scene) MaterialBytes() []byte {
	if len(sc.Materials) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&sc.Materials[0])), len(sc.Materials)*MaterialRecordSize)
}
