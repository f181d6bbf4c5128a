package scene

import (
	"encoding/json"
	"fmt"

	"github.com/SpaceCat-Chan/ray-otami/types"
)

// A surface material. Color components are expected to be in the [0,1]
// range while emittance is unbounded; any object with a non-zero
// emittance acts as a light source.
type Material struct {
	Color     types.Vec3 `json:"color"`
	Emittance types.Vec3 `json:"emittance"`
	Metalness float32    `json:"metalness"`
	Roughness float32    `json:"roughness"`
}

// A sphere primitive.
type Sphere struct {
	Center   types.Vec3 `json:"center"`
	Radius   float32    `json:"radius"`
	Material string     `json:"material"`
}

// An axis-aligned box primitive.
type Box struct {
	LowerCorner types.Vec3 `json:"lower_corner"`
	UpperCorner types.Vec3 `json:"upper_corner"`
	Material    string     `json:"material"`
}

// A torus primitive lying in the XZ plane around its center.
type Torus struct {
	Center      types.Vec3 `json:"center"`
	MajorRadius float32    `json:"major_radius"`
	MinorRadius float32    `json:"minor_radius"`
	Material    string     `json:"material"`
}

// Field inversion; turns the interior of the child into exterior. Used
// together with max to carve cavities out of solids.
type Inv struct {
	Child Node `json:"child"`
}

// A boolean combinator over an ordered child list. Whether the min or
// the max of the child fields is selected depends on the node key.
type Combine struct {
	Children []Node `json:"children"`
}

// A smooth blend over an ordered child list. The sign of Blend selects
// smooth-union (positive) or smooth-intersection (negative) behavior.
type Smooth struct {
	Children []Node `json:"children"`
	Blend    float32 `json:"blend"`
}

// Domain repetition of the child field with the given period. Parsed
// for compatibility with the scene format; the compiler rejects it.
type Repeat struct {
	Child  Node    `json:"child"`
	Period float32 `json:"period"`
}

// A node in the scene object tree: a tagged union over the primitive
// and combinator kinds. Exactly one of the fields is non-nil.
type Node struct {
	Sphere *Sphere
	Box    *Box
	Torus  *Torus
	Inv    *Inv
	Min    *Combine
	Max    *Combine
	Smooth *Smooth
	Repeat *Repeat
}

// Parse a node from its JSON form: an object with a single key naming
// the node kind.
func (n *Node) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("scene: object node must have exactly one kind key; got %d", len(tagged))
	}

	for kind, body := range tagged {
		var err error
		switch kind {
		case "sphere":
			n.Sphere = &Sphere{}
			err = json.Unmarshal(body, n.Sphere)
		case "box":
			n.Box = &Box{}
			err = json.Unmarshal(body, n.Box)
		case "torus":
			n.Torus = &Torus{}
			err = json.Unmarshal(body, n.Torus)
		case "inv":
			n.Inv = &Inv{}
			err = json.Unmarshal(body, n.Inv)
		case "min":
			n.Min = &Combine{}
			err = json.Unmarshal(body, n.Min)
		case "max":
			n.Max = &Combine{}
			err = json.Unmarshal(body, n.Max)
		case "smooth":
			n.Smooth = &Smooth{}
			err = json.Unmarshal(body, n.Smooth)
		case "repeat":
			n.Repeat = &Repeat{}
			err = json.Unmarshal(body, n.Repeat)
		default:
			return fmt.Errorf("scene: unknown object node kind %q", kind)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Serialize a node back to its single-key JSON form.
func (n Node) MarshalJSON() ([]byte, error) {
	tagged := map[string]interface{}{}
	switch {
	case n.Sphere != nil:
		tagged["sphere"] = n.Sphere
	case n.Box != nil:
		tagged["box"] = n.Box
	case n.Torus != nil:
		tagged["torus"] = n.Torus
	case n.Inv != nil:
		tagged["inv"] = n.Inv
	case n.Min != nil:
		tagged["min"] = n.Min
	case n.Max != nil:
		tagged["max"] = n.Max
	case n.Smooth != nil:
		tagged["smooth"] = n.Smooth
	case n.Repeat != nil:
		tagged["repeat"] = n.Repeat
	default:
		return nil, fmt.Errorf("scene: cannot serialize empty object node")
	}
	return json.Marshal(tagged)
}

// Validate a node subtree: combinators need enough children and a
// non-zero blend factor where one applies.
func (n *Node) Validate() error {
	switch {
	case n.Sphere != nil, n.Box != nil, n.Torus != nil:
		return nil
	case n.Inv != nil:
		return n.Inv.Child.Validate()
	case n.Min != nil:
		return validateChildren("min", n.Min.Children)
	case n.Max != nil:
		return validateChildren("max", n.Max.Children)
	case n.Smooth != nil:
		if n.Smooth.Blend == 0 {
			return fmt.Errorf("scene: smooth blend factor must be non-zero")
		}
		return validateChildren("smooth", n.Smooth.Children)
	case n.Repeat != nil:
		if n.Repeat.Period <= 0 {
			return fmt.Errorf("scene: repeat period must be positive")
		}
		return n.Repeat.Child.Validate()
	}
	return fmt.Errorf("scene: empty object node")
}

func validateChildren(kind string, children []Node) error {
	if len(children) < 2 {
		return fmt.Errorf("scene: %s combinator needs at least 2 children; got %d", kind, len(children))
	}
	for i := range children {
		if err := children[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// The scene description: global render parameters, the object tree and
// the material table. The object list forms an implicit top-level union
// evaluated in insertion order.
type World struct {
	MaxRayDepth uint32              `json:"max_ray_depth"`
	SkyColor    types.Vec3          `json:"sky_color"`
	Objects     []Node              `json:"objects"`
	Materials   map[string]Material `json:"materials"`
}

// Validate the whole scene tree.
func (w *World) Validate() error {
	for i := range w.Objects {
		if err := w.Objects[i].Validate(); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}
