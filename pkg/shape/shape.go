// Package shape generates the built-in 3D shapes. Each shape is described
// by a small parameter struct; Generate validates it and returns a fresh
// kernel.Geometry. Generation is pure: equal parameters give bit-identical
// buffers.
package shape

import (
	"errors"
	"fmt"

	"github.com/chazu/lathe/pkg/kernel"
)

// Kind names a shape family.
type Kind string

const (
	KindBox         Kind = "box"
	KindPlane       Kind = "plane"
	KindSphere      Kind = "sphere"
	KindOctahedron  Kind = "octahedron"
	KindIcosahedron Kind = "icosahedron"
	KindCylinder    Kind = "cylinder"
	KindCone        Kind = "cone"
	KindPrism       Kind = "prism"
	KindPyramid     Kind = "pyramid"
	KindTorus       Kind = "torus"
	KindRing        Kind = "ring"
	KindTube        Kind = "tube"
	KindLine        Kind = "line"
	KindPoints      Kind = "points"
)

// Kinds lists every shape family in a stable order.
var Kinds = []Kind{
	KindBox, KindPlane, KindSphere, KindOctahedron, KindIcosahedron,
	KindCylinder, KindCone, KindPrism, KindPyramid, KindTorus, KindRing,
	KindTube, KindLine, KindPoints,
}

// Params is implemented by every shape parameter struct.
type Params interface {
	Kind() Kind
	Validate() error
}

// ErrInvalidParam is wrapped by every *ParamError.
var ErrInvalidParam = errors.New("invalid shape parameter")

// ErrUnknownKind is returned for a Kind this package does not generate.
var ErrUnknownKind = errors.New("unknown shape kind")

// ParamError reports a parameter that fails validation.
type ParamError struct {
	Kind   Kind
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("shape: %s: %s %s (got %v)", e.Kind, e.Field, e.Reason, e.Value)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParam
}

// Generate validates p and builds its geometry. The geometry is named after
// the shape kind.
func Generate(p Params) (*kernel.Geometry, error) {
	if p == nil {
		return nil, fmt.Errorf("shape: nil params: %w", ErrUnknownKind)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var g *kernel.Geometry
	var err error
	switch s := p.(type) {
	case Box:
		g = box(s)
	case Plane:
		g = plane(s)
	case Sphere:
		g = sphere(s)
	case Octahedron:
		g = sphere(s.sphere())
	case Icosahedron:
		g = icosahedron(s)
	case Cylinder:
		g = cylinder(s)
	case Cone:
		g = cylinder(s.cylinder())
	case Prism:
		g = cylinder(s.cylinder())
	case Pyramid:
		g = cylinder(s.cylinder())
	case Torus:
		g = torus(s)
	case Ring:
		g = ring(s)
	case Tube:
		g, err = tubeGeometry(s)
	case Line:
		g, err = line(s)
	case Points:
		g = points(s)
	default:
		return nil, fmt.Errorf("shape: %T: %w", p, ErrUnknownKind)
	}
	if err != nil {
		return nil, fmt.Errorf("shape: %s: %w", p.Kind(), err)
	}

	kernel.Logger().Debug("shape generated", "kind", p.Kind(), "vertices", g.VertexCount())
	return g.WithName(string(p.Kind())), nil
}

// Defaults returns the default parameters for kind.
func Defaults(kind Kind) (Params, error) {
	switch kind {
	case KindBox:
		return DefaultBox(), nil
	case KindPlane:
		return DefaultPlane(), nil
	case KindSphere:
		return DefaultSphere(), nil
	case KindOctahedron:
		return DefaultOctahedron(), nil
	case KindIcosahedron:
		return DefaultIcosahedron(), nil
	case KindCylinder:
		return DefaultCylinder(), nil
	case KindCone:
		return DefaultCone(), nil
	case KindPrism:
		return DefaultPrism(), nil
	case KindPyramid:
		return DefaultPyramid(), nil
	case KindTorus:
		return DefaultTorus(), nil
	case KindRing:
		return DefaultRing(), nil
	case KindTube:
		return DefaultTube(), nil
	case KindLine:
		return Line{}, nil
	case KindPoints:
		return Points{}, nil
	default:
		return nil, fmt.Errorf("shape: %q: %w", kind, ErrUnknownKind)
	}
}

// Decode starts from the defaults for kind and lets decode overwrite the
// fields it knows about. decode is typically yaml.Node.Decode or a
// json.Unmarshal closure.
func Decode(kind Kind, decode func(v any) error) (Params, error) {
	p, err := Defaults(kind)
	if err != nil {
		return nil, err
	}
	switch s := p.(type) {
	case Box:
		err = decode(&s)
		p = s
	case Plane:
		err = decode(&s)
		p = s
	case Sphere:
		err = decode(&s)
		p = s
	case Octahedron:
		err = decode(&s)
		p = s
	case Icosahedron:
		err = decode(&s)
		p = s
	case Cylinder:
		err = decode(&s)
		p = s
	case Cone:
		err = decode(&s)
		p = s
	case Prism:
		err = decode(&s)
		p = s
	case Pyramid:
		err = decode(&s)
		p = s
	case Torus:
		err = decode(&s)
		p = s
	case Ring:
		err = decode(&s)
		p = s
	case Tube:
		err = decode(&s)
		p = s
	case Line:
		err = decode(&s)
		p = s
	case Points:
		err = decode(&s)
		p = s
	}
	if err != nil {
		return nil, fmt.Errorf("shape: decode %s: %w", kind, err)
	}
	return p, nil
}
