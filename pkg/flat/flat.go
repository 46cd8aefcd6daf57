// Package flat builds validated 2D shapes as [x, y, u, v] triangle lists.
//
// Unlike the 3D generators, every constructor here checks its parameters
// and returns a *ParamError instead of geometry when one is out of range.
// Shapes are immutable; the With methods return a rebuilt copy.
package flat

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/chazu/lathe/pkg/kernel"
)

// Kind names a 2D shape family.
type Kind string

const (
	KindCircle    Kind = "circle"
	KindPolygon   Kind = "polygon"
	KindRing      Kind = "ring"
	KindRectangle Kind = "rectangle"
	KindTriangle  Kind = "triangle"
)

// MinSegments is the smallest segment or side count accepted.
const MinSegments = 3

// ErrInvalidParam is wrapped by every *ParamError.
var ErrInvalidParam = errors.New("invalid 2D shape parameter")

// ParamError reports a rejected constructor argument.
type ParamError struct {
	Kind   Kind
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("flat: %s: %s %s, got %v", e.Kind, e.Field, e.Reason, e.Value)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParam
}

// Spec is the full parameter set of a 2D shape. Only the fields used by
// Kind are read. A nil Transform is the identity.
type Spec struct {
	Kind        Kind       `json:"kind" yaml:"kind"`
	Radius      float32    `json:"radius,omitempty" yaml:"radius"`
	InnerRadius float32    `json:"inner_radius,omitempty" yaml:"inner_radius"`
	OuterRadius float32    `json:"outer_radius,omitempty" yaml:"outer_radius"`
	Width       float32    `json:"width,omitempty" yaml:"width"`
	Height      float32    `json:"height,omitempty" yaml:"height"`
	Size        float32    `json:"size,omitempty" yaml:"size"`
	Rotation    float32    `json:"rotation,omitempty" yaml:"rotation"`
	Segments    int        `json:"segments,omitempty" yaml:"segments"`
	Transform   *Transform `json:"transform,omitempty" yaml:"transform"`
}

// Validate checks the fields Kind uses.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindCircle:
		return firstErr(positive(s.Kind, "radius", s.Radius), minSegments(s.Kind, "segments", s.Segments))
	case KindPolygon:
		return firstErr(positive(s.Kind, "radius", s.Radius), minSegments(s.Kind, "sides", s.Segments))
	case KindRing:
		err := firstErr(
			positive(s.Kind, "inner_radius", s.InnerRadius),
			positive(s.Kind, "outer_radius", s.OuterRadius),
			minSegments(s.Kind, "segments", s.Segments),
		)
		if err == nil && s.OuterRadius <= s.InnerRadius {
			err = &ParamError{Kind: s.Kind, Field: "outer_radius", Value: s.OuterRadius, Reason: "must be greater than inner_radius"}
		}
		return err
	case KindRectangle:
		return firstErr(positive(s.Kind, "width", s.Width), positive(s.Kind, "height", s.Height))
	case KindTriangle:
		err := positive(s.Kind, "size", s.Size)
		if err == nil && (math32.IsNaN(s.Rotation) || math32.IsInf(s.Rotation, 0)) {
			err = &ParamError{Kind: s.Kind, Field: "rotation", Value: s.Rotation, Reason: "must be a finite number"}
		}
		return err
	default:
		return &ParamError{Kind: s.Kind, Field: "kind", Value: s.Kind, Reason: "is not a known 2D shape"}
	}
}

// Shape is a validated 2D shape and its geometry.
type Shape struct {
	spec Spec
	geom *kernel.Geometry
}

// New validates spec and builds the shape.
func New(spec Spec) (*Shape, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Transform != nil {
		if err := spec.Transform.validate(spec.Kind); err != nil {
			return nil, err
		}
		t := *spec.Transform
		spec.Transform = &t
	}

	var g *kernel.Geometry
	switch spec.Kind {
	case KindCircle, KindPolygon:
		g = circle(spec.Radius, spec.Segments)
	case KindRing:
		g = ring(spec.InnerRadius, spec.OuterRadius, spec.Segments)
	case KindRectangle:
		g = rectangle(spec.Width, spec.Height)
	case KindTriangle:
		g = triangle(spec.Size, spec.Rotation)
	}
	if spec.Transform != nil {
		g = kernel.Transform2D(g, spec.Transform.Matrix())
	}
	return &Shape{spec: spec, geom: g.WithName(string(spec.Kind))}, nil
}

// Circle is a fan of segments triangles around the origin. Perimeter
// points sit at angles 2*pi*k/segments.
func Circle(radius float32, segments int) (*Shape, error) {
	return New(Spec{Kind: KindCircle, Radius: radius, Segments: segments})
}

// Polygon is a circle with one segment per side.
func Polygon(radius float32, sides int) (*Shape, error) {
	return New(Spec{Kind: KindPolygon, Radius: radius, Segments: sides})
}

// Ring is an annulus between inner and outer.
func Ring(inner, outer float32, segments int) (*Shape, error) {
	return New(Spec{Kind: KindRing, InnerRadius: inner, OuterRadius: outer, Segments: segments})
}

// Rectangle is centred on the origin.
func Rectangle(width, height float32) (*Shape, error) {
	return New(Spec{Kind: KindRectangle, Width: width, Height: height})
}

// Triangle scales the base triangle (0,-0.5), (0.5,0.5), (-0.5,0.75) by
// size and rotates it by rotation radians.
func Triangle(size, rotation float32) (*Shape, error) {
	return New(Spec{Kind: KindTriangle, Size: size, Rotation: rotation})
}

// Spec returns the parameters the shape was built from.
func (s *Shape) Spec() Spec {
	spec := s.spec
	if spec.Transform != nil {
		t := *spec.Transform
		spec.Transform = &t
	}
	return spec
}

func (s *Shape) Kind() Kind { return s.spec.Kind }

// Geometry returns the shape's buffers.
func (s *Shape) Geometry() *kernel.Geometry { return s.geom }

func (s *Shape) VertexData() []float32 { return s.geom.VertexData() }

func (s *Shape) IndexData() []uint32 { return s.geom.IndexData() }

func (s *Shape) VertexCount() int { return s.geom.VertexCount() }

func (s *Shape) IndexCount() int { return s.geom.IndexCount() }

// With applies update to a copy of the Spec and rebuilds. The receiver is
// unchanged whether or not the update validates.
func (s *Shape) With(update func(*Spec)) (*Shape, error) {
	spec := s.Spec()
	update(&spec)
	return New(spec)
}

// WithSegments rebuilds with a different segment or side count.
func (s *Shape) WithSegments(n int) (*Shape, error) {
	return s.With(func(spec *Spec) { spec.Segments = n })
}

// WithTransform rebuilds with t applied to every vertex.
func (s *Shape) WithTransform(t Transform) (*Shape, error) {
	return s.With(func(spec *Spec) { spec.Transform = &t })
}

func positive(k Kind, field string, v float32) error {
	if v > 0 {
		return nil
	}
	return &ParamError{Kind: k, Field: field, Value: v, Reason: "must be a positive number"}
}

func minSegments(k Kind, field string, n int) error {
	if n >= MinSegments {
		return nil
	}
	return &ParamError{Kind: k, Field: field, Value: n, Reason: fmt.Sprintf("must be at least %d", MinSegments)}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
