package shape

import (
	"strconv"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ConeApexRadius is the top radius used for cones and pyramids. A small
// non-zero ring keeps the apex triangles from collapsing.
const ConeApexRadius = 0.0001

// Box is an axis-aligned box centred on the origin.
type Box struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Depth  float64 `json:"depth" yaml:"depth"`
}

// DefaultBox is a 2x2x2 cube.
func DefaultBox() Box { return Box{Width: 2, Height: 2, Depth: 2} }

// Kind reports KindBox.
func (Box) Kind() Kind { return KindBox }

// Validate requires every dimension to be positive.
func (b Box) Validate() error {
	return firstErr(
		positive(KindBox, "width", b.Width),
		positive(KindBox, "height", b.Height),
		positive(KindBox, "depth", b.Depth),
	)
}

// Plane is a rectangle in the xy-plane facing +z.
type Plane struct {
	Width          float64 `json:"width" yaml:"width"`
	Height         float64 `json:"height" yaml:"height"`
	WidthSegments  int     `json:"width_segments" yaml:"width_segments"`
	HeightSegments int     `json:"height_segments" yaml:"height_segments"`
}

// DefaultPlane is a single 2x2 quad.
func DefaultPlane() Plane { return Plane{Width: 2, Height: 2, WidthSegments: 1, HeightSegments: 1} }

// Kind reports KindPlane.
func (Plane) Kind() Kind { return KindPlane }

// Validate requires a positive size and at least one segment each way.
func (p Plane) Validate() error {
	return firstErr(
		positive(KindPlane, "width", p.Width),
		positive(KindPlane, "height", p.Height),
		atLeast(KindPlane, "width_segments", p.WidthSegments, 1),
		atLeast(KindPlane, "height_segments", p.HeightSegments, 1),
	)
}

// Sphere is a UV sphere. WidthSegments run around the y axis and
// HeightSegments from pole to pole.
type Sphere struct {
	Radius         float64 `json:"radius" yaml:"radius"`
	WidthSegments  int     `json:"width_segments" yaml:"width_segments"`
	HeightSegments int     `json:"height_segments" yaml:"height_segments"`
}

// DefaultSphere is a unit sphere with 32x16 segments.
func DefaultSphere() Sphere { return Sphere{Radius: 1, WidthSegments: 32, HeightSegments: 16} }

// Kind reports KindSphere.
func (Sphere) Kind() Kind { return KindSphere }

// Validate requires a positive radius, at least 3 segments around and
// 2 from pole to pole.
func (s Sphere) Validate() error {
	return firstErr(
		positive(KindSphere, "radius", s.Radius),
		atLeast(KindSphere, "width_segments", s.WidthSegments, 3),
		atLeast(KindSphere, "height_segments", s.HeightSegments, 2),
	)
}

// Octahedron is a sphere with four segments around and two from pole to
// pole.
type Octahedron struct {
	Radius float64 `json:"radius" yaml:"radius"`
}

// DefaultOctahedron has unit radius.
func DefaultOctahedron() Octahedron { return Octahedron{Radius: 1} }

// Kind reports KindOctahedron.
func (Octahedron) Kind() Kind { return KindOctahedron }

// Validate requires a positive radius.
func (o Octahedron) Validate() error {
	return positive(KindOctahedron, "radius", o.Radius)
}

func (o Octahedron) sphere() Sphere {
	return Sphere{Radius: o.Radius, WidthSegments: 4, HeightSegments: 2}
}

// Icosahedron is the regular twenty-faced solid with its vertices on a
// sphere of Radius.
type Icosahedron struct {
	Radius float64 `json:"radius" yaml:"radius"`
}

// DefaultIcosahedron has unit radius.
func DefaultIcosahedron() Icosahedron { return Icosahedron{Radius: 1} }

// Kind reports KindIcosahedron.
func (Icosahedron) Kind() Kind { return KindIcosahedron }

// Validate requires a positive radius.
func (i Icosahedron) Validate() error {
	return positive(KindIcosahedron, "radius", i.Radius)
}

// Cylinder is a frustum around the y axis centred on the origin, with
// optional flat caps. A cap is skipped when its radius is zero.
type Cylinder struct {
	RadiusTop      float64 `json:"radius_top" yaml:"radius_top"`
	RadiusBottom   float64 `json:"radius_bottom" yaml:"radius_bottom"`
	Height         float64 `json:"height" yaml:"height"`
	RadialSegments int     `json:"radial_segments" yaml:"radial_segments"`
	HeightSegments int     `json:"height_segments" yaml:"height_segments"`
	OpenTop        bool    `json:"open_top,omitempty" yaml:"open_top"`
	OpenBottom     bool    `json:"open_bottom,omitempty" yaml:"open_bottom"`
}

// DefaultCylinder is a capped unit-radius cylinder of height 2.
func DefaultCylinder() Cylinder {
	return Cylinder{RadiusTop: 1, RadiusBottom: 1, Height: 2, RadialSegments: 32, HeightSegments: 2}
}

// Kind reports KindCylinder.
func (Cylinder) Kind() Kind { return KindCylinder }

// Validate allows one radius to be zero but not both.
func (c Cylinder) Validate() error {
	err := firstErr(
		nonNegative(KindCylinder, "radius_top", c.RadiusTop),
		nonNegative(KindCylinder, "radius_bottom", c.RadiusBottom),
		positive(KindCylinder, "height", c.Height),
		atLeast(KindCylinder, "radial_segments", c.RadialSegments, 3),
		atLeast(KindCylinder, "height_segments", c.HeightSegments, 1),
	)
	if err == nil && c.RadiusTop == 0 && c.RadiusBottom == 0 {
		err = &ParamError{Kind: KindCylinder, Field: "radius_top", Value: c.RadiusTop, Reason: "and radius_bottom cannot both be zero"}
	}
	return err
}

// Cone is a cylinder whose top radius is ConeApexRadius. Only the bottom
// can be capped.
type Cone struct {
	Radius         float64 `json:"radius" yaml:"radius"`
	Height         float64 `json:"height" yaml:"height"`
	RadialSegments int     `json:"radial_segments" yaml:"radial_segments"`
	HeightSegments int     `json:"height_segments" yaml:"height_segments"`
	Open           bool    `json:"open,omitempty" yaml:"open"`
}

// DefaultCone has unit radius and height 2.
func DefaultCone() Cone { return Cone{Radius: 1, Height: 2, RadialSegments: 32, HeightSegments: 2} }

// Kind reports KindCone.
func (Cone) Kind() Kind { return KindCone }

// Validate requires a positive radius and height and at least 3
// radial segments.
func (c Cone) Validate() error {
	return firstErr(
		positive(KindCone, "radius", c.Radius),
		positive(KindCone, "height", c.Height),
		atLeast(KindCone, "radial_segments", c.RadialSegments, 3),
		atLeast(KindCone, "height_segments", c.HeightSegments, 1),
	)
}

func (c Cone) cylinder() Cylinder {
	return Cylinder{
		RadiusTop:      ConeApexRadius,
		RadiusBottom:   c.Radius,
		Height:         c.Height,
		RadialSegments: c.RadialSegments,
		HeightSegments: c.HeightSegments,
		OpenTop:        true,
		OpenBottom:     c.Open,
	}
}

// Prism is a capped cylinder with Sides flat faces.
type Prism struct {
	Radius         float64 `json:"radius" yaml:"radius"`
	Sides          int     `json:"sides" yaml:"sides"`
	Height         float64 `json:"height" yaml:"height"`
	HeightSegments int     `json:"height_segments" yaml:"height_segments"`
	Open           bool    `json:"open,omitempty" yaml:"open"`
}

// DefaultPrism is a square prism of height 2.
func DefaultPrism() Prism { return Prism{Radius: 1, Sides: 4, Height: 2, HeightSegments: 1} }

// Kind reports KindPrism.
func (Prism) Kind() Kind { return KindPrism }

// Validate requires at least 3 sides.
func (p Prism) Validate() error {
	return firstErr(
		positive(KindPrism, "radius", p.Radius),
		atLeast(KindPrism, "sides", p.Sides, 3),
		positive(KindPrism, "height", p.Height),
		atLeast(KindPrism, "height_segments", p.HeightSegments, 1),
	)
}

func (p Prism) cylinder() Cylinder {
	return Cylinder{
		RadiusTop:      p.Radius,
		RadiusBottom:   p.Radius,
		Height:         p.Height,
		RadialSegments: p.Sides,
		HeightSegments: p.HeightSegments,
		OpenTop:        p.Open,
		OpenBottom:     p.Open,
	}
}

// Pyramid is a cone with Sides flat faces.
type Pyramid struct {
	Radius         float64 `json:"radius" yaml:"radius"`
	Sides          int     `json:"sides" yaml:"sides"`
	Height         float64 `json:"height" yaml:"height"`
	HeightSegments int     `json:"height_segments" yaml:"height_segments"`
	Open           bool    `json:"open,omitempty" yaml:"open"`
}

// DefaultPyramid is a square pyramid of height 2.
func DefaultPyramid() Pyramid { return Pyramid{Radius: 1, Sides: 4, Height: 2, HeightSegments: 8} }

// Kind reports KindPyramid.
func (Pyramid) Kind() Kind { return KindPyramid }

// Validate requires at least 3 sides.
func (p Pyramid) Validate() error {
	return firstErr(
		positive(KindPyramid, "radius", p.Radius),
		atLeast(KindPyramid, "sides", p.Sides, 3),
		positive(KindPyramid, "height", p.Height),
		atLeast(KindPyramid, "height_segments", p.HeightSegments, 1),
	)
}

func (p Pyramid) cylinder() Cylinder {
	return Cone{
		Radius:         p.Radius,
		Height:         p.Height,
		RadialSegments: p.Sides,
		HeightSegments: p.HeightSegments,
		Open:           p.Open,
	}.cylinder()
}

// Torus lies in the xy-plane around the z axis. Scale multiplies every
// coordinate.
type Torus struct {
	CentralRadius   float64 `json:"central_radius" yaml:"central_radius"`
	TubeRadius      float64 `json:"tube_radius" yaml:"tube_radius"`
	TubularSegments int     `json:"tubular_segments" yaml:"tubular_segments"`
	RadialSegments  int     `json:"radial_segments" yaml:"radial_segments"`
	Scale           float64 `json:"scale" yaml:"scale"`
}

// DefaultTorus has an outer radius of 1.
func DefaultTorus() Torus {
	return Torus{CentralRadius: 0.6, TubeRadius: 0.4, TubularSegments: 32, RadialSegments: 10, Scale: 1}
}

// Kind reports KindTorus.
func (Torus) Kind() Kind { return KindTorus }

// Validate requires positive radii and scale.
func (t Torus) Validate() error {
	return firstErr(
		positive(KindTorus, "central_radius", t.CentralRadius),
		positive(KindTorus, "tube_radius", t.TubeRadius),
		atLeast(KindTorus, "tubular_segments", t.TubularSegments, 3),
		atLeast(KindTorus, "radial_segments", t.RadialSegments, 3),
		positive(KindTorus, "scale", t.Scale),
	)
}

// Ring is a flat annulus in the xy-plane facing +z.
type Ring struct {
	InnerRadius float64 `json:"inner_radius" yaml:"inner_radius"`
	OuterRadius float64 `json:"outer_radius" yaml:"outer_radius"`
	Segments    int     `json:"segments" yaml:"segments"`
}

// DefaultRing is a unit annulus with a quarter-radius hole.
func DefaultRing() Ring { return Ring{InnerRadius: 0.25, OuterRadius: 1, Segments: 32} }

// Kind reports KindRing.
func (Ring) Kind() Kind { return KindRing }

// Validate requires the outer radius to exceed the inner one.
func (r Ring) Validate() error {
	err := firstErr(
		nonNegative(KindRing, "inner_radius", r.InnerRadius),
		positive(KindRing, "outer_radius", r.OuterRadius),
		atLeast(KindRing, "segments", r.Segments, 3),
	)
	if err == nil && r.OuterRadius <= r.InnerRadius {
		err = &ParamError{Kind: KindRing, Field: "outer_radius", Value: r.OuterRadius, Reason: "must be greater than inner_radius"}
	}
	return err
}

// Tube sweeps a circle along Curve. The faces of a tube built on
// right-handed transported frames point at the centreline; Outward flips
// them.
type Tube struct {
	Curve          CurveSpec `json:"curve" yaml:"curve"`
	Radius         float64   `json:"radius" yaml:"radius"`
	RadialSegments int       `json:"radial_segments" yaml:"radial_segments"`
	Outward        bool      `json:"outward,omitempty" yaml:"outward"`
}

// DefaultTube is a thin hexagonal tube. Its curve must still be set.
func DefaultTube() Tube {
	return Tube{Curve: CurveSpec{Divisions: 50}, Radius: 0.1, RadialSegments: 6}
}

// Kind reports KindTube.
func (Tube) Kind() Kind { return KindTube }

// Validate checks the tube dimensions, then the curve.
func (t Tube) Validate() error {
	return firstErr(
		positive(KindTube, "radius", t.Radius),
		atLeast(KindTube, "radial_segments", t.RadialSegments, 3),
		t.Curve.validate(KindTube),
	)
}

// Line draws Curve as a line strip. U runs from 0 to 1 by arc length.
type Line struct {
	Curve CurveSpec `json:"curve" yaml:"curve"`
}

// Kind reports KindLine.
func (Line) Kind() Kind { return KindLine }

// Validate checks the curve.
func (l Line) Validate() error {
	return l.Curve.validate(KindLine)
}

// Points is a point cloud with zero texture coordinates.
type Points struct {
	Points []v3.Vec `json:"points" yaml:"points"`
}

// Kind reports KindPoints.
func (Points) Kind() Kind { return KindPoints }

// Validate requires at least one point.
func (p Points) Validate() error {
	if len(p.Points) == 0 {
		return &ParamError{Kind: KindPoints, Field: "points", Value: 0, Reason: "must not be empty"}
	}
	return nil
}

func positive(k Kind, field string, v float64) error {
	if v > 0 {
		return nil
	}
	return &ParamError{Kind: k, Field: field, Value: v, Reason: "must be a positive number"}
}

func nonNegative(k Kind, field string, v float64) error {
	if v >= 0 {
		return nil
	}
	return &ParamError{Kind: k, Field: field, Value: v, Reason: "must not be negative"}
}

func atLeast(k Kind, field string, v, min int) error {
	if v >= min {
		return nil
	}
	return &ParamError{Kind: k, Field: field, Value: v, Reason: "must be at least " + strconv.Itoa(min)}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
