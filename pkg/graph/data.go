package graph

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/flat"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/shape"
)

// Vec3 is a scene-level vector: a translation, Euler angles in degrees, or
// per-axis scale factors.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// V3 converts to the kernel vector type.
func (v Vec3) V3() v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

// ShapeData holds exactly one of a 3D parameter set or a 2D spec.
type ShapeData struct {
	Params shape.Params `json:"params,omitempty"`
	Flat   *flat.Spec   `json:"flat,omitempty"`
}

func (ShapeData) nodeData() {}

// KindName returns the shape family, 3D or 2D.
func (d ShapeData) KindName() string {
	switch {
	case d.Params != nil:
		return string(d.Params.Kind())
	case d.Flat != nil:
		return "flat/" + string(d.Flat.Kind)
	default:
		return "empty"
	}
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData places its single child. Created by the (place ...) form.
// Nil fields are the identity.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
	Scale       *Vec3 `json:"scale,omitempty"`
}

func (TransformData) nodeData() {}

// Matrix composes scale, then rotation X, Y, Z, then translation.
func (d TransformData) Matrix() sdf.M44 {
	m := sdf.Identity3d()
	if d.Scale != nil {
		m = sdf.Scale3d(d.Scale.V3())
	}
	if d.Rotation != nil {
		m = kernel.EulerDegrees(d.Rotation.X, d.Rotation.Y, d.Rotation.Z).Mul(m)
	}
	if d.Translation != nil {
		m = sdf.Translate3d(d.Translation.V3()).Mul(m)
	}
	return m
}

// Mirrors reports whether the scale has an odd number of negative factors,
// which reverses triangle winding.
func (d TransformData) Mirrors() bool {
	if d.Scale == nil {
		return false
	}
	return d.Scale.X*d.Scale.Y*d.Scale.Z < 0
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping. Created by the (group ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
