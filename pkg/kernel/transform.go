package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform returns a copy of a 3D geometry with every position multiplied
// by m. Texture coordinates and w are copied unchanged. A transform with a
// negative determinant mirrors the shape; the caller is responsible for
// flipping winding in that case (see FlipWinding).
func Transform(g *Geometry, m sdf.M44) *Geometry {
	out := clone(g)
	if g.Format != Format3D {
		return out
	}
	s := g.Format.Stride()
	for i := 0; i < g.VertexCount(); i++ {
		r := out.Vertices[i*s : i*s+3]
		p := m.MulPosition(v3.Vec{X: float64(r[0]), Y: float64(r[1]), Z: float64(r[2])})
		r[0], r[1], r[2] = float32(p.X), float32(p.Y), float32(p.Z)
	}
	return out
}

// Transform2D is Transform for 2D records.
func Transform2D(g *Geometry, m sdf.M33) *Geometry {
	out := clone(g)
	if g.Format != Format2D {
		return out
	}
	s := g.Format.Stride()
	for i := 0; i < g.VertexCount(); i++ {
		r := out.Vertices[i*s : i*s+2]
		p := m.MulPosition(v2.Vec{X: float64(r[0]), Y: float64(r[1])})
		r[0], r[1] = float32(p.X), float32(p.Y)
	}
	return out
}

// Lift returns 2D geometry as 3D records in the z = 0 plane. 3D geometry
// is returned as a copy.
func Lift(g *Geometry) *Geometry {
	if g.Format != Format2D {
		return clone(g)
	}
	b := NewBuilder(Format3D, g.Topology, g.VertexCount())
	for i := 0; i < g.VertexCount(); i++ {
		u, v := g.UV(i)
		b.Add(Vertex{P: g.Position(i), U: u, V: v})
	}
	return b.Build(g.Name)
}

// EulerDegrees builds the rotation applied for (x, y, z) Euler angles in
// degrees: X first, then Y, then Z.
func EulerDegrees(x, y, z float64) sdf.M44 {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0
	return sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
}

func clone(g *Geometry) *Geometry {
	out := *g
	out.Vertices = append([]float32(nil), g.Vertices...)
	out.Indices = append([]uint32(nil), g.Indices...)
	return &out
}
