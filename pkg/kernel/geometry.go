package kernel

import (
	"encoding/binary"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Geometry is an immutable triangle soup (or line/point list) suitable for
// direct upload to a vertex buffer. Vertices holds Format.Stride() floats
// per record. Indices is always the identity sequence 0..N-1; vertices are
// never shared between primitives, so seams keep their own UVs.
//
// The slices returned by VertexData and IndexData must be treated as
// read-only. Operations that change geometry return a new value.
type Geometry struct {
	Name     string    `json:"name,omitempty"`
	Format   Format    `json:"format"`
	Topology Topology  `json:"topology"`
	Vertices []float32 `json:"vertices"`
	Indices  []uint32  `json:"indices"`
}

// VertexData returns the interleaved vertex records.
func (g *Geometry) VertexData() []float32 {
	return g.Vertices
}

// IndexData returns the index array.
func (g *Geometry) IndexData() []uint32 {
	return g.Indices
}

// VertexCount returns the number of vertex records.
func (g *Geometry) VertexCount() int {
	return len(g.Vertices) / g.Format.Stride()
}

// IndexCount returns the number of indices.
func (g *Geometry) IndexCount() int {
	return len(g.Indices)
}

// TriangleCount returns the number of triangles, or 0 for line and point
// topologies.
func (g *Geometry) TriangleCount() int {
	if g.Topology != TopologyTriangles {
		return 0
	}
	return g.VertexCount() / 3
}

// IsEmpty returns true if the geometry has no vertices.
func (g *Geometry) IsEmpty() bool {
	return len(g.Vertices) == 0
}

// Position returns the position of vertex i. For 2D records z is 0.
func (g *Geometry) Position(i int) v3.Vec {
	s := g.Format.Stride()
	r := g.Vertices[i*s : (i+1)*s]
	if g.Format == Format2D {
		return v3.Vec{X: float64(r[0]), Y: float64(r[1])}
	}
	return v3.Vec{X: float64(r[0]), Y: float64(r[1]), Z: float64(r[2])}
}

// UV returns the texture coordinate of vertex i.
func (g *Geometry) UV(i int) (u, v float64) {
	s := g.Format.Stride()
	return float64(g.Vertices[i*s+s-2]), float64(g.Vertices[i*s+s-1])
}

// Triangle returns the three corner positions of triangle t.
func (g *Geometry) Triangle(t int) [3]v3.Vec {
	return [3]v3.Vec{g.Position(3 * t), g.Position(3*t + 1), g.Position(3*t + 2)}
}

// VertexBytes returns the vertex array as little-endian float32 bytes.
func (g *Geometry) VertexBytes() []byte {
	buf := make([]byte, len(g.Vertices)*4)
	for i, f := range g.Vertices {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// IndexBytes returns the index array as little-endian uint32 bytes.
func (g *Geometry) IndexBytes() []byte {
	buf := make([]byte, len(g.Indices)*4)
	for i, idx := range g.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// Bounds returns the axis-aligned bounding box of all vertex positions.
// An empty geometry returns two zero vectors.
func (g *Geometry) Bounds() (min, max v3.Vec) {
	n := g.VertexCount()
	if n == 0 {
		return min, max
	}
	min = g.Position(0)
	max = min
	for i := 1; i < n; i++ {
		p := g.Position(i)
		min = v3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = v3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return min, max
}

// IdentityIndices returns the sequence 0..n-1.
func IdentityIndices(n int) []uint32 {
	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

// WithName returns a shallow copy of g carrying a different name. The
// buffers are shared; neither copy mutates them.
func (g *Geometry) WithName(name string) *Geometry {
	c := *g
	c.Name = name
	return &c
}
