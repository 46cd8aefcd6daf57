package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Vertex is a position with its texture coordinate, the unit the
// generators emit before the record is flattened.
type Vertex struct {
	P    v3.Vec
	U, V float64
}

// Builder accumulates records in triangle-major order. The zero value is
// not usable; call NewBuilder.
type Builder struct {
	format   Format
	topology Topology
	verts    []float32
}

// NewBuilder returns a builder for the given record format and topology.
// sizeHint is the expected vertex count and may be zero.
func NewBuilder(f Format, t Topology, sizeHint int) *Builder {
	return &Builder{
		format:   f,
		topology: t,
		verts:    make([]float32, 0, sizeHint*f.Stride()),
	}
}

// Add appends a single record.
func (b *Builder) Add(v Vertex) {
	if b.format == Format2D {
		b.verts = append(b.verts, float32(v.P.X), float32(v.P.Y), float32(v.U), float32(v.V))
		return
	}
	b.verts = append(b.verts, float32(v.P.X), float32(v.P.Y), float32(v.P.Z), W, float32(v.U), float32(v.V))
}

// AddTriangle appends three records in the given order.
func (b *Builder) AddTriangle(a, c, d Vertex) {
	b.Add(a)
	b.Add(c)
	b.Add(d)
}

// AddQuad appends the quad a,b,c,d as triangles (a,b,c) and (a,c,d).
func (b *Builder) AddQuad(a, c, d, e Vertex) {
	b.AddTriangle(a, c, d)
	b.AddTriangle(a, d, e)
}

// Append copies every record of g into the builder. g must share the
// builder's format.
func (b *Builder) Append(g *Geometry) {
	b.verts = append(b.verts, g.Vertices...)
}

// Len returns the number of records added so far.
func (b *Builder) Len() int {
	return len(b.verts) / b.format.Stride()
}

// Build returns the finished geometry with identity indices.
func (b *Builder) Build(name string) *Geometry {
	n := b.Len()
	return &Geometry{
		Name:     name,
		Format:   b.format,
		Topology: b.topology,
		Vertices: b.verts,
		Indices:  IdentityIndices(n),
	}
}
