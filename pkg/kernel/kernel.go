// Package kernel defines the geometry buffers shared by every generator.
// A Geometry is a flat interleaved vertex array plus an identity index
// array, ready to be handed to a GPU upload layer. The generators that
// fill it (surface, tube, shape, flat) live in sibling packages; kernel
// only knows about records, triangles and whole-object transforms.
package kernel

import "fmt"

// Format identifies the vertex record layout of a Geometry.
type Format int

const (
	Format3D Format = iota // [x, y, z, w, u, v]
	Format2D               // [x, y, u, v]
)

// Stride returns the number of float32 values in one vertex record.
func (f Format) Stride() int {
	switch f {
	case Format2D:
		return 4
	default:
		return 6
	}
}

// ByteStride returns the size in bytes of one vertex record.
func (f Format) ByteStride() int {
	return f.Stride() * 4
}

func (f Format) String() string {
	switch f {
	case Format3D:
		return "xyzwuv"
	case Format2D:
		return "xyuv"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Topology describes how consecutive vertices are assembled into primitives.
type Topology int

const (
	TopologyTriangles Topology = iota // three consecutive records per triangle
	TopologyLineStrip                 // connected polyline
	TopologyPoints                    // one point per record
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "triangles"
	case TopologyLineStrip:
		return "line-strip"
	case TopologyPoints:
		return "points"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// W is the homogeneous coordinate written into every 3D record.
const W = 1.0
