package kernel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// degenerateArea is the squared cross-product magnitude below which a
// triangle has no usable normal. Cone apexes and sphere poles produce these.
const degenerateArea = 1e-18

// FlipWinding returns a copy of g with the second and third vertex of every
// triangle swapped. Non-triangle geometry is returned as a copy.
func FlipWinding(g *Geometry) *Geometry {
	out := clone(g)
	if g.Topology != TopologyTriangles {
		return out
	}
	s := g.Format.Stride()
	for t := 0; t < g.TriangleCount(); t++ {
		b := out.Vertices[(3*t+1)*s : (3*t+2)*s]
		c := out.Vertices[(3*t+2)*s : (3*t+3)*s]
		for k := 0; k < s; k++ {
			b[k], c[k] = c[k], b[k]
		}
	}
	return out
}

// FaceNormal returns the unnormalized geometric normal (b-a)x(c-a).
func FaceNormal(tri [3]v3.Vec) v3.Vec {
	return tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
}

// InteriorFunc maps a surface point to a point inside the solid that the
// face at that surface point should face away from.
type InteriorFunc func(p v3.Vec) v3.Vec

// Centre returns an InteriorFunc for shapes that are star-shaped about c.
func Centre(c v3.Vec) InteriorFunc {
	return func(v3.Vec) v3.Vec { return c }
}

// Orientation counts triangles by the direction of their face normal.
type Orientation struct {
	Outward    int
	Inward     int
	Degenerate int
}

// OK reports whether no face points inward.
func (o Orientation) OK() bool {
	return o.Inward == 0
}

func (o Orientation) String() string {
	return fmt.Sprintf("outward=%d inward=%d degenerate=%d", o.Outward, o.Inward, o.Degenerate)
}

// CheckOrientation classifies each triangle of g by comparing its face
// normal with the direction from interior(centroid) to the centroid.
// Line and point geometry yields a zero Orientation.
func CheckOrientation(g *Geometry, interior InteriorFunc) Orientation {
	var o Orientation
	for t := 0; t < g.TriangleCount(); t++ {
		tri := g.Triangle(t)
		n := FaceNormal(tri)
		if n.Dot(n) < degenerateArea {
			o.Degenerate++
			continue
		}
		centroid := tri[0].Add(tri[1]).Add(tri[2]).MulScalar(1.0 / 3.0)
		if n.Dot(centroid.Sub(interior(centroid))) > 0 {
			o.Outward++
		} else {
			o.Inward++
		}
	}
	return o
}
