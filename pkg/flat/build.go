package flat

import (
	"github.com/chewxy/math32"

	"github.com/chazu/lathe/pkg/kernel"
)

// records accumulates [x, y, u, v] records.
type records []float32

func (r *records) add(x, y, u, v float32) {
	*r = append(*r, x, y, u, v)
}

func (r records) geometry() *kernel.Geometry {
	n := len(r) / kernel.Format2D.Stride()
	return &kernel.Geometry{
		Format:   kernel.Format2D,
		Topology: kernel.TopologyTriangles,
		Vertices: r,
		Indices:  kernel.IdentityIndices(n),
	}
}

// planarUV maps a point inside the circle of radius r to [0, 1].
func planarUV(x, y, r float32) (u, v float32) {
	return x/r*0.5 + 0.5, y/r*0.5 + 0.5
}

func circle(radius float32, segments int) *kernel.Geometry {
	r := make(records, 0, segments*3*4)
	step := 2 * math32.Pi / float32(segments)
	for k := 0; k < segments; k++ {
		s0, c0 := math32.Sincos(step * float32(k))
		s1, c1 := math32.Sincos(step * float32((k+1)%segments))
		r.add(0, 0, 0.5, 0.5)
		r.add(radius*c0, radius*s0, c0*0.5+0.5, s0*0.5+0.5)
		r.add(radius*c1, radius*s1, c1*0.5+0.5, s1*0.5+0.5)
	}
	return r.geometry()
}

func ring(inner, outer float32, segments int) *kernel.Geometry {
	r := make(records, 0, segments*6*4)
	step := 2 * math32.Pi / float32(segments)
	for k := 0; k < segments; k++ {
		s0, c0 := math32.Sincos(step * float32(k))
		s1, c1 := math32.Sincos(step * float32(k+1))
		ia := [2]float32{inner * c0, inner * s0}
		oa := [2]float32{outer * c0, outer * s0}
		ob := [2]float32{outer * c1, outer * s1}
		ib := [2]float32{inner * c1, inner * s1}
		for _, p := range [][2]float32{ia, oa, ob, ia, ob, ib} {
			u, v := planarUV(p[0], p[1], outer)
			r.add(p[0], p[1], u, v)
		}
	}
	return r.geometry()
}

func rectangle(width, height float32) *kernel.Geometry {
	hw, hh := width/2, height/2
	r := make(records, 0, 6*4)
	r.add(-hw, -hh, 0, 0)
	r.add(hw, -hh, 1, 0)
	r.add(hw, hh, 1, 1)
	r.add(-hw, -hh, 0, 0)
	r.add(hw, hh, 1, 1)
	r.add(-hw, hh, 0, 1)
	return r.geometry()
}

// baseTriangle is counter-clockwise. Its bounding box is
// [-0.5, 0.5] x [-0.5, 0.75].
var baseTriangle = [3][2]float32{{0, -0.5}, {0.5, 0.5}, {-0.5, 0.75}}

func triangle(size, rotation float32) *kernel.Geometry {
	sin, cos := math32.Sincos(rotation)
	r := make(records, 0, 3*4)
	for _, p := range baseTriangle {
		x, y := p[0]*size, p[1]*size
		r.add(x*cos-y*sin, x*sin+y*cos, p[0]+0.5, (p[1]+0.5)/1.25)
	}
	return r.geometry()
}
