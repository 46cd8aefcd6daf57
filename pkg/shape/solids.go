package shape

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/kernel"
)

// boxFaces holds each face as four corners, counter-clockwise seen from
// outside, in units of the half extents. Each face is split (0,1,2) and
// (2,3,0).
var boxFaces = [6][4]struct {
	x, y, z float64
	u, v    float64
}{
	// +z
	{{-1, -1, 1, 0, 0}, {1, -1, 1, 1, 0}, {1, 1, 1, 1, 1}, {-1, 1, 1, 0, 1}},
	// -z
	{{-1, 1, -1, 1, 0}, {1, 1, -1, 0, 0}, {1, -1, -1, 0, 1}, {-1, -1, -1, 1, 1}},
	// +x
	{{1, -1, -1, 0, 0}, {1, 1, -1, 1, 0}, {1, 1, 1, 1, 1}, {1, -1, 1, 0, 1}},
	// -x
	{{-1, -1, 1, 1, 0}, {-1, 1, 1, 0, 0}, {-1, 1, -1, 0, 1}, {-1, -1, -1, 1, 1}},
	// +y
	{{1, 1, -1, 1, 0}, {-1, 1, -1, 0, 0}, {-1, 1, 1, 0, 1}, {1, 1, 1, 1, 1}},
	// -y
	{{1, -1, 1, 0, 0}, {-1, -1, 1, 1, 0}, {-1, -1, -1, 1, 1}, {1, -1, -1, 0, 1}},
}

var quadCorners = [6]int{0, 1, 2, 2, 3, 0}

func box(p Box) *kernel.Geometry {
	hw, hh, hd := p.Width/2, p.Height/2, p.Depth/2
	b := kernel.NewBuilder(kernel.Format3D, kernel.TopologyTriangles, 36)
	for _, face := range boxFaces {
		for _, c := range quadCorners {
			f := face[c]
			b.Add(kernel.Vertex{P: v3.Vec{X: f.x * hw, Y: f.y * hh, Z: f.z * hd}, U: f.u, V: f.v})
		}
	}
	return b.Build("")
}

var goldenRatio = (1 + math.Sqrt(5)) / 2

// icosahedronVertices are the twelve corners before normalization.
var icosahedronVertices = [12]v3.Vec{
	{X: -1, Y: goldenRatio}, {X: 1, Y: goldenRatio}, {X: -1, Y: -goldenRatio}, {X: 1, Y: -goldenRatio},
	{Y: -1, Z: goldenRatio}, {Y: 1, Z: goldenRatio}, {Y: -1, Z: -goldenRatio}, {Y: 1, Z: -goldenRatio},
	{X: goldenRatio, Z: -1}, {X: goldenRatio, Z: 1}, {X: -goldenRatio, Z: -1}, {X: -goldenRatio, Z: 1},
}

// icosahedronFaces index icosahedronVertices, counter-clockwise from
// outside.
var icosahedronFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

func icosahedron(p Icosahedron) *kernel.Geometry {
	b := kernel.NewBuilder(kernel.Format3D, kernel.TopologyTriangles, 60)
	for _, face := range icosahedronFaces {
		for _, i := range face {
			n := icosahedronVertices[i].Normalize()
			b.Add(kernel.Vertex{
				P: n.MulScalar(p.Radius),
				U: math.Atan2(n.X, n.Z)/(2*math.Pi) + 0.5,
				V: n.Y*0.5 + 0.5,
			})
		}
	}
	return b.Build("")
}
