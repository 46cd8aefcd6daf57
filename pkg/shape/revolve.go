package shape

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/surface"
)

var (
	up   = v3.Vec{Y: 1}
	down = v3.Vec{Y: -1}
)

// cylinder builds the mantle with the tessellator and adds the caps.
// Cone, prism and pyramid all come through here.
func cylinder(p Cylinder) *kernel.Geometry {
	top, bottom, h := p.RadiusTop, p.RadiusBottom, p.Height
	grid := surface.Grid{
		U0: 0, U1: 2 * math.Pi, NU: p.RadialSegments,
		V0: 0, V1: 1, NV: p.HeightSegments,
	}

	size := grid.VertexCount() + 2*3*p.RadialSegments
	b := kernel.NewBuilder(kernel.Format3D, kernel.TopologyTriangles, size)
	surface.Append(b, grid, func(u, v float64) v3.Vec {
		rho := v*top + (1-v)*bottom
		return v3.Vec{
			X: rho * math.Cos(-u),
			Y: (v - 0.5) * h,
			Z: rho * math.Sin(-u),
		}
	})

	if !p.OpenTop && top > 0 {
		appendCap(b, h/2, top, p.RadialSegments, up)
	}
	if !p.OpenBottom && bottom > 0 {
		appendCap(b, -h/2, bottom, p.RadialSegments, down)
	}
	return b.Build("")
}

// appendCap adds a triangle fan closing the circle of the given radius at
// height y. The winding of each triangle is chosen so its geometric normal
// agrees with outward.
func appendCap(b *kernel.Builder, y, radius float64, segments int, outward v3.Vec) {
	centre := kernel.Vertex{P: v3.Vec{Y: y}, U: 0.5, V: 0.5}
	step := 2 * math.Pi / float64(segments)
	rim := func(i int) kernel.Vertex {
		c, s := math.Cos(float64(i)*step), math.Sin(float64(i)*step)
		return kernel.Vertex{
			P: v3.Vec{X: radius * c, Y: y, Z: radius * s},
			U: c*0.5 + 0.5,
			V: s*0.5 + 0.5,
		}
	}
	for i := 0; i < segments; i++ {
		fan(b, centre, rim(i), rim(i+1), outward)
	}
}

// fan adds (centre, a, c) or (centre, c, a), whichever faces outward.
func fan(b *kernel.Builder, centre, a, c kernel.Vertex, outward v3.Vec) {
	n := kernel.FaceNormal([3]v3.Vec{centre.P, a.P, c.P})
	if n.Dot(outward) >= 0 {
		b.AddTriangle(centre, a, c)
		return
	}
	b.AddTriangle(centre, c, a)
}
