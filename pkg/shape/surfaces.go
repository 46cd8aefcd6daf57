package shape

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/surface"
)

func plane(p Plane) *kernel.Geometry {
	grid := surface.Grid{
		U0: -p.Width / 2, U1: p.Width / 2, NU: p.WidthSegments,
		V0: -p.Height / 2, V1: p.Height / 2, NV: p.HeightSegments,
	}
	return surface.Tessellate(grid, func(u, v float64) v3.Vec {
		return v3.Vec{X: u, Y: v}
	})
}

func sphere(p Sphere) *kernel.Geometry {
	r := p.Radius
	grid := surface.Grid{
		U0: 0, U1: 2 * math.Pi, NU: p.WidthSegments,
		V0: -math.Pi / 2, V1: math.Pi / 2, NV: p.HeightSegments,
	}
	return surface.Tessellate(grid, func(u, v float64) v3.Vec {
		return v3.Vec{
			X: r * math.Sin(u) * math.Cos(v),
			Y: r * math.Sin(v),
			Z: r * math.Cos(u) * math.Cos(v),
		}
	})
}

func torus(p Torus) *kernel.Geometry {
	R, r, s := p.CentralRadius, p.TubeRadius, p.Scale
	grid := surface.Grid{
		U0: 0, U1: 2 * math.Pi, NU: p.TubularSegments,
		V0: 0, V1: 2 * math.Pi, NV: p.RadialSegments,
	}
	return surface.Tessellate(grid, func(u, v float64) v3.Vec {
		d := R + r*math.Cos(v)
		return v3.Vec{
			X: d * math.Cos(u) * s,
			Y: d * math.Sin(u) * s,
			Z: r * math.Sin(v) * s,
		}
	})
}

// ring runs u across the radius and v around the circle so the faces
// point along +z.
func ring(p Ring) *kernel.Geometry {
	grid := surface.Grid{
		U0: p.InnerRadius, U1: p.OuterRadius, NU: 1,
		V0: 0, V1: 2 * math.Pi, NV: p.Segments,
	}
	return surface.Tessellate(grid, func(u, v float64) v3.Vec {
		return v3.Vec{X: u * math.Cos(v), Y: u * math.Sin(v)}
	})
}
