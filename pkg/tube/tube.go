// Package tube sweeps a circular cross-section along a framed curve.
package tube

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/frame"
	"github.com/chazu/lathe/pkg/kernel"
)

// Ring returns radialSegments+1 points on the circle of radius r around
// centre in the plane spanned by f.N and f.B. The first and last points
// coincide so the seam carries distinct texture coordinates.
func Ring(centre v3.Vec, f frame.Frame, r float64, radialSegments int) []v3.Vec {
	step := 2 * math.Pi / float64(radialSegments)
	ring := make([]v3.Vec, radialSegments+1)
	for k := range ring {
		a := step * float64(k)
		dir := f.N.MulScalar(math.Cos(a)).Add(f.B.MulScalar(math.Sin(a)))
		ring[k] = centre.Add(dir.MulScalar(r))
	}
	return ring
}

// Build sweeps a circle of the given radius along pts using one frame per
// point. Each of the len(pts)-1 segments contributes radialSegments quads,
// split into (A, B, C) and (A, C, D) with A = ring[i][k], B = ring[i+1][k],
// C = ring[i+1][k+1] and D = ring[i][k+1]. UVs are (i/segments, k/radialSegments).
//
// The ring angle runs from N towards B. With the right-handed frames from
// frame.Transport (B = T x N) the faces point towards the centreline; flip
// the winding for an outward-facing tube.
//
// Build does not validate its input. Fewer than two points, fewer frames
// than points, or radialSegments < 1 yield an empty geometry.
func Build(pts []v3.Vec, frames []frame.Frame, radius float64, radialSegments int) *kernel.Geometry {
	segments := len(pts) - 1
	if segments < 1 || len(frames) < len(pts) || radialSegments < 1 {
		return kernel.NewBuilder(kernel.Format3D, kernel.TopologyTriangles, 0).Build("")
	}

	rings := make([][]v3.Vec, len(pts))
	for i, p := range pts {
		rings[i] = Ring(p, frames[i], radius, radialSegments)
	}

	b := kernel.NewBuilder(kernel.Format3D, kernel.TopologyTriangles, segments*radialSegments*6)
	for i := 0; i < segments; i++ {
		u0 := float64(i) / float64(segments)
		u1 := float64(i+1) / float64(segments)
		for k := 0; k < radialSegments; k++ {
			v0 := float64(k) / float64(radialSegments)
			v1 := float64(k+1) / float64(radialSegments)
			b.AddQuad(
				kernel.Vertex{P: rings[i][k], U: u0, V: v0},
				kernel.Vertex{P: rings[i+1][k], U: u1, V: v0},
				kernel.Vertex{P: rings[i+1][k+1], U: u1, V: v1},
				kernel.Vertex{P: rings[i][k+1], U: u0, V: v1},
			)
		}
	}
	return b.Build("")
}

// Sweep frames pts with frame.Transport and builds the tube.
func Sweep(pts []v3.Vec, radius float64, radialSegments int) *kernel.Geometry {
	return Build(pts, frame.Transport(pts), radius, radialSegments)
}
