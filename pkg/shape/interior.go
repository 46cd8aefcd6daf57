package shape

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/kernel"
)

// Interior returns the reference CheckOrientation needs for p: a point
// each face should face away from. Solids use their centre (the torus its
// central circle); planes and rings face +z. Tubes, lines and points have
// none.
func Interior(p Params) (kernel.InteriorFunc, bool) {
	switch s := p.(type) {
	case Box, Sphere, Octahedron, Icosahedron, Cylinder, Cone, Prism, Pyramid:
		return kernel.Centre(v3.Vec{}), true
	case Torus:
		r := s.CentralRadius * s.Scale
		return func(q v3.Vec) v3.Vec {
			d := math.Hypot(q.X, q.Y)
			if d == 0 {
				return v3.Vec{}
			}
			return v3.Vec{X: q.X / d * r, Y: q.Y / d * r}
		}, true
	case Plane, Ring:
		return func(q v3.Vec) v3.Vec { return q.Sub(v3.Vec{Z: 1}) }, true
	}
	return nil, false
}
