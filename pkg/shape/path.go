package shape

import (
	"math"

	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/frame"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/tube"
)

func tubeGeometry(p Tube) (*kernel.Geometry, error) {
	pts, err := p.Curve.Sample()
	if err != nil {
		return nil, err
	}
	if turn := frame.MaxTurn(pts); turn >= MaxSafeTurn {
		kernel.Logger().Warn("tube curve turns too sharply for stable frames", "max_turn_rad", turn)
	}
	g := tube.Build(pts, frame.Transport(pts), p.Radius, p.RadialSegments)
	if p.Outward {
		g = kernel.FlipWinding(g)
	}
	return g, nil
}

// MaxSafeTurn is the per-sample turning angle (radians) from which parallel
// transport may flip the normal.
const MaxSafeTurn = math.Pi / 2

func line(p Line) (*kernel.Geometry, error) {
	pts, err := p.Curve.Sample()
	if err != nil {
		return nil, err
	}
	s := curve.ArcLengths(pts)
	total := s[len(s)-1]
	b := kernel.NewBuilder(kernel.Format3D, kernel.TopologyLineStrip, len(pts))
	for i, pt := range pts {
		var u float64
		if total > 0 {
			u = s[i] / total
		}
		b.Add(kernel.Vertex{P: pt, U: u})
	}
	return b.Build(""), nil
}

func points(p Points) *kernel.Geometry {
	b := kernel.NewBuilder(kernel.Format3D, kernel.TopologyPoints, len(p.Points))
	for _, pt := range p.Points {
		b.Add(kernel.Vertex{P: pt})
	}
	return b.Build("")
}
