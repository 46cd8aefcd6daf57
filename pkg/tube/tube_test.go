package tube

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/lathe/pkg/curve"
	"github.com/chazu/lathe/pkg/frame"
	"github.com/chazu/lathe/pkg/kernel"
)

func helixPoints(t *testing.T, divisions int) []v3.Vec {
	t.Helper()
	pts, err := curve.Sample(curve.Source{Func: curve.Helix(1, 2, 2), TMin: 0, TMax: 1, Divisions: divisions})
	require.NoError(t, err)
	return pts
}

func TestBuildCounts(t *testing.T) {
	tests := []struct {
		name      string
		divisions int
		radial    int
	}{
		{"minimal", 1, 3},
		{"default tube", 50, 6},
		{"fine", 64, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Sweep(helixPoints(t, tt.divisions), 0.1, tt.radial)
			want := tt.divisions * tt.radial * 6
			if got := g.VertexCount(); got != want {
				t.Errorf("VertexCount() = %d, want %d", got, want)
			}
			if got := g.IndexCount(); got != want {
				t.Errorf("IndexCount() = %d, want %d", got, want)
			}
		})
	}
}

func TestRingRadius(t *testing.T) {
	pts := helixPoints(t, 40)
	frames := frame.Transport(pts)
	const r = 0.25
	for i, p := range pts {
		ring := Ring(p, frames[i], r, 8)
		require.Len(t, ring, 9)
		for k, q := range ring {
			if d := q.Sub(p).Length(); math.Abs(d-r) > 1e-4 {
				t.Fatalf("ring %d point %d at distance %v, want %v", i, k, d, r)
			}
		}
		assert.InDelta(t, 0, ring[0].Sub(ring[8]).Length(), 1e-12, "seam points must coincide")
	}
}

func TestBuildVerticesOnTube(t *testing.T) {
	// A straight tube along +x: every vertex is at distance r from the axis.
	pts := []v3.Vec{{}, {X: 1}, {X: 2}}
	g := Sweep(pts, 0.5, 12)
	for i := 0; i < g.VertexCount(); i++ {
		p := g.Position(i)
		assert.InDelta(t, 0.5, math.Hypot(p.Y, p.Z), 1e-6)
	}
}

func TestBuildUV(t *testing.T) {
	pts := []v3.Vec{{}, {X: 1}, {X: 2}}
	g := Sweep(pts, 1, 4)

	// First quad: A(0,0), B(1/2,0), C(1/2,1/4).
	want := [][2]float64{{0, 0}, {0.5, 0}, {0.5, 0.25}, {0, 0}, {0.5, 0.25}, {0, 0.25}}
	for i, w := range want {
		u, v := g.UV(i)
		assert.InDelta(t, w[0], u, 1e-7, "u %d", i)
		assert.InDelta(t, w[1], v, 1e-7, "v %d", i)
	}
	// The last quad reaches u = 1 and v = 1 on the seam.
	u, v := g.UV(g.VertexCount() - 4)
	assert.InDelta(t, 1, u, 1e-7)
	assert.InDelta(t, 1, v, 1e-7)
}

func TestBuildFacesCentreline(t *testing.T) {
	pts := helixPoints(t, 64)
	g := Sweep(pts, 0.1, 8)
	o := kernel.CheckOrientation(g, nearestOn(pts))
	assert.Zero(t, o.Outward)
	assert.Positive(t, o.Inward)

	flipped := kernel.CheckOrientation(kernel.FlipWinding(g), nearestOn(pts))
	assert.Zero(t, flipped.Inward)
}

func TestBuildDegenerateInput(t *testing.T) {
	pts := []v3.Vec{{}, {X: 1}}
	assert.True(t, Sweep(nil, 1, 6).IsEmpty())
	assert.True(t, Sweep(pts[:1], 1, 6).IsEmpty())
	assert.True(t, Build(pts, nil, 1, 6).IsEmpty())
	assert.True(t, Sweep(pts, 1, 0).IsEmpty())
}

// nearestOn returns the closest point on the polyline through pts.
func nearestOn(pts []v3.Vec) kernel.InteriorFunc {
	return func(p v3.Vec) v3.Vec {
		best := pts[0]
		bestD := math.Inf(1)
		for i := 1; i < len(pts); i++ {
			a, b := pts[i-1], pts[i]
			ab := b.Sub(a)
			s := p.Sub(a).Dot(ab) / ab.Dot(ab)
			s = math.Max(0, math.Min(1, s))
			q := a.Add(ab.MulScalar(s))
			if d := p.Sub(q).Length(); d < bestD {
				best, bestD = q, d
			}
		}
		return best
	}
}
