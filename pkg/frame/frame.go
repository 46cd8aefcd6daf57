// Package frame computes rotation-minimizing frames along a sampled curve
// by parallel transport.
//
// Transport is permissive: it does not validate its input. Repeated
// consecutive points give zero-length tangents, and the frames at those
// samples are NaN. Turns of 90 degrees or more between adjacent tangents
// are outside the regime where the normal is guaranteed not to flip; use
// MaxTurn to detect such input.
package frame

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Frame is an orthonormal tangent, normal, binormal triple.
type Frame struct {
	T, N, B v3.Vec
}

const (
	// seedFallback is the cross-product magnitude below which the seed
	// reference vector is considered parallel to the first tangent.
	seedFallback = 0.001
	// straightStep is the rotation-axis magnitude below which two
	// consecutive tangents are treated as parallel.
	straightStep = 0.0001
)

var (
	seedRef     = v3.Vec{X: 1, Y: 1, Z: 1}
	seedFallRef = v3.Vec{X: 1, Y: 1, Z: -1}
)

// Tangents returns the normalized finite-difference tangents of pts:
// forward difference at the first point, backward at the last and central
// everywhere else. Fewer than two points yields nil.
func Tangents(pts []v3.Vec) []v3.Vec {
	n := len(pts)
	if n < 2 {
		return nil
	}
	t := make([]v3.Vec, n)
	t[0] = pts[1].Sub(pts[0]).Normalize()
	t[n-1] = pts[n-1].Sub(pts[n-2]).Normalize()
	for i := 1; i < n-1; i++ {
		t[i] = pts[i+1].Sub(pts[i-1]).Normalize()
	}
	return t
}

// Transport returns one frame per point. The first normal is seeded from
// the tangent crossed with (1,1,1), or (1,1,-1) when the two are nearly
// parallel. Each following normal is the previous one rotated by the
// rotation taking the previous tangent onto the current one. B is always
// T x N. Fewer than two points yields nil.
func Transport(pts []v3.Vec) []Frame {
	tangents := Tangents(pts)
	if tangents == nil {
		return nil
	}
	frames := make([]Frame, len(tangents))

	t0 := tangents[0]
	seed := t0.Cross(seedRef)
	if seed.Length() < seedFallback {
		seed = t0.Cross(seedFallRef)
	}
	n := seed.Normalize()
	frames[0] = Frame{T: t0, N: n, B: t0.Cross(n)}

	for i := 1; i < len(tangents); i++ {
		prev, cur := tangents[i-1], tangents[i]
		axis := prev.Cross(cur)
		if m := axis.Length(); m >= straightStep {
			axis = axis.MulScalar(1 / m)
			theta := math.Acos(clamp(prev.Dot(cur), -1, 1))
			n = rotate(n, axis, theta)
		}
		frames[i] = Frame{T: cur, N: n, B: cur.Cross(n)}
	}
	return frames
}

// rotate applies Rodrigues' formula to v about the unit axis k.
func rotate(v, k v3.Vec, theta float64) v3.Vec {
	c, s := math.Cos(theta), math.Sin(theta)
	return v.MulScalar(c).
		Add(k.Cross(v).MulScalar(s)).
		Add(k.MulScalar(k.Dot(v) * (1 - c)))
}

// MaxTurn returns the largest angle in radians between consecutive
// tangents of pts. Values at or above pi/2 mean Transport may flip. A
// repeated point leaves its tangent undefined and counts as a full pi.
func MaxTurn(pts []v3.Vec) float64 {
	tangents := Tangents(pts)
	var max float64
	for i := 1; i < len(tangents); i++ {
		a := math.Acos(clamp(tangents[i-1].Dot(tangents[i]), -1, 1))
		if math.IsNaN(a) {
			return math.Pi
		}
		if a > max {
			max = a
		}
	}
	return max
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
