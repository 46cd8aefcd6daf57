// Package curve turns a parametric function or an explicit point list into
// an ordered list of sample points.
package curve

import (
	"errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Func is a parametric curve evaluated at t.
type Func func(t float64) v3.Vec

// Source describes a curve to sample. Exactly one of Func and Points must
// be set. In function mode the curve is evaluated at Divisions+1 evenly
// spaced parameters in [TMin, TMax].
type Source struct {
	Func      Func
	TMin      float64
	TMax      float64
	Divisions int

	Points []v3.Vec
}

var (
	ErrNoSource        = errors.New("curve: neither a function nor points were given")
	ErrAmbiguousSource = errors.New("curve: both a function and points were given")
	ErrDivisions       = errors.New("curve: divisions must be at least 1")
)

// Sample returns the sample points of src. Points mode returns a copy of
// the list unchanged.
func Sample(src Source) ([]v3.Vec, error) {
	switch {
	case src.Func != nil && src.Points != nil:
		return nil, ErrAmbiguousSource
	case src.Points != nil:
		return append([]v3.Vec(nil), src.Points...), nil
	case src.Func == nil:
		return nil, ErrNoSource
	case src.Divisions < 1:
		return nil, ErrDivisions
	}

	d := src.Divisions
	pts := make([]v3.Vec, d+1)
	for i := 0; i <= d; i++ {
		t := src.TMin + (src.TMax-src.TMin)*float64(i)/float64(d)
		pts[i] = src.Func(t)
	}
	return pts, nil
}

// ArcLengths returns the cumulative distance along pts. The first entry is
// always 0 and the last is the total length.
func ArcLengths(pts []v3.Vec) []float64 {
	if len(pts) == 0 {
		return nil
	}
	out := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		out[i] = out[i-1] + pts[i].Sub(pts[i-1]).Length()
	}
	return out
}

// Length returns the total polyline length of pts.
func Length(pts []v3.Vec) float64 {
	s := ArcLengths(pts)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}
