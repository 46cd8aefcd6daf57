package curve

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrBezierControlPoints is returned by Bezier for anything other than
// four control points.
var ErrBezierControlPoints = errors.New("curve: cubic bezier needs exactly 4 control points")

// Circle is a circle of the given radius in the xy-plane, one full turn
// over t in [0, 1], starting on +x.
func Circle(radius float64) Func {
	return func(t float64) v3.Vec {
		a := t * 2 * math.Pi
		return v3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
}

// Helix winds around the y axis for the given number of revolutions over
// t in [0, 1]. It rises by height and is centred on y = 0.
func Helix(radius, height, revolutions float64) Func {
	return func(t float64) v3.Vec {
		a := t * 2 * math.Pi * revolutions
		return v3.Vec{
			X: radius * math.Cos(a),
			Y: height*t - height/2,
			Z: radius * math.Sin(a),
		}
	}
}

// Bezier returns the cubic bezier through ctrl[0] and ctrl[3] over t in
// [0, 1].
func Bezier(ctrl []v3.Vec) (Func, error) {
	if len(ctrl) != 4 {
		return nil, ErrBezierControlPoints
	}
	p0, p1, p2, p3 := ctrl[0], ctrl[1], ctrl[2], ctrl[3]
	return func(t float64) v3.Vec {
		s := 1 - t
		return p0.MulScalar(s * s * s).
			Add(p1.MulScalar(3 * s * s * t)).
			Add(p2.MulScalar(3 * s * t * t)).
			Add(p3.MulScalar(t * t * t))
	}, nil
}
