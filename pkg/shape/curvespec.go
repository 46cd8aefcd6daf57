package shape

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/curve"
)

// CurvePreset selects how a CurveSpec produces its points.
type CurvePreset string

const (
	CurvePolyline CurvePreset = "polyline"
	CurveCircle   CurvePreset = "circle"
	CurveHelix    CurvePreset = "helix"
	CurveBezier   CurvePreset = "bezier"
)

// CurveSpec describes the path of a tube or line. Func, when set, takes
// precedence over Preset; a spec with a Func is not cacheable because
// functions cannot be compared. An empty Preset means CurvePolyline.
type CurveSpec struct {
	Preset      CurvePreset `json:"preset,omitempty" yaml:"preset"`
	Radius      float64     `json:"radius,omitempty" yaml:"radius"`
	Height      float64     `json:"height,omitempty" yaml:"height"`
	Revolutions float64     `json:"revolutions,omitempty" yaml:"revolutions"`
	Control     []v3.Vec    `json:"control,omitempty" yaml:"control"`
	Points      []v3.Vec    `json:"points,omitempty" yaml:"points"`
	TMin        float64     `json:"t_min,omitempty" yaml:"t_min"`
	TMax        float64     `json:"t_max,omitempty" yaml:"t_max"`
	Divisions   int         `json:"divisions,omitempty" yaml:"divisions"`

	Func curve.Func `json:"-" yaml:"-"`
}

// CircleCurve is a circle in the xy-plane sampled 64 times.
func CircleCurve(radius float64) CurveSpec {
	return CurveSpec{Preset: CurveCircle, Radius: radius, Divisions: 64}
}

// HelixCurve is a helix around the y axis sampled 128 times.
func HelixCurve(radius, height, revolutions float64) CurveSpec {
	return CurveSpec{Preset: CurveHelix, Radius: radius, Height: height, Revolutions: revolutions, Divisions: 128}
}

// BezierCurve is a cubic bezier sampled 100 times.
func BezierCurve(control []v3.Vec) CurveSpec {
	return CurveSpec{Preset: CurveBezier, Control: control, Divisions: 100}
}

// Polyline uses pts as the curve samples.
func Polyline(pts []v3.Vec) CurveSpec {
	return CurveSpec{Preset: CurvePolyline, Points: pts}
}

// FuncCurve samples f at divisions+1 points in [tmin, tmax].
func FuncCurve(f curve.Func, tmin, tmax float64, divisions int) CurveSpec {
	return CurveSpec{Func: f, TMin: tmin, TMax: tmax, Divisions: divisions}
}

// Source converts c into a curve.Source. Presets are sampled over
// t in [0, 1].
func (c CurveSpec) Source() (curve.Source, error) {
	if c.Func != nil {
		return curve.Source{Func: c.Func, TMin: c.TMin, TMax: c.TMax, Divisions: c.Divisions}, nil
	}
	switch c.Preset {
	case CurveCircle:
		return curve.Source{Func: curve.Circle(c.Radius), TMin: 0, TMax: 1, Divisions: c.Divisions}, nil
	case CurveHelix:
		return curve.Source{Func: curve.Helix(c.Radius, c.Height, c.Revolutions), TMin: 0, TMax: 1, Divisions: c.Divisions}, nil
	case CurveBezier:
		f, err := curve.Bezier(c.Control)
		if err != nil {
			return curve.Source{}, err
		}
		return curve.Source{Func: f, TMin: 0, TMax: 1, Divisions: c.Divisions}, nil
	case CurvePolyline, "":
		return curve.Source{Points: c.Points}, nil
	default:
		return curve.Source{}, fmt.Errorf("unknown curve preset %q", c.Preset)
	}
}

// Sample returns the curve's sample points.
func (c CurveSpec) Sample() ([]v3.Vec, error) {
	src, err := c.Source()
	if err != nil {
		return nil, err
	}
	return curve.Sample(src)
}

func (c CurveSpec) cacheable() bool {
	return c.Func == nil
}

// minStep is the shortest distance allowed between consecutive samples.
// Shorter steps leave the tangent undefined.
const minStep = 1e-9

func (c CurveSpec) validate(k Kind) error {
	if err := c.validateFields(k); err != nil {
		return err
	}
	pts, err := c.Sample()
	if err != nil {
		return &ParamError{Kind: k, Field: "curve", Value: c.Preset, Reason: err.Error()}
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Sub(pts[i-1]).Length() < minStep {
			field := "curve"
			if c.Func == nil && (c.Preset == CurvePolyline || c.Preset == "") {
				field = "curve.points"
			}
			return &ParamError{Kind: k, Field: field, Value: i, Reason: "must not repeat consecutive points"}
		}
	}
	return nil
}

func (c CurveSpec) validateFields(k Kind) error {
	if c.Func != nil {
		return atLeast(k, "curve.divisions", c.Divisions, 1)
	}
	switch c.Preset {
	case CurveCircle:
		return firstErr(
			positive(k, "curve.radius", c.Radius),
			atLeast(k, "curve.divisions", c.Divisions, 1),
		)
	case CurveHelix:
		return firstErr(
			positive(k, "curve.radius", c.Radius),
			atLeast(k, "curve.divisions", c.Divisions, 1),
		)
	case CurveBezier:
		if len(c.Control) != 4 {
			return &ParamError{Kind: k, Field: "curve.control", Value: len(c.Control), Reason: "must hold exactly 4 points"}
		}
		return atLeast(k, "curve.divisions", c.Divisions, 1)
	case CurvePolyline, "":
		if len(c.Points) < 2 {
			return &ParamError{Kind: k, Field: "curve.points", Value: len(c.Points), Reason: "must hold at least 2 points"}
		}
		return nil
	default:
		return &ParamError{Kind: k, Field: "curve.preset", Value: c.Preset, Reason: "is not a known preset"}
	}
}
