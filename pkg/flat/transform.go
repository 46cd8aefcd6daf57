package flat

import (
	"github.com/chewxy/math32"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Transform is a 2D affine transform applied as translate * rotate * scale:
// points are scaled first, then rotated about the origin, then moved.
// Rotation is in radians.
type Transform struct {
	TX       float32 `json:"tx" yaml:"tx"`
	TY       float32 `json:"ty" yaml:"ty"`
	Rotation float32 `json:"rotation" yaml:"rotation"`
	SX       float32 `json:"sx" yaml:"sx"`
	SY       float32 `json:"sy" yaml:"sy"`
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{SX: 1, SY: 1}
}

// Translate returns t moved by (x, y).
func (t Transform) Translate(x, y float32) Transform {
	t.TX += x
	t.TY += y
	return t
}

// Rotate returns t with angle radians added to its rotation.
func (t Transform) Rotate(angle float32) Transform {
	t.Rotation += angle
	return t
}

// ScaleBy returns t with its scale multiplied by (sx, sy).
func (t Transform) ScaleBy(sx, sy float32) Transform {
	t.SX *= sx
	t.SY *= sy
	return t
}

// Matrix returns the combined matrix T * R * S.
func (t Transform) Matrix() sdf.M33 {
	tr := sdf.Translate2d(v2.Vec{X: float64(t.TX), Y: float64(t.TY)})
	rot := sdf.Rotate2d(float64(t.Rotation))
	sc := sdf.Scale2d(v2.Vec{X: float64(t.SX), Y: float64(t.SY)})
	return tr.Mul(rot).Mul(sc)
}

// Apply transforms a single point.
func (t Transform) Apply(x, y float32) (float32, float32) {
	p := t.Matrix().MulPosition(v2.Vec{X: float64(x), Y: float64(y)})
	return float32(p.X), float32(p.Y)
}

func (t Transform) validate(k Kind) error {
	for _, f := range []struct {
		name string
		v    float32
	}{{"transform.tx", t.TX}, {"transform.ty", t.TY}, {"transform.rotation", t.Rotation}, {"transform.sx", t.SX}, {"transform.sy", t.SY}} {
		if math32.IsNaN(f.v) || math32.IsInf(f.v, 0) {
			return &ParamError{Kind: k, Field: f.name, Value: f.v, Reason: "must be a finite number"}
		}
	}
	if t.SX == 0 || t.SY == 0 {
		return &ParamError{Kind: k, Field: "transform.scale", Value: [2]float32{t.SX, t.SY}, Reason: "must not be zero"}
	}
	return nil
}
