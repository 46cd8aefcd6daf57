// Package preview renders geometry to a still image for quick inspection.
// It is an orthographic z-buffered rasterizer with flat shading and
// back-face culling; it is not a substitute for a GPU pipeline.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/image/draw"

	"github.com/chazu/lathe/pkg/kernel"
)

// Format is an image encoding.
type Format string

const (
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
)

// ErrUnknownFormat is returned for an unsupported image format.
var ErrUnknownFormat = errors.New("unknown image format")

// ParseFormat accepts "webp" or "png", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatWebP, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("preview: %q: %w", s, ErrUnknownFormat)
}

// Options controls the camera and the output image. Zero fields take the
// values from DefaultOptions, except Yaw and Pitch, where zero looks
// straight down -z.
type Options struct {
	Size        int
	Supersample int
	Yaw         float64 // degrees about y
	Pitch       float64 // degrees about x, after yaw
	Background  color.NRGBA
	Color       color.NRGBA
	ShowBack    bool // draw faces pointing away
}

// DefaultOptions is a 512 pixel three-quarter view at 2x supersampling.
func DefaultOptions() Options {
	return Options{
		Size:        512,
		Supersample: 2,
		Yaw:         -30,
		Pitch:       25,
		Background:  color.NRGBA{R: 32, G: 34, B: 38, A: 255},
		Color:       color.NRGBA{R: 200, G: 170, B: 120, A: 255},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Size <= 0 {
		o.Size = d.Size
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	if o.Background.A == 0 {
		o.Background = d.Background
	}
	if o.Color.A == 0 {
		o.Color = d.Color
	}
	return o
}

// Light shading for flat faces.
const (
	ambient = 0.35
	diffuse = 0.65
	margin  = 0.9 // share of the frame the scene spans
)

var lightDir = v3.Vec{X: 0.4, Y: 0.6, Z: 1}.Normalize()

// frameBuffer holds the render target. Larger z is nearer the viewer.
type frameBuffer struct {
	img  *image.RGBA
	zbuf []float64
}

func newFrameBuffer(size int, bg color.NRGBA) *frameBuffer {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	zbuf := make([]float64, size*size)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &frameBuffer{img: img, zbuf: zbuf}
}

// plot writes c at (x, y) if z passes the depth test.
func (fb *frameBuffer) plot(x, y int, z float64, c color.RGBA) {
	size := fb.img.Rect.Dx()
	if x < 0 || y < 0 || x >= size || y >= size {
		return
	}
	i := y*size + x
	if z <= fb.zbuf[i] {
		return
	}
	fb.zbuf[i] = z
	fb.img.SetRGBA(x, y, c)
}

// camera maps world points to pixel coordinates and view depth.
type camera struct {
	view   sdf.M44
	centre v3.Vec
	scale  float64
	half   float64
}

func (c camera) project(p v3.Vec) v3.Vec {
	v := c.view.MulPosition(p).Sub(c.centre)
	return v3.Vec{X: c.half + v.X*c.scale, Y: c.half - v.Y*c.scale, Z: v.Z}
}

// fit frames every vertex of geoms in a size by size image.
func fit(geoms []*kernel.Geometry, view sdf.M44, size int) camera {
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := lo.Neg()
	for _, g := range geoms {
		for i := 0; i < g.VertexCount(); i++ {
			p := view.MulPosition(g.Position(i))
			lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
			hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
		}
	}
	c := camera{view: view, half: float64(size) / 2, scale: 1}
	if lo.X > hi.X {
		return c
	}
	c.centre = lo.Add(hi).MulScalar(0.5)
	c.centre.Z = 0
	if extent := math.Max(hi.X-lo.X, hi.Y-lo.Y); extent > 0 {
		c.scale = margin * float64(size) / extent
	}
	return c
}

// Render draws geoms into a Size by Size image. Triangle geometry is
// shaded; line strips and points are drawn unshaded. 2D geometry lies in
// the z = 0 plane. An empty scene renders the background.
func Render(geoms []*kernel.Geometry, opts Options) *image.RGBA {
	opts = opts.withDefaults()
	big := opts.Size * opts.Supersample

	view := sdf.RotateX(opts.Pitch * math.Pi / 180).Mul(sdf.RotateY(opts.Yaw * math.Pi / 180))
	lifted := make([]*kernel.Geometry, 0, len(geoms))
	for _, g := range geoms {
		if g == nil || g.IsEmpty() {
			continue
		}
		if g.Format == kernel.Format2D {
			g = kernel.Lift(g)
		}
		lifted = append(lifted, g)
	}

	cam := fit(lifted, view, big)
	fb := newFrameBuffer(big, opts.Background)
	var drawn int
	for _, g := range lifted {
		switch g.Topology {
		case kernel.TopologyTriangles:
			for t := 0; t < g.TriangleCount(); t++ {
				if drawTriangle(fb, cam, g.Triangle(t), opts) {
					drawn++
				}
			}
		case kernel.TopologyLineStrip:
			for i := 1; i < g.VertexCount(); i++ {
				drawSegment(fb, cam.project(g.Position(i-1)), cam.project(g.Position(i)), rgba(opts.Color, 1))
			}
		case kernel.TopologyPoints:
			for i := 0; i < g.VertexCount(); i++ {
				p := cam.project(g.Position(i))
				drawDot(fb, p, opts.Supersample, rgba(opts.Color, 1))
			}
		}
	}
	kernel.Logger().Debug("preview rendered", "geometries", len(lifted), "triangles", drawn, "size", opts.Size)

	if opts.Supersample == 1 {
		return fb.img
	}
	dst := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), fb.img, fb.img.Bounds(), draw.Src, nil)
	return dst
}

// drawTriangle rasterizes one world-space triangle. It reports false when
// the face was culled or degenerate.
func drawTriangle(fb *frameBuffer, cam camera, tri [3]v3.Vec, opts Options) bool {
	var viewTri [3]v3.Vec
	for i, p := range tri {
		viewTri[i] = cam.view.MulPosition(p)
	}
	n := kernel.FaceNormal(viewTri)
	l := n.Length()
	if l < 1e-12 {
		return false
	}
	n = n.DivScalar(l)
	// Counter-clockwise faces seen from +z face the viewer.
	if n.Z <= 0 {
		if !opts.ShowBack {
			return false
		}
		n = n.Neg()
	}
	shade := ambient + diffuse*math.Max(0, n.Dot(lightDir))
	c := rgba(opts.Color, shade)

	a, b, d := cam.project(tri[0]), cam.project(tri[1]), cam.project(tri[2])
	size := fb.img.Rect.Dx()
	minX := clampInt(int(math.Floor(math.Min(a.X, math.Min(b.X, d.X)))), 0, size-1)
	maxX := clampInt(int(math.Ceil(math.Max(a.X, math.Max(b.X, d.X)))), 0, size-1)
	minY := clampInt(int(math.Floor(math.Min(a.Y, math.Min(b.Y, d.Y)))), 0, size-1)
	maxY := clampInt(int(math.Ceil(math.Max(a.Y, math.Max(b.Y, d.Y)))), 0, size-1)

	det := (b.Y-d.Y)*(a.X-d.X) + (d.X-b.X)*(a.Y-d.Y)
	if math.Abs(det) < 1e-12 {
		return false
	}
	inv := 1 / det
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := ((b.Y-d.Y)*(px-d.X) + (d.X-b.X)*(py-d.Y)) * inv
			w1 := ((d.Y-a.Y)*(px-d.X) + (a.X-d.X)*(py-d.Y)) * inv
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			fb.plot(x, y, w0*a.Z+w1*b.Z+w2*d.Z, c)
		}
	}
	return true
}

// drawSegment steps along a projected segment one pixel at a time.
func drawSegment(fb *frameBuffer, a, b v3.Vec, c color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		fb.plot(int(a.X), int(a.Y), a.Z, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := a.Add(b.Sub(a).MulScalar(t))
		fb.plot(int(p.X), int(p.Y), p.Z, c)
	}
}

// drawDot plots a square of side r centred on p.
func drawDot(fb *frameBuffer, p v3.Vec, r int, c color.RGBA) {
	x0, y0 := int(p.X)-r/2, int(p.Y)-r/2
	for y := y0; y < y0+r; y++ {
		for x := x0; x < x0+r; x++ {
			fb.plot(x, y, p.Z, c)
		}
	}
}

func rgba(c color.NRGBA, shade float64) color.RGBA {
	ch := func(v uint8) uint8 {
		return uint8(math.Min(255, math.Round(float64(v)*shade)))
	}
	return color.RGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: 255}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Encode writes img as WebP (lossless) or PNG.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("preview: webp encode: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("preview: png encode: %w", err)
		}
	default:
		return fmt.Errorf("preview: %q: %w", f, ErrUnknownFormat)
	}
	return nil
}
