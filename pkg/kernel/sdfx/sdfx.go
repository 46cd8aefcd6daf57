// Package sdfx bridges kernel geometry and the github.com/deadsy/sdfx
// distance-field library. It supplies analytic reference solids for the
// closed shapes, measures how far a tessellation strays from them and
// writes geometry out as STL.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/shape"
)

// defaultMeshCells controls marching cubes resolution for Polygonize.
const defaultMeshCells = 200

// ErrNoReference is returned for shapes without an analytic solid.
var ErrNoReference = errors.New("no reference solid")

// Reference returns the distance field whose zero set every vertex of the
// shape's tessellation lies on. sdfx builds cylinders and cones along z;
// they are turned onto the y axis to match the shape library.
func Reference(p shape.Params) (sdf.SDF3, error) {
	if p == nil {
		return nil, fmt.Errorf("sdfx: nil params: %w", ErrNoReference)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch s := p.(type) {
	case shape.Sphere:
		return sdf.Sphere3D(s.Radius)
	case shape.Octahedron:
		return sdf.Sphere3D(s.Radius)
	case shape.Icosahedron:
		return sdf.Sphere3D(s.Radius)
	case shape.Box:
		return sdf.Box3D(v3.Vec{X: s.Width, Y: s.Height, Z: s.Depth}, 0)
	case shape.Cylinder:
		return frustum(s.Height, s.RadiusBottom, s.RadiusTop)
	case shape.Cone:
		return frustum(s.Height, s.Radius, shape.ConeApexRadius)
	case shape.Prism:
		return frustum(s.Height, s.Radius, s.Radius)
	case shape.Pyramid:
		return frustum(s.Height, s.Radius, shape.ConeApexRadius)
	case shape.Torus:
		return torusSDF{major: s.CentralRadius * s.Scale, minor: s.TubeRadius * s.Scale}, nil
	default:
		return nil, fmt.Errorf("sdfx: %s: %w", p.Kind(), ErrNoReference)
	}
}

// frustum is a y-axis cylinder or cone with bottom radius r0 and top
// radius r1.
func frustum(height, r0, r1 float64) (sdf.SDF3, error) {
	var s sdf.SDF3
	var err error
	if r0 == r1 {
		s, err = sdf.Cylinder3D(height, r0, 0)
	} else {
		s, err = sdf.Cone3D(height, r0, r1, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx: frustum: %w", err)
	}
	// RotateX(-90°) carries +z onto +y.
	return sdf.Transform3D(s, sdf.RotateX(-math.Pi/2)), nil
}

// torusSDF is the torus in the xy-plane around z. sdfx has no torus
// primitive.
type torusSDF struct {
	major, minor float64
}

func (t torusSDF) Evaluate(p v3.Vec) float64 {
	q := math.Hypot(p.X, p.Y) - t.major
	return math.Hypot(q, p.Z) - t.minor
}

func (t torusSDF) BoundingBox() sdf.Box3 {
	r := t.major + t.minor
	return sdf.Box3{
		Min: v3.Vec{X: -r, Y: -r, Z: -t.minor},
		Max: v3.Vec{X: r, Y: r, Z: t.minor},
	}
}

// Deviation returns the largest absolute distance between a vertex of g
// and the surface of s. Zero means every vertex lies on the surface.
func Deviation(g *kernel.Geometry, s sdf.SDF3) float64 {
	var worst float64
	for i := 0; i < g.VertexCount(); i++ {
		d := math.Abs(s.Evaluate(g.Position(i)))
		if d > worst {
			worst = d
		}
	}
	return worst
}

// Check generates nothing; it looks up the reference for p and measures g
// against it. Shapes without a reference return ErrNoReference.
func Check(g *kernel.Geometry, p shape.Params) (float64, error) {
	s, err := Reference(p)
	if err != nil {
		return 0, err
	}
	return Deviation(g, s), nil
}

// Triangles converts triangle geometry into sdfx triangles. Line and point
// geometry contributes nothing.
func Triangles(geoms ...*kernel.Geometry) []*sdf.Triangle3 {
	var n int
	for _, g := range geoms {
		n += g.TriangleCount()
	}
	out := make([]*sdf.Triangle3, 0, n)
	for _, g := range geoms {
		for t := 0; t < g.TriangleCount(); t++ {
			tri := sdf.Triangle3(g.Triangle(t))
			out = append(out, &tri)
		}
	}
	return out
}

// SaveSTL writes every triangle of geoms into one binary STL file.
func SaveSTL(path string, geoms ...*kernel.Geometry) error {
	tris := Triangles(geoms...)
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: %s: no triangles to write", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	kernel.Logger().Info("wrote stl", "path", path, "triangles", len(tris))
	return nil
}

// Polygonize renders s with uniform marching cubes into 3D geometry with
// zero texture coordinates. cells <= 0 selects the default resolution.
func Polygonize(s sdf.SDF3, cells int) *kernel.Geometry {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	b := kernel.NewBuilder(kernel.Format3D, kernel.TopologyTriangles, 3*len(triangles))
	for _, tri := range triangles {
		b.AddTriangle(kernel.Vertex{P: tri[0]}, kernel.Vertex{P: tri[1]}, kernel.Vertex{P: tri[2]})
	}
	return b.Build("polygonized")
}
