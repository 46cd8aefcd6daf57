// Package surface tessellates a parametric surface F(u, v) sampled on a
// regular grid into a triangle soup.
package surface

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/kernel"
)

// Func maps a parameter pair to a point on the surface.
type Func func(u, v float64) v3.Vec

// Grid is the parameter domain and its resolution.
type Grid struct {
	U0, U1 float64
	NU     int
	V0, V1 float64
	NV     int
}

// Cells returns the number of grid cells.
func (g Grid) Cells() int {
	if g.NU <= 0 || g.NV <= 0 {
		return 0
	}
	return g.NU * g.NV
}

// VertexCount is the number of records Tessellate emits for g.
func (g Grid) VertexCount() int {
	return g.Cells() * 6
}

// Tessellate samples f on the (NU+1) x (NV+1) grid and emits two triangles
// per cell, (p00, p10, p11) and (p00, p11, p01), where p10 is one step
// along u. Texture coordinates are (i/NU, j/NV).
//
// The triangles are counter-clockwise seen from the side that dF/du x dF/dv
// points to. Making that the outside of the shape is up to f. Tessellate
// does not validate the grid; a non-positive resolution gives an empty
// geometry and a collapsed domain gives degenerate triangles.
func Tessellate(grid Grid, f Func) *kernel.Geometry {
	b := kernel.NewBuilder(kernel.Format3D, kernel.TopologyTriangles, grid.VertexCount())
	Append(b, grid, f)
	return b.Build("")
}

// Append is Tessellate writing into an existing builder, so that a shape
// can add caps or other pieces after the surface.
func Append(b *kernel.Builder, grid Grid, f Func) {
	if grid.Cells() == 0 {
		return
	}
	pts := sampleGrid(grid, f)
	for i := 0; i < grid.NU; i++ {
		for j := 0; j < grid.NV; j++ {
			p00 := pts[i][j]
			p10 := pts[i+1][j]
			p01 := pts[i][j+1]
			p11 := pts[i+1][j+1]
			b.AddQuad(p00, p10, p11, p01)
		}
	}
}

func sampleGrid(grid Grid, f Func) [][]kernel.Vertex {
	du := (grid.U1 - grid.U0) / float64(grid.NU)
	dv := (grid.V1 - grid.V0) / float64(grid.NV)
	pts := make([][]kernel.Vertex, grid.NU+1)
	for i := range pts {
		row := make([]kernel.Vertex, grid.NV+1)
		u := grid.U0 + float64(i)*du
		for j := range row {
			v := grid.V0 + float64(j)*dv
			row[j] = kernel.Vertex{
				P: f(u, v),
				U: float64(i) / float64(grid.NU),
				V: float64(j) / float64(grid.NV),
			}
		}
		pts[i] = row
	}
	return pts
}
