package kernel

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitTriangle is a single CCW triangle in the xy-plane facing +z.
func unitTriangle() *Geometry {
	b := NewBuilder(Format3D, TopologyTriangles, 3)
	b.AddTriangle(
		Vertex{P: v3.Vec{X: 0, Y: 0, Z: 0}, U: 0, V: 0},
		Vertex{P: v3.Vec{X: 1, Y: 0, Z: 0}, U: 1, V: 0},
		Vertex{P: v3.Vec{X: 0, Y: 1, Z: 0}, U: 0, V: 1},
	)
	return b.Build("tri")
}

func TestFormatStride(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		stride int
		bytes  int
	}{
		{"3d", Format3D, 6, 24},
		{"2d", Format2D, 4, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Stride(); got != tt.stride {
				t.Errorf("Stride() = %d, want %d", got, tt.stride)
			}
			if got := tt.format.ByteStride(); got != tt.bytes {
				t.Errorf("ByteStride() = %d, want %d", got, tt.bytes)
			}
		})
	}
}

func TestGeometryCounts(t *testing.T) {
	tests := []struct {
		name      string
		format    Format
		topology  Topology
		records   int
		triangles int
	}{
		{"empty", Format3D, TopologyTriangles, 0, 0},
		{"two triangles 3d", Format3D, TopologyTriangles, 6, 2},
		{"one triangle 2d", Format2D, TopologyTriangles, 3, 1},
		{"line strip", Format3D, TopologyLineStrip, 5, 0},
		{"points", Format3D, TopologyPoints, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.format, tt.topology, tt.records)
			for i := 0; i < tt.records; i++ {
				b.Add(Vertex{P: v3.Vec{X: float64(i)}})
			}
			g := b.Build(tt.name)
			if got := g.VertexCount(); got != tt.records {
				t.Errorf("VertexCount() = %d, want %d", got, tt.records)
			}
			if got := g.IndexCount(); got != tt.records {
				t.Errorf("IndexCount() = %d, want %d", got, tt.records)
			}
			if got := g.TriangleCount(); got != tt.triangles {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.triangles)
			}
			if got := len(g.VertexData()); got != tt.records*tt.format.Stride() {
				t.Errorf("len(VertexData()) = %d, want %d", got, tt.records*tt.format.Stride())
			}
			if g.IsEmpty() != (tt.records == 0) {
				t.Errorf("IsEmpty() = %v, want %v", g.IsEmpty(), tt.records == 0)
			}
		})
	}
}

func TestBuilderRecordLayout(t *testing.T) {
	t.Run("3d", func(t *testing.T) {
		b := NewBuilder(Format3D, TopologyPoints, 1)
		b.Add(Vertex{P: v3.Vec{X: 1, Y: 2, Z: 3}, U: 0.25, V: 0.75})
		g := b.Build("p")
		assert.Equal(t, []float32{1, 2, 3, 1, 0.25, 0.75}, g.VertexData())
	})
	t.Run("2d drops z and w", func(t *testing.T) {
		b := NewBuilder(Format2D, TopologyPoints, 1)
		b.Add(Vertex{P: v3.Vec{X: 1, Y: 2, Z: 3}, U: 0.25, V: 0.75})
		g := b.Build("p")
		assert.Equal(t, []float32{1, 2, 0.25, 0.75}, g.VertexData())
	})
}

func TestBuilderAddQuad(t *testing.T) {
	a := Vertex{P: v3.Vec{X: 0, Y: 0}}
	b := Vertex{P: v3.Vec{X: 1, Y: 0}}
	c := Vertex{P: v3.Vec{X: 1, Y: 1}}
	d := Vertex{P: v3.Vec{X: 0, Y: 1}}
	bl := NewBuilder(Format3D, TopologyTriangles, 6)
	bl.AddQuad(a, b, c, d)
	g := bl.Build("quad")

	want := []v3.Vec{a.P, b.P, c.P, a.P, c.P, d.P}
	require.Equal(t, len(want), g.VertexCount())
	for i, p := range want {
		if got := g.Position(i); got != p {
			t.Errorf("Position(%d) = %v, want %v", i, got, p)
		}
	}
}

func TestIdentityIndices(t *testing.T) {
	g := unitTriangle()
	for i, idx := range g.IndexData() {
		if idx != uint32(i) {
			t.Fatalf("IndexData()[%d] = %d, want %d", i, idx, i)
		}
	}
	assert.Empty(t, IdentityIndices(0))
}

func TestGeometryBytes(t *testing.T) {
	g := unitTriangle()
	vb := g.VertexBytes()
	require.Len(t, vb, 3*24)
	// Second record starts at byte 24; its x is 1.0.
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, vb[24:28])

	ib := g.IndexBytes()
	require.Len(t, ib, 12)
	assert.Equal(t, []byte{2, 0, 0, 0}, ib[8:12])
}

func TestGeometryBounds(t *testing.T) {
	min, max := unitTriangle().Bounds()
	assert.Equal(t, v3.Vec{X: 0, Y: 0, Z: 0}, min)
	assert.Equal(t, v3.Vec{X: 1, Y: 1, Z: 0}, max)

	empty := NewBuilder(Format3D, TopologyTriangles, 0).Build("")
	min, max = empty.Bounds()
	assert.Equal(t, v3.Vec{}, min)
	assert.Equal(t, v3.Vec{}, max)
}

func TestGeometryUV(t *testing.T) {
	g := unitTriangle()
	u, v := g.UV(1)
	assert.Equal(t, 1.0, u)
	assert.Equal(t, 0.0, v)
}

func TestWithName(t *testing.T) {
	g := unitTriangle()
	n := g.WithName("renamed")
	assert.Equal(t, "tri", g.Name)
	assert.Equal(t, "renamed", n.Name)
	assert.Equal(t, g.VertexData(), n.VertexData())
}

func TestTransform(t *testing.T) {
	g := unitTriangle()
	moved := Transform(g, sdf.Translate3d(v3.Vec{X: 10, Y: 0, Z: -2}))

	assert.Equal(t, v3.Vec{X: 0, Y: 0, Z: 0}, g.Position(0), "source must not change")
	p := moved.Position(1)
	assert.InDelta(t, 11, p.X, 1e-6)
	assert.InDelta(t, -2, p.Z, 1e-6)

	u, v := moved.UV(2)
	assert.Equal(t, 0.0, u)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, float32(W), moved.VertexData()[3])
}

func TestTransform2D(t *testing.T) {
	b := NewBuilder(Format2D, TopologyPoints, 1)
	b.Add(Vertex{P: v3.Vec{X: 1, Y: 0}, U: 0.5, V: 0.5})
	g := Transform2D(b.Build("p"), sdf.Rotate2d(math.Pi/2))
	p := g.Position(0)
	assert.InDelta(t, 0, p.X, 1e-6)
	assert.InDelta(t, 1, p.Y, 1e-6)
}

func TestLift(t *testing.T) {
	b := NewBuilder(Format2D, TopologyTriangles, 3)
	b.AddTriangle(
		Vertex{P: v3.Vec{X: 0, Y: 0}, U: 0.5, V: 0.5},
		Vertex{P: v3.Vec{X: 1, Y: 0}, U: 1, V: 0.5},
		Vertex{P: v3.Vec{X: 0, Y: 1}, U: 0.5, V: 1},
	)
	g := Lift(b.Build("disc"))

	require.Equal(t, Format3D, g.Format)
	assert.Equal(t, "disc", g.Name)
	assert.Equal(t, 3, g.VertexCount())
	assert.Equal(t, []float32{1, 0, 0, W, 1, 0.5}, g.Vertices[6:12])
	assert.Equal(t, []uint32{0, 1, 2}, g.Indices)

	again := Lift(g)
	assert.Equal(t, g.Vertices, again.Vertices)
}

func TestEulerDegrees(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		in      v3.Vec
		want    v3.Vec
	}{
		{"identity", 0, 0, 0, v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 1, Y: 2, Z: 3}},
		{"z quarter turn", 0, 0, 90, v3.Vec{X: 1}, v3.Vec{Y: 1}},
		{"x quarter turn", 90, 0, 0, v3.Vec{Y: 1}, v3.Vec{Z: 1}},
		// X is applied first: y -> z, then Z leaves z alone.
		{"x then z", 90, 0, 90, v3.Vec{Y: 1}, v3.Vec{Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EulerDegrees(tt.x, tt.y, tt.z).MulPosition(tt.in)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}

func TestFlipWinding(t *testing.T) {
	g := unitTriangle()
	f := FlipWinding(g)

	assert.Equal(t, g.Position(0), f.Position(0))
	assert.Equal(t, g.Position(1), f.Position(2))
	assert.Equal(t, g.Position(2), f.Position(1))
	u, _ := f.UV(2)
	assert.Equal(t, 1.0, u, "uv travels with its vertex")

	n := FaceNormal(f.Triangle(0))
	assert.Less(t, n.Z, 0.0)
}

func TestCheckOrientation(t *testing.T) {
	below := Centre(v3.Vec{X: 0.25, Y: 0.25, Z: -1})
	above := Centre(v3.Vec{X: 0.25, Y: 0.25, Z: 1})

	o := CheckOrientation(unitTriangle(), below)
	assert.Equal(t, Orientation{Outward: 1}, o)
	assert.True(t, o.OK())

	o = CheckOrientation(unitTriangle(), above)
	assert.Equal(t, Orientation{Inward: 1}, o)
	assert.False(t, o.OK())

	b := NewBuilder(Format3D, TopologyTriangles, 3)
	p := Vertex{P: v3.Vec{X: 1, Y: 1, Z: 1}}
	b.AddTriangle(p, p, p)
	o = CheckOrientation(b.Build("flat"), below)
	assert.Equal(t, Orientation{Degenerate: 1}, o)
}

func TestBufferLayout(t *testing.T) {
	l := Format3D.BufferLayout()
	assert.Equal(t, uint64(24), l.ArrayStride)
	assert.Equal(t, gputypes.VertexStepModeVertex, l.StepMode)
	require.Len(t, l.Attributes, 2)
	assert.Equal(t, gputypes.VertexFormatFloat32x4, l.Attributes[0].Format)
	assert.Equal(t, uint64(16), l.Attributes[1].Offset)

	l = Format2D.BufferLayout()
	assert.Equal(t, uint64(16), l.ArrayStride)
	assert.Equal(t, gputypes.VertexFormatFloat32x2, l.Attributes[0].Format)
	assert.Equal(t, uint64(8), l.Attributes[1].Offset)
}

func TestPrimitiveState(t *testing.T) {
	tests := []struct {
		topology Topology
		want     gputypes.PrimitiveTopology
		cull     gputypes.CullMode
	}{
		{TopologyTriangles, gputypes.PrimitiveTopologyTriangleList, gputypes.CullModeBack},
		{TopologyLineStrip, gputypes.PrimitiveTopologyLineStrip, gputypes.CullModeNone},
		{TopologyPoints, gputypes.PrimitiveTopologyPointList, gputypes.CullModeNone},
	}
	for _, tt := range tests {
		t.Run(tt.topology.String(), func(t *testing.T) {
			s := (&Geometry{Topology: tt.topology}).PrimitiveState()
			assert.Equal(t, tt.want, s.Topology)
			assert.Equal(t, tt.cull, s.CullMode)
			assert.Equal(t, gputypes.FrontFaceCCW, s.FrontFace)
		})
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	require.NotNil(t, l)
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("generated", "shape", "sphere")
	assert.Contains(t, buf.String(), "shape=sphere")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
