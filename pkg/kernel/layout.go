package kernel

import "github.com/gogpu/gputypes"

// IndexFormat is the index element type of every Geometry.
const IndexFormat = gputypes.IndexFormatUint32

// Shader locations used by BufferLayout.
const (
	LocationPosition = 0
	LocationUV       = 1
)

// BufferLayout describes the record format to a render pipeline builder.
// 3D records expose position as float32x4 (xyzw); 2D records as float32x2.
// UV is float32x2 in both.
func (f Format) BufferLayout() gputypes.VertexBufferLayout {
	pos := gputypes.VertexFormatFloat32x4
	uvOffset := uint64(16)
	if f == Format2D {
		pos = gputypes.VertexFormatFloat32x2
		uvOffset = 8
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(f.ByteStride()),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: pos, Offset: 0, ShaderLocation: LocationPosition},
			{Format: gputypes.VertexFormatFloat32x2, Offset: uvOffset, ShaderLocation: LocationUV},
		},
	}
}

// PrimitiveState returns the primitive assembly for g. Triangles are
// counter-clockwise when seen from outside, so back faces are culled.
// Line and point lists are never culled.
func (g *Geometry) PrimitiveState() gputypes.PrimitiveState {
	switch g.Topology {
	case TopologyLineStrip:
		return gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyLineStrip,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		}
	case TopologyPoints:
		return gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyPointList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		}
	default:
		return gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		}
	}
}
