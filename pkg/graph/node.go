package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed identifier: the SHA-256 of the node's
// path in the scene description.
type NodeID [32]byte

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID derives the ID for path.
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 hex digits, enough for log lines and errors.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:4])
}

func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodeShape     NodeKind = iota // generated geometry (sphere, tube, 2D circle)
	NodeTransform                 // placement of a single child (place)
	NodeGroup                     // logical grouping
)

func (k NodeKind) String() string {
	switch k {
	case NodeShape:
		return "shape"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// Label returns the node name, or the short ID for anonymous nodes.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
