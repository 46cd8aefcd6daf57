package engine

import (
	"context"
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/lathe/pkg/graph"
)

// sceneBuilder accumulates nodes while a scene evaluates. Node IDs are
// derived from names and a per-evaluation counter, so the same source
// always yields the same IDs.
type sceneBuilder struct {
	ctx     context.Context
	g       *graph.SceneGraph
	order   []graph.NodeID
	adopted map[graph.NodeID]bool
	counter int
}

func newSceneBuilder() *sceneBuilder {
	return &sceneBuilder{
		ctx:     context.Background(),
		g:       graph.New(),
		adopted: make(map[graph.NodeID]bool),
	}
}

// interrupted returns the cause once the evaluation context has ended.
func (sb *sceneBuilder) interrupted() error {
	if sb.ctx.Err() != nil {
		return context.Cause(sb.ctx)
	}
	return nil
}

func (sb *sceneBuilder) next() int {
	sb.counter++
	return sb.counter
}

func (sb *sceneBuilder) add(n *graph.Node) graph.NodeID {
	sb.g.AddNode(n)
	sb.order = append(sb.order, n.ID)
	for _, c := range n.Children {
		sb.adopted[c] = true
	}
	return n.ID
}

// addShape adds a shape node. An empty name makes an anonymous shape.
func (sb *sceneBuilder) addShape(name string, data graph.ShapeData) graph.NodeID {
	path := "shape/" + name
	if name == "" {
		path = fmt.Sprintf("shape/~%s/%d", data.KindName(), sb.next())
	}
	return sb.add(&graph.Node{
		ID:   graph.NewNodeID(path),
		Kind: graph.NodeShape,
		Name: name,
		Data: data,
	})
}

func (sb *sceneBuilder) addTransform(child graph.NodeID, td graph.TransformData) graph.NodeID {
	label := child.Short()
	if c := sb.g.Get(child); c != nil {
		label = c.Label()
	}
	return sb.add(&graph.Node{
		ID:       graph.NewNodeID(fmt.Sprintf("place/%s/%d", label, sb.next())),
		Kind:     graph.NodeTransform,
		Children: []graph.NodeID{child},
		Data:     td,
	})
}

func (sb *sceneBuilder) addGroup(name string, children []graph.NodeID) graph.NodeID {
	return sb.add(&graph.Node{
		ID:       graph.NewNodeID("group/" + name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{},
	})
}

// node resolves a builtin argument to a node ID. Node references pass
// through; bare shape values become anonymous shape nodes.
func (sb *sceneBuilder) node(s zygo.Sexp) (graph.NodeID, error) {
	switch v := s.(type) {
	case *sexpNodeRef:
		return v.id, nil
	case *sexpShape:
		return sb.addShape("", v.data), nil
	}
	return graph.ZeroID, fmt.Errorf("expected shape or node reference, got %T (%s)", s, s.SexpString(nil))
}

// finish makes every node that no other node references a root, in
// creation order, and returns the graph.
func (sb *sceneBuilder) finish() *graph.SceneGraph {
	for _, id := range sb.order {
		if !sb.adopted[id] {
			sb.g.AddRoot(id)
		}
	}
	return sb.g
}
