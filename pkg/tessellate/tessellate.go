// Package tessellate walks a scene graph and produces placed geometry. One
// mesh is produced per shape occurrence; a shape placed twice yields two
// meshes sharing one cached tessellation.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"github.com/deadsy/sdfx/sdf"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/lathe/pkg/flat"
	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/shape"
)

// Mesh is the world-space geometry of one shape occurrence.
type Mesh struct {
	Geometry *kernel.Geometry
	PartName string
	NodeID   graph.NodeID
}

// Tessellator generates scene meshes. The zero value generates without a
// cache on GOMAXPROCS workers.
type Tessellator struct {
	Cache   *shape.Cache // nil disables memoization
	Workers int          // <= 0 means runtime.GOMAXPROCS(0)
}

// Tessellate is a convenience wrapper for a single pass with the given cache.
func Tessellate(g *graph.SceneGraph, cache *shape.Cache) ([]*Mesh, error) {
	t := &Tessellator{Cache: cache}
	return t.Tessellate(context.Background(), g)
}

// job is one shape occurrence collected during the walk.
type job struct {
	node   *graph.Node
	world  sdf.M44
	mirror bool
}

// transformStack accumulates world matrices during graph traversal.
type transformStack struct {
	frames []frame
}

type frame struct {
	world  sdf.M44
	mirror bool
}

func newTransformStack() *transformStack {
	return &transformStack{frames: []frame{{world: sdf.Identity3d()}}}
}

func (ts *transformStack) top() frame {
	return ts.frames[len(ts.frames)-1]
}

// push composes td under the current frame, parent first.
func (ts *transformStack) push(td graph.TransformData) {
	cur := ts.top()
	ts.frames = append(ts.frames, frame{
		world:  cur.world.Mul(td.Matrix()),
		mirror: cur.mirror != td.Mirrors(),
	})
}

func (ts *transformStack) pop() {
	if len(ts.frames) > 1 {
		ts.frames = ts.frames[:len(ts.frames)-1]
	}
}

// Tessellate walks the graph depth-first from its roots and generates every
// shape occurrence. Generation runs in parallel; the result is in walk
// order regardless. The graph is never mutated.
func (t *Tessellator) Tessellate(ctx context.Context, g *graph.SceneGraph) ([]*Mesh, error) {
	if g == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := &walker{g: g, ts: newTransformStack(), visiting: make(map[graph.NodeID]bool)}
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		if err := w.walk(root); err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
	}

	workers := t.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	meshes := make([]*Mesh, len(w.jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, j := range w.jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := t.generate(j)
			if err != nil {
				return err
			}
			meshes[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	kernel.Logger().Debug("scene tessellated", "meshes", len(meshes), "workers", workers, "version", g.Version)
	return meshes, nil
}

// walker collects shape occurrences with their world transforms.
type walker struct {
	g        *graph.SceneGraph
	ts       *transformStack
	visiting map[graph.NodeID]bool
	jobs     []job
}

// walk recursively traverses a node and its children.
func (w *walker) walk(n *graph.Node) error {
	if w.visiting[n.ID] {
		return fmt.Errorf("cycle through node %s", n.Label())
	}
	w.visiting[n.ID] = true
	defer delete(w.visiting, n.ID)

	switch n.Kind {
	case graph.NodeShape:
		if _, ok := n.Data.(graph.ShapeData); !ok {
			return fmt.Errorf("shape node %s has unexpected data type %T", n.Label(), n.Data)
		}
		top := w.ts.top()
		w.jobs = append(w.jobs, job{node: n, world: top.world, mirror: top.mirror})
		return nil

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return fmt.Errorf("transform node %s has unexpected data type %T", n.Label(), n.Data)
		}
		w.ts.push(td)
		defer w.ts.pop()
		return w.children(n)

	case graph.NodeGroup:
		return w.children(n)

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func (w *walker) children(n *graph.Node) error {
	for _, child := range w.g.Children(n) {
		if err := w.walk(child); err != nil {
			return err
		}
	}
	return nil
}

// generate produces the placed geometry for one occurrence.
func (t *Tessellator) generate(j job) (*Mesh, error) {
	sd := j.node.Data.(graph.ShapeData)

	var geom *kernel.Geometry
	switch {
	case sd.Params != nil:
		var err error
		if t.Cache != nil {
			geom, err = t.Cache.Generate(sd.Params)
		} else {
			geom, err = shape.Generate(sd.Params)
		}
		if err != nil {
			return nil, fmt.Errorf("tessellate: generate failed for node %s: %w", j.node.Label(), err)
		}
	case sd.Flat != nil:
		s, err := flat.New(*sd.Flat)
		if err != nil {
			return nil, fmt.Errorf("tessellate: generate failed for node %s: %w", j.node.Label(), err)
		}
		geom = s.Geometry()
	default:
		return nil, fmt.Errorf("tessellate: shape node %s has no parameters", j.node.Label())
	}

	// Untransformed 2D shapes keep their [x, y, u, v] records; anything
	// placed in space becomes 3D in the z = 0 plane first.
	if j.world != sdf.Identity3d() {
		if geom.Format == kernel.Format2D {
			geom = kernel.Lift(geom)
		}
		geom = kernel.Transform(geom, j.world)
	}
	if j.mirror {
		geom = kernel.FlipWinding(geom)
	}

	return &Mesh{
		Geometry: geom.WithName(j.node.Label()),
		PartName: j.node.Label(),
		NodeID:   j.node.ID,
	}, nil
}
