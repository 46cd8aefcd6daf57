package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/chazu/lathe/pkg/flat"
	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/shape"
)

// Manifest is the YAML form of a scene. Shapes are listed flat; groups
// collect earlier shapes and groups by name. Anything no group claims
// becomes a root.
//
//	shapes:
//	  - name: ball
//	    kind: sphere
//	    params: {radius: 2, width_segments: 16}
//	    at: [0, 1, 0]
//	  - name: disc
//	    flat: {kind: circle, radius: 1, segments: 32}
//	    rotate: [-90, 0, 0]
//	groups:
//	  - name: scene
//	    children: [ball, disc]
type Manifest struct {
	Shapes []ManifestShape `yaml:"shapes"`
	Groups []ManifestGroup `yaml:"groups"`
}

// ManifestShape is one shape entry. Exactly one of Kind and Flat is set.
// Params holds the kind's fields under their snake_case names and is
// decoded over the kind's defaults. Scale takes one value for uniform
// scale or three.
type ManifestShape struct {
	Name   string     `yaml:"name"`
	Kind   shape.Kind `yaml:"kind"`
	Params yaml.Node  `yaml:"params"`
	Flat   *flat.Spec `yaml:"flat"`
	At     []float64  `yaml:"at"`
	Rotate []float64  `yaml:"rotate"`
	Scale  []float64  `yaml:"scale"`
}

// ManifestGroup names a group and the entries it contains.
type ManifestGroup struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Children    []string `yaml:"children"`
}

// LoadManifest decodes a YAML manifest into a scene graph. Unknown
// top-level and entry fields are rejected.
func LoadManifest(data []byte) (*graph.SceneGraph, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	g, err := m.Build()
	if err != nil {
		return nil, err
	}
	kernel.Logger().Debug("manifest loaded", "shapes", len(m.Shapes), "groups", len(m.Groups), "roots", len(g.Roots))
	return g, nil
}

// Build converts the manifest into a scene graph.
func (m *Manifest) Build() (*graph.SceneGraph, error) {
	sb := newSceneBuilder()
	entries := make(map[string]graph.NodeID)

	for i, ms := range m.Shapes {
		label := ms.Name
		if label == "" {
			label = string(ms.Kind)
		}
		if ms.Name != "" {
			if _, dup := entries[ms.Name]; dup {
				return nil, fmt.Errorf("manifest: shapes[%d] (%s): name already used", i, label)
			}
		}
		id, err := ms.add(sb)
		if err != nil {
			return nil, fmt.Errorf("manifest: shapes[%d] (%s): %w", i, label, err)
		}
		if ms.Name != "" {
			entries[ms.Name] = id
		}
	}

	for i, mg := range m.Groups {
		if mg.Name == "" {
			return nil, fmt.Errorf("manifest: groups[%d]: name is required", i)
		}
		if _, dup := entries[mg.Name]; dup {
			return nil, fmt.Errorf("manifest: groups[%d] (%s): name already used", i, mg.Name)
		}
		children := make([]graph.NodeID, 0, len(mg.Children))
		for _, c := range mg.Children {
			id, ok := entries[c]
			if !ok {
				return nil, fmt.Errorf("manifest: groups[%d] (%s): unknown child %q", i, mg.Name, c)
			}
			children = append(children, id)
		}
		id := sb.addGroup(mg.Name, children)
		sb.g.Get(id).Data = graph.GroupData{Description: mg.Description}
		entries[mg.Name] = id
	}

	return sb.finish(), nil
}

// add builds the shape node and, when the entry is placed, the transform
// wrapping it. It returns the outermost node.
func (ms *ManifestShape) add(sb *sceneBuilder) (graph.NodeID, error) {
	data, err := ms.shapeData()
	if err != nil {
		return graph.ZeroID, err
	}
	td, placed, err := ms.transform()
	if err != nil {
		return graph.ZeroID, err
	}

	if !placed {
		return sb.addShape(ms.Name, data), nil
	}
	// The name stays on the shape so lookups find the geometry; groups
	// refer to the placed entry.
	id := sb.addShape(ms.Name, data)
	return sb.addTransform(id, td), nil
}

func (ms *ManifestShape) shapeData() (graph.ShapeData, error) {
	hasParams := ms.Params.Kind != 0
	switch {
	case ms.Kind != "" && ms.Flat != nil:
		return graph.ShapeData{}, errors.New("kind and flat are mutually exclusive")
	case ms.Flat != nil:
		if hasParams {
			return graph.ShapeData{}, errors.New("params do not apply to flat shapes")
		}
		spec := *ms.Flat
		if err := spec.Validate(); err != nil {
			return graph.ShapeData{}, err
		}
		return graph.ShapeData{Flat: &spec}, nil
	case ms.Kind == "":
		return graph.ShapeData{}, errors.New("kind or flat is required")
	}

	decode := func(any) error { return nil }
	if hasParams {
		decode = ms.Params.Decode
	}
	p, err := shape.Decode(ms.Kind, decode)
	if err != nil {
		return graph.ShapeData{}, err
	}
	if err := p.Validate(); err != nil {
		return graph.ShapeData{}, err
	}
	return graph.ShapeData{Params: p}, nil
}

func (ms *ManifestShape) transform() (graph.TransformData, bool, error) {
	var td graph.TransformData
	if ms.At != nil {
		v, err := vec3Field("at", ms.At, false)
		if err != nil {
			return td, false, err
		}
		td.Translation = &v
	}
	if ms.Rotate != nil {
		v, err := vec3Field("rotate", ms.Rotate, false)
		if err != nil {
			return td, false, err
		}
		td.Rotation = &v
	}
	if ms.Scale != nil {
		v, err := vec3Field("scale", ms.Scale, true)
		if err != nil {
			return td, false, err
		}
		td.Scale = &v
	}
	placed := td.Translation != nil || td.Rotation != nil || td.Scale != nil
	return td, placed, nil
}

// vec3Field reads a three-element list. uniform also accepts one element.
func vec3Field(name string, vals []float64, uniform bool) (graph.Vec3, error) {
	switch {
	case len(vals) == 3:
		return graph.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
	case uniform && len(vals) == 1:
		return graph.Vec3{X: vals[0], Y: vals[0], Z: vals[0]}, nil
	case uniform:
		return graph.Vec3{}, fmt.Errorf("%s needs 1 or 3 values, got %d", name, len(vals))
	default:
		return graph.Vec3{}, fmt.Errorf("%s needs 3 values, got %d", name, len(vals))
	}
}
