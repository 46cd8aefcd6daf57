package graph

import (
	"encoding/json"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/flat"
	"github.com/chazu/lathe/pkg/shape"
)

func TestNewSceneGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("shape/ball")
	g.AddNode(&Node{
		ID:   id,
		Kind: NodeShape,
		Name: "ball",
		Data: ShapeData{Params: shape.DefaultSphere()},
	})
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}
	found := g.Lookup("ball")
	if found == nil {
		t.Fatal("Lookup(ball) returned nil")
	}
	if found.ID != id {
		t.Errorf("lookup returned wrong node")
	}
	if g.MustLookup("ball").ID != id {
		t.Errorf("MustLookup returned wrong node")
	}
	if g.Get(id) != found {
		t.Errorf("Get returned a different node")
	}
	if g.Lookup("missing") != nil {
		t.Errorf("Lookup(missing) should be nil")
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustLookup should panic for an unknown name")
		}
	}()
	New().MustLookup("nothing")
}

func TestShapesOrdered(t *testing.T) {
	g := New()
	for _, name := range []string{"c", "a", "b"} {
		g.AddNode(&Node{ID: NewNodeID("shape/" + name), Kind: NodeShape, Name: name, Data: ShapeData{Params: shape.DefaultBox()}})
	}
	g.AddNode(&Node{ID: NewNodeID("group/all"), Kind: NodeGroup, Name: "all", Data: GroupData{}})

	shapes := g.Shapes()
	if len(shapes) != 3 {
		t.Fatalf("Shapes() = %d nodes, want 3", len(shapes))
	}
	for i, want := range []string{"a", "b", "c"} {
		if shapes[i].Name != want {
			t.Errorf("Shapes()[%d] = %q, want %q", i, shapes[i].Name, want)
		}
	}
}

func TestChildren(t *testing.T) {
	g := New()
	a := NewNodeID("a")
	b := NewNodeID("b")
	missing := NewNodeID("missing")
	g.AddNode(&Node{ID: a, Kind: NodeShape, Data: ShapeData{Params: shape.DefaultBox()}})
	parent := &Node{ID: b, Kind: NodeGroup, Children: []NodeID{a, missing}, Data: GroupData{}}
	g.AddNode(parent)

	children := g.Children(parent)
	if len(children) != 1 || children[0].ID != a {
		t.Errorf("Children() = %v, want only a", children)
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("shape/ball")
	b := NewNodeID("shape/ball")
	c := NewNodeID("shape/cube")
	if a != b {
		t.Errorf("same path gave different IDs")
	}
	if a == c {
		t.Errorf("different paths gave the same ID")
	}
	if len(a.String()) != 64 {
		t.Errorf("String() length = %d, want 64", len(a.String()))
	}
	if len(a.Short()) != 8 || a.String()[:8] != a.Short() {
		t.Errorf("Short() = %q, want prefix of %q", a.Short(), a.String())
	}
}

func TestNodeIDZero(t *testing.T) {
	if !ZeroID.IsZero() {
		t.Error("ZeroID should be zero")
	}
	if NewNodeID("").IsZero() {
		t.Error("hash of empty path should not be zero")
	}
}

func TestNodeLabel(t *testing.T) {
	id := NewNodeID("x")
	if got := (&Node{ID: id, Name: "named"}).Label(); got != "named" {
		t.Errorf("Label() = %q, want %q", got, "named")
	}
	if got := (&Node{ID: id}).Label(); got != id.Short() {
		t.Errorf("Label() = %q, want %q", got, id.Short())
	}
}

func TestShapeDataKindName(t *testing.T) {
	tests := []struct {
		data ShapeData
		want string
	}{
		{ShapeData{Params: shape.DefaultTorus()}, "torus"},
		{ShapeData{Flat: &flat.Spec{Kind: flat.KindCircle}}, "flat/circle"},
		{ShapeData{}, "empty"},
	}
	for _, tt := range tests {
		if got := tt.data.KindName(); got != tt.want {
			t.Errorf("KindName() = %q, want %q", got, tt.want)
		}
	}
}

func TestTransformMatrix(t *testing.T) {
	tests := []struct {
		name string
		td   TransformData
		in   v3.Vec
		want v3.Vec
	}{
		{"identity", TransformData{}, v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 1, Y: 2, Z: 3}},
		{"translate", TransformData{Translation: &Vec3{X: 10}}, v3.Vec{X: 1}, v3.Vec{X: 11}},
		{"rotate z", TransformData{Rotation: &Vec3{Z: 90}}, v3.Vec{X: 1}, v3.Vec{Y: 1}},
		{"scale", TransformData{Scale: &Vec3{X: 2, Y: 3, Z: 4}}, v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{X: 2, Y: 3, Z: 4}},
		// Scale first, then rotate, then translate.
		{"composed", TransformData{
			Translation: &Vec3{Y: 5},
			Rotation:    &Vec3{Z: 90},
			Scale:       &Vec3{X: 2, Y: 1, Z: 1},
		}, v3.Vec{X: 1}, v3.Vec{Y: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.td.Matrix().MulPosition(tt.in)
			if got.Sub(tt.want).Length() > 1e-9 {
				t.Errorf("Matrix().MulPosition(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformMirrors(t *testing.T) {
	tests := []struct {
		scale *Vec3
		want  bool
	}{
		{nil, false},
		{&Vec3{X: 1, Y: 1, Z: 1}, false},
		{&Vec3{X: -1, Y: 1, Z: 1}, true},
		{&Vec3{X: -1, Y: -1, Z: 1}, false},
		{&Vec3{X: -1, Y: -1, Z: -1}, true},
	}
	for _, tt := range tests {
		if got := (TransformData{Scale: tt.scale}).Mirrors(); got != tt.want {
			t.Errorf("Mirrors(%v) = %v, want %v", tt.scale, got, tt.want)
		}
	}
}

func TestNodeJSON(t *testing.T) {
	n := &Node{
		ID:   NewNodeID("shape/ball"),
		Kind: NodeShape,
		Name: "ball",
		Data: ShapeData{Params: shape.Sphere{Radius: 2, WidthSegments: 8, HeightSegments: 4}},
	}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out["kind"] != "shape" {
		t.Errorf("kind = %v, want shape", out["kind"])
	}
	if out["id"] != n.ID.String() {
		t.Errorf("id = %v, want %s", out["id"], n.ID)
	}
	params := out["data"].(map[string]any)["params"].(map[string]any)
	if params["radius"] != 2.0 {
		t.Errorf("params.radius = %v, want 2", params["radius"])
	}
}

func TestStringers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{NodeShape.String(), "shape"},
		{NodeTransform.String(), "transform"},
		{NodeGroup.String(), "group"},
		{NodeKind(99).String(), "unknown"},
		{SeverityError.String(), "error"},
		{SeverityWarning.String(), "warning"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
