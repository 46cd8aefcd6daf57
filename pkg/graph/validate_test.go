package graph

import (
	"errors"
	"math"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lathe/pkg/flat"
	"github.com/chazu/lathe/pkg/shape"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildValidScene creates a scene with a placed sphere, a torus and a 2D
// circle, all reachable from a group root.
func buildValidScene() *SceneGraph {
	g := New()

	ballID := NewNodeID("shape/ball")
	donutID := NewNodeID("shape/donut")
	discID := NewNodeID("shape/disc")
	placeID := NewNodeID("place/ball")
	groupID := NewNodeID("group/scene")

	g.AddNode(&Node{
		ID: ballID, Kind: NodeShape, Name: "ball",
		Data: ShapeData{Params: shape.DefaultSphere()},
	})
	g.AddNode(&Node{
		ID: donutID, Kind: NodeShape, Name: "donut",
		Data: ShapeData{Params: shape.DefaultTorus()},
	})
	g.AddNode(&Node{
		ID: discID, Kind: NodeShape, Name: "disc",
		Data: ShapeData{Flat: &flat.Spec{Kind: flat.KindCircle, Radius: 1, Segments: 16}},
	})
	g.AddNode(&Node{
		ID: placeID, Kind: NodeTransform,
		Children: []NodeID{ballID},
		Data:     TransformData{Translation: &Vec3{X: 3}},
	})
	g.AddNode(&Node{
		ID: groupID, Kind: NodeGroup, Name: "scene",
		Children: []NodeID{placeID, donutID, discID},
		Data:     GroupData{Description: "test scene"},
	})
	g.AddRoot(groupID)
	return g
}

// addRootShape adds a named shape node as a root.
func addRootShape(g *SceneGraph, name string, d ShapeData) NodeID {
	id := NewNodeID("shape/" + name)
	g.AddNode(&Node{ID: id, Kind: NodeShape, Name: name, Data: d})
	g.AddRoot(id)
	return id
}

// hasError returns true if errs contains at least one error-severity
// finding whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning returns true if errs contains at least one warning-severity
// finding whose message contains substr.
func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func resultHasWarning(r ValidationResult, substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Structural checks
// ---------------------------------------------------------------------------

func TestValidate_ValidGraph(t *testing.T) {
	for _, e := range Validate(buildValidScene()) {
		t.Errorf("unexpected validation error: %s", e)
	}
	r := ValidateAll(buildValidScene())
	if !r.OK() {
		t.Errorf("ValidateAll().OK() = false, errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	for _, e := range Validate(New()) {
		t.Errorf("unexpected validation error on empty graph: %s", e)
	}
}

func TestValidate_CycleDetection(t *testing.T) {
	g := New()
	aID := NewNodeID("a")
	bID := NewNodeID("b")
	cID := NewNodeID("c")

	// a -> b -> c -> a
	g.AddNode(&Node{ID: aID, Kind: NodeGroup, Name: "a", Children: []NodeID{bID}, Data: GroupData{}})
	g.AddNode(&Node{ID: bID, Kind: NodeGroup, Name: "b", Children: []NodeID{cID}, Data: GroupData{}})
	g.AddNode(&Node{ID: cID, Kind: NodeGroup, Name: "c", Children: []NodeID{aID}, Data: GroupData{}})
	g.AddRoot(aID)

	if !hasError(Validate(g), "cycle detected") {
		t.Error("expected cycle detection error")
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	g := New()
	groupID := NewNodeID("group")
	g.AddNode(&Node{ID: groupID, Kind: NodeGroup, Children: []NodeID{NewNodeID("ghost")}, Data: GroupData{}})
	g.AddRoot(groupID)

	if !hasError(Validate(g), "does not exist") {
		t.Error("expected dangling child reference error")
	}
}

func TestValidate_DuplicateName(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: NewNodeID("one"), Kind: NodeShape, Name: "twin", Data: ShapeData{Params: shape.DefaultBox()}})
	g.AddNode(&Node{ID: NewNodeID("two"), Kind: NodeShape, Name: "twin", Data: ShapeData{Params: shape.DefaultBox()}})
	g.AddRoot(NewNodeID("one"))
	g.AddRoot(NewNodeID("two"))

	if !hasError(Validate(g), `duplicate name "twin"`) {
		t.Error("expected duplicate name error")
	}
}

func TestValidate_OrphanNode(t *testing.T) {
	g := buildValidScene()
	g.AddNode(&Node{ID: NewNodeID("stray"), Kind: NodeShape, Name: "stray", Data: ShapeData{Params: shape.DefaultBox()}})

	errs := Validate(g)
	if !hasWarning(errs, `"stray" is not reachable`) {
		t.Error("expected orphan warning")
	}
	if hasError(errs, "stray") {
		t.Error("orphan should not be an error")
	}

	r := ValidateAll(g)
	if !r.OK() {
		t.Errorf("orphan should not block: %v", r.Errors)
	}
	if !resultHasWarning(r, "orphan") {
		t.Error("ValidateAll should carry the orphan warning")
	}
}

func TestValidate_NameIndexPointsToMissingNode(t *testing.T) {
	g := New()
	g.NameIndex["ghost"] = NewNodeID("ghost")
	if !hasError(Validate(g), `"ghost" references non-existent node`) {
		t.Error("expected name index error")
	}
}

func TestValidate_RootReferencesNonExistentNode(t *testing.T) {
	g := New()
	g.AddRoot(NewNodeID("nowhere"))
	if !hasError(Validate(g), "root reference") {
		t.Error("expected root reference error")
	}
}

func TestValidate_KindMismatch(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"shape with group data", &Node{Kind: NodeShape, Data: GroupData{}}, "want ShapeData"},
		{"shape with both payloads", &Node{Kind: NodeShape, Data: ShapeData{
			Params: shape.DefaultBox(),
			Flat:   &flat.Spec{Kind: flat.KindCircle, Radius: 1, Segments: 8},
		}}, "exactly one"},
		{"shape with no payload", &Node{Kind: NodeShape, Data: ShapeData{}}, "exactly one"},
		{"transform with shape data", &Node{Kind: NodeTransform, Data: ShapeData{}}, "want TransformData"},
		{"group with transform data", &Node{Kind: NodeGroup, Data: TransformData{}}, "want GroupData"},
		{"unknown kind", &Node{Kind: NodeKind(7), Data: GroupData{}}, "unknown node kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			tt.node.ID = NewNodeID(tt.name)
			g.AddNode(tt.node)
			g.AddRoot(tt.node.ID)
			if !hasError(Validate(g), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, Validate(g))
			}
		})
	}
}

func TestValidate_ChildCounts(t *testing.T) {
	g := New()
	a := addRootShape(g, "a", ShapeData{Params: shape.DefaultBox()})
	b := addRootShape(g, "b", ShapeData{Params: shape.DefaultBox()})

	placeID := NewNodeID("place/two")
	g.AddNode(&Node{ID: placeID, Kind: NodeTransform, Children: []NodeID{a, b}, Data: TransformData{}})
	g.AddRoot(placeID)

	leafID := NewNodeID("shape/parent")
	g.AddNode(&Node{ID: leafID, Kind: NodeShape, Children: []NodeID{a}, Data: ShapeData{Params: shape.DefaultBox()}})
	g.AddRoot(leafID)

	errs := Validate(g)
	if !hasError(errs, "transform node has 2 children, want 1") {
		t.Error("expected transform child count error")
	}
	if !hasError(errs, "shape node has 1 children, want none") {
		t.Error("expected shape child count error")
	}
}

// ---------------------------------------------------------------------------
// Geometric checks
// ---------------------------------------------------------------------------

func TestValidateAll_ShapeParamError(t *testing.T) {
	g := New()
	addRootShape(g, "flat-ball", ShapeData{Params: shape.Sphere{Radius: 0, WidthSegments: 8, HeightSegments: 4}})

	r := ValidateAll(g)
	if r.OK() {
		t.Fatal("expected a blocking error for radius 0")
	}
	e := r.Errors[0]
	if e.NodeID != NewNodeID("shape/flat-ball") {
		t.Errorf("error tagged with %s, want the sphere node", e.NodeID.Short())
	}
	if !errors.Is(e, shape.ErrInvalidParam) {
		t.Errorf("errors.Is(%v, shape.ErrInvalidParam) = false", e)
	}
	var pe *shape.ParamError
	if !errors.As(e, &pe) || pe.Field != "radius" {
		t.Errorf("errors.As ParamError field = %v, want radius", pe)
	}
	if !strings.Contains(e.Message, `"flat-ball"`) {
		t.Errorf("message %q should name the node", e.Message)
	}
}

func TestValidateAll_FlatParamError(t *testing.T) {
	g := New()
	addRootShape(g, "bad-ring", ShapeData{Flat: &flat.Spec{Kind: flat.KindRing, InnerRadius: 2, OuterRadius: 1, Segments: 8}})

	r := ValidateAll(g)
	if len(r.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", r.Errors)
	}
	if !errors.Is(r.Errors[0], flat.ErrInvalidParam) {
		t.Errorf("errors.Is(%v, flat.ErrInvalidParam) = false", r.Errors[0])
	}
}

func TestValidateAll_BadTransforms(t *testing.T) {
	tests := []struct {
		name string
		td   TransformData
		want string
	}{
		{"zero scale", TransformData{Scale: &Vec3{X: 1, Y: 0, Z: 1}}, "scale"},
		{"nan translation", TransformData{Translation: &Vec3{X: math.NaN()}}, "translation"},
		{"infinite rotation", TransformData{Rotation: &Vec3{Z: math.Inf(1)}}, "rotation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			child := NewNodeID("shape/child")
			g.AddNode(&Node{ID: child, Kind: NodeShape, Data: ShapeData{Params: shape.DefaultBox()}})
			id := NewNodeID("place")
			g.AddNode(&Node{ID: id, Kind: NodeTransform, Children: []NodeID{child}, Data: tt.td})
			g.AddRoot(id)

			r := ValidateAll(g)
			if !hasError(r.Errors, tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, r.Errors)
			}
		})
	}
}

func TestValidateAll_MirrorWarning(t *testing.T) {
	g := New()
	child := NewNodeID("shape/child")
	g.AddNode(&Node{ID: child, Kind: NodeShape, Data: ShapeData{Params: shape.DefaultBox()}})
	id := NewNodeID("place")
	g.AddNode(&Node{ID: id, Kind: NodeTransform, Name: "mirror", Children: []NodeID{child}, Data: TransformData{Scale: &Vec3{X: -1, Y: 1, Z: 1}}})
	g.AddRoot(id)

	r := ValidateAll(g)
	if !r.OK() {
		t.Fatalf("mirror should not block: %v", r.Errors)
	}
	if !resultHasWarning(r, `"mirror" mirrors`) {
		t.Errorf("expected mirror warning, got %v", r.Warnings)
	}
}

func TestValidateAll_TubeTurnWarning(t *testing.T) {
	g := New()
	hairpin := shape.Polyline([]v3.Vec{{}, {X: 1}, {X: 0, Y: 0.1}})
	addRootShape(g, "hairpin", ShapeData{Params: shape.Tube{Curve: hairpin, Radius: 0.05, RadialSegments: 6}})
	addRootShape(g, "hoop", ShapeData{Params: shape.Tube{Curve: shape.CircleCurve(1), Radius: 0.05, RadialSegments: 6}})

	r := ValidateAll(g)
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", r.Warnings)
	}
	if !strings.Contains(r.Warnings[0].Message, `tube "hairpin" turns`) {
		t.Errorf("warning = %q, want the hairpin tube", r.Warnings[0].Message)
	}
}

func TestValidateAll_EmptyGroupWarning(t *testing.T) {
	g := New()
	id := NewNodeID("group/empty")
	g.AddNode(&Node{ID: id, Kind: NodeGroup, Name: "empty", Data: GroupData{}})
	g.AddRoot(id)

	r := ValidateAll(g)
	if !resultHasWarning(r, `group "empty" is empty`) {
		t.Errorf("expected empty group warning, got %v", r.Warnings)
	}
}

func TestValidationError_String(t *testing.T) {
	id := NewNodeID("x")
	e := ValidationError{NodeID: id, Message: "boom", Severity: SeverityError}
	want := "[error] node " + id.Short() + ": boom"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	g := ValidationError{Message: "graph level", Severity: SeverityWarning}
	if g.Error() != "[warning] graph level" {
		t.Errorf("Error() = %q", g.Error())
	}
}
