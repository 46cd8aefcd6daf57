package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/chazu/lathe/pkg/config"
	"github.com/chazu/lathe/pkg/engine"
	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/shape"
	"github.com/chazu/lathe/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs scenes through evaluation, validation and tessellation.
type App struct {
	engine *engine.Engine
	tess   *tessellate.Tessellator
	cfg    config.Config
}

// MeshData is the JSON-serializable mesh format handed to a renderer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Indices  []uint32  `json:"indices"`
	Format   string    `json:"format"`
	Topology string    `json:"topology"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
	Node    string `json:"node,omitempty"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`

	scene  *graph.SceneGraph
	placed []*tessellate.Mesh
}

// Geometries returns the placed geometry behind Meshes, in the same order.
func (r EvalResult) Geometries() []*kernel.Geometry {
	out := make([]*kernel.Geometry, len(r.placed))
	for i, m := range r.placed {
		out[i] = m.Geometry
	}
	return out
}

// NewApp creates a new App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App that tessellates with cfg's settings.
func NewAppWithConfig(cfg config.Config) *App {
	t := &tessellate.Tessellator{Workers: cfg.Tessellate.Workers}
	if cfg.Tessellate.Cache {
		t.Cache = shape.NewCache()
	}
	return &App{
		engine: engine.NewEngine(),
		tess:   t,
		cfg:    cfg,
	}
}

func newResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	return a.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx. Cancelling ctx stops the
// scene evaluation and any tessellation still in flight.
func (a *App) EvaluateContext(ctx context.Context, source string) EvalResult {
	result := newResult()

	// Step 1: Evaluate the Lisp source into a scene graph.
	g, evalErrs, err := a.engine.EvaluateContext(ctx, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		kernel.Logger().Error("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the result format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	if g.NodeCount() == 0 && hasCode(source) {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: "scene defines no shapes"})
	}
	return a.build(ctx, g, result)
}

// hasCode reports whether source holds anything besides whitespace and
// comments.
func hasCode(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

// EvaluateManifest is Evaluate for a YAML manifest.
func (a *App) EvaluateManifest(data []byte) EvalResult {
	return a.evaluateManifest(context.Background(), data)
}

func (a *App) evaluateManifest(ctx context.Context, data []byte) EvalResult {
	result := newResult()
	g, err := engine.LoadManifest(data)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	return a.build(ctx, g, result)
}

// EvaluateFile dispatches on the file extension: .yaml and .yml are
// manifests, anything else is Lisp.
func (a *App) EvaluateFile(path string, data []byte) EvalResult {
	return a.EvaluateFileContext(context.Background(), path, data)
}

// EvaluateFileContext is EvaluateFile bounded by ctx.
func (a *App) EvaluateFileContext(ctx context.Context, path string, data []byte) EvalResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return a.evaluateManifest(ctx, data)
	default:
		return a.EvaluateContext(ctx, string(data))
	}
}

// build validates and tessellates a scene graph into result.
func (a *App) build(ctx context.Context, g *graph.SceneGraph, result EvalResult) EvalResult {
	result.scene = g

	// Step 3: Validate. Errors stop here; warnings ride along.
	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message, Node: nodeLabel(g, w.NodeID)})
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Message, Node: nodeLabel(g, e.NodeID)})
		}
		return result
	}

	// Step 4: Tessellate the scene graph into placed geometry.
	meshes, err := a.tess.Tessellate(ctx, g)
	if err != nil {
		kernel.Logger().Error("tessellate error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	result.placed = meshes

	// Step 5: Convert to the serializable MeshData format.
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Geometry.VertexData(),
			Indices:  m.Geometry.IndexData(),
			Format:   m.Geometry.Format.String(),
			Topology: m.Geometry.Topology.String(),
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	kernel.Logger().Info("scene built",
		slog.Int("meshes", len(meshes)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Uint64("version", g.Version))
	return result
}

func nodeLabel(g *graph.SceneGraph, id graph.NodeID) string {
	if id.IsZero() {
		return ""
	}
	if n := g.Get(id); n != nil {
		return n.Label()
	}
	return id.Short()
}

// Err returns the first error of the result, or nil.
func (r EvalResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	e := r.Errors[0]
	switch {
	case e.Line > 0:
		return fmt.Errorf("line %d: %s", e.Line, e.Message)
	case e.Node != "":
		return fmt.Errorf("node %s: %s", e.Node, e.Message)
	}
	return fmt.Errorf("%s", e.Message)
}
