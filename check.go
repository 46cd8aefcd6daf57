package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/chazu/lathe/pkg/shape"
)

// CheckReport is the outcome of checking one shape node in its own frame.
type CheckReport struct {
	Name        string
	Kind        shape.Kind
	Orientation *kernel.Orientation // nil when the kind has no interior
	Deviation   *float64            // nil when the kind has no reference solid
	Failed      bool
}

func (r CheckReport) String() string {
	s := fmt.Sprintf("%-16s %-12s", r.Name, r.Kind)
	if r.Orientation != nil {
		s += " " + r.Orientation.String()
	} else {
		s += " orientation=n/a"
	}
	if r.Deviation != nil {
		s += fmt.Sprintf(" deviation=%.3g", *r.Deviation)
	} else {
		s += " deviation=n/a"
	}
	if r.Failed {
		s += "  FAIL"
	}
	return s
}

// checkScene checks face orientation and distance from the analytic
// solid for every 3D shape node. 2D shapes are skipped.
func checkScene(g *graph.SceneGraph, cache *shape.Cache, tolerance float64) ([]CheckReport, error) {
	var reports []CheckReport
	for _, n := range g.Shapes() {
		sd, ok := n.Data.(graph.ShapeData)
		if !ok || sd.Params == nil {
			continue
		}
		geom, err := cache.Generate(sd.Params)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", n.Label(), err)
		}

		r := CheckReport{Name: n.Label(), Kind: sd.Params.Kind()}
		if interior, ok := shape.Interior(sd.Params); ok {
			o := kernel.CheckOrientation(geom, interior)
			r.Orientation = &o
			r.Failed = !o.OK()
		}
		d, err := sdfx.Check(geom, sd.Params)
		switch {
		case errors.Is(err, sdfx.ErrNoReference):
		case err != nil:
			return nil, fmt.Errorf("check %s: %w", n.Label(), err)
		default:
			r.Deviation = &d
			r.Failed = r.Failed || d > tolerance
		}
		if r.Failed {
			kernel.Logger().Warn("shape check failed", "node", r.Name, "kind", r.Kind)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// printReports writes one line per report and returns the failure count.
func printReports(w io.Writer, reports []CheckReport) int {
	var failed int
	for _, r := range reports {
		fmt.Fprintln(w, r)
		if r.Failed {
			failed++
		}
	}
	return failed
}

// Check runs checkScene on the scene behind result with the configured
// tolerance.
func (a *App) Check(result EvalResult) ([]CheckReport, error) {
	if result.scene == nil {
		return nil, errors.New("check: no scene")
	}
	cache := a.tess.Cache
	if cache == nil {
		cache = shape.NewCache()
	}
	return checkScene(result.scene, cache, a.cfg.Check.Tolerance)
}

// WriteReferences polygonizes the reference solid of every 3D shape in
// the scene behind result and saves each as <scene>-<shape>.ref.stl in
// dir, for comparing against the tessellation in a mesh viewer. Shapes
// without a reference solid are skipped. It returns the paths written.
func (a *App) WriteReferences(result EvalResult, dir, scene string) ([]string, error) {
	if result.scene == nil {
		return nil, errors.New("reference: no scene")
	}
	prefix := strings.TrimSuffix(filepath.Base(scene), filepath.Ext(scene))

	var paths []string
	used := make(map[string]int)
	for _, n := range result.scene.Shapes() {
		sd, ok := n.Data.(graph.ShapeData)
		if !ok || sd.Params == nil {
			continue
		}
		s, err := sdfx.Reference(sd.Params)
		if errors.Is(err, sdfx.ErrNoReference) {
			continue
		}
		if err != nil {
			return paths, fmt.Errorf("reference %s: %w", n.Label(), err)
		}

		name := fileName(n.Label())
		if used[name]++; used[name] > 1 {
			name = fmt.Sprintf("%s-%d", name, used[name])
		}
		path := filepath.Join(dir, prefix+"-"+name+".ref.stl")
		if err := sdfx.SaveSTL(path, sdfx.Polygonize(s, a.cfg.Check.ReferenceCells)); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// fileName keeps letters, digits, '-' and '_' and turns everything else
// into '_'.
func fileName(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, label)
}
