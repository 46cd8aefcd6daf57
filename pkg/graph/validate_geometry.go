package graph

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/frame"
	"github.com/chazu/lathe/pkg/shape"
)

// ---------------------------------------------------------------------------
// Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs the checks that need to look inside node payloads.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateShapeParams(g)...)
	errs = append(errs, validateTransforms(g)...)

	warnings = append(warnings, validateTubeTurns(g)...)
	warnings = append(warnings, validateMirrors(g)...)
	warnings = append(warnings, validateEmptyGroups(g)...)
	return errs, warnings
}

// validateShapeParams reports the parameter error of every shape node,
// tagged with the node.
func validateShapeParams(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		d, ok := node.Data.(ShapeData)
		if !ok {
			continue
		}
		var err error
		switch {
		case d.Params != nil:
			err = d.Params.Validate()
		case d.Flat != nil:
			err = d.Flat.Validate()
		}
		if err != nil {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%q: %v", node.Label(), err),
				Severity: SeverityError,
				Err:      err,
			})
		}
	}
	return errs
}

// validateTransforms rejects zero or non-finite scale factors and
// non-finite translations and rotations.
func validateTransforms(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok {
			continue
		}
		check := func(field string, v *Vec3, zeroOK bool) {
			if v == nil {
				return
			}
			for _, c := range []float64{v.X, v.Y, v.Z} {
				if math.IsNaN(c) || math.IsInf(c, 0) || (!zeroOK && c == 0) {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("%s (%g, %g, %g) is not usable", field, v.X, v.Y, v.Z),
						Severity: SeverityError,
					})
					return
				}
			}
		}
		check("translation", td.Translation, true)
		check("rotation", td.Rotation, true)
		check("scale", td.Scale, false)
	}
	return errs
}

// validateTubeTurns warns when a tube's sampled curve turns by a right
// angle or more between samples, where the transported normal may flip.
func validateTubeTurns(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		d, ok := node.Data.(ShapeData)
		if !ok {
			continue
		}
		t, ok := d.Params.(shape.Tube)
		if !ok || t.Validate() != nil {
			continue
		}
		pts, err := t.Curve.Sample()
		if err != nil {
			continue
		}
		if turn := frame.MaxTurn(pts); turn >= shape.MaxSafeTurn {
			warnings = append(warnings, ValidationWarning{
				NodeID: node.ID,
				Message: fmt.Sprintf("tube %q turns %.1f degrees between samples; raise curve divisions",
					node.Label(), turn*180/math.Pi),
			})
		}
	}
	return warnings
}

// validateMirrors notes transforms that mirror their subtree. Tessellation
// flips winding for them, so this is informational.
func validateMirrors(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		if td, ok := node.Data.(TransformData); ok && td.Mirrors() {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("transform %q mirrors its child; winding will be flipped", node.Label()),
			})
		}
	}
	return warnings
}

func validateEmptyGroups(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Nodes {
		if node.Kind == NodeGroup && len(node.Children) == 0 {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("group %q is empty", node.Label()),
			})
		}
	}
	return warnings
}
