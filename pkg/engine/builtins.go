package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/lathe/pkg/flat"
	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/shape"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene source before passing it to zygomys.
// It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: circle-curve -> circle_curve
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// All of them leave string literals untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps an unplaced shape, as returned by (sphere ...) and
// consumed by defshape, place and group.
type sexpShape struct {
	data graph.ShapeData
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s)", s.data.KindName())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpCurve wraps a curve description for tube and line.
type sexpCurve struct {
	spec shape.CurveSpec
}

func (c *sexpCurve) SexpString(ps *zygo.PrintState) string {
	preset := c.spec.Preset
	if preset == "" {
		preset = shape.CurvePolyline
	}
	return fmt.Sprintf("(curve %s)", preset)
}
func (c *sexpCurve) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Keyword at end with no value: treat as a true flag.
			result.kw[name] = &zygo.SexpBool{Val: true}
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_circle) and plain strings ("circle").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toScale accepts a vec3 or a single number for uniform scale.
func toScale(s zygo.Sexp) (graph.Vec3, error) {
	if f, err := toFloat64(s); err == nil {
		return graph.Vec3{X: f, Y: f, Z: f}, nil
	}
	return toVec3(s)
}

// toPoints collects vec3 values from args, flattening lists.
func toPoints(args []zygo.Sexp) ([]v3.Vec, error) {
	var pts []v3.Vec
	for _, a := range args {
		if v, ok := a.(*sexpVec3); ok {
			pts = append(pts, v.vec.V3())
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("expected vec3 or list of vec3: %w", err)
		}
		sub, err := toPoints(items)
		if err != nil {
			return nil, err
		}
		pts = append(pts, sub...)
	}
	return pts, nil
}

// toCurve extracts a CurveSpec from a sexpCurve, or builds a polyline from
// a list of vec3.
func toCurve(s zygo.Sexp) (shape.CurveSpec, error) {
	if c, ok := s.(*sexpCurve); ok {
		return c.spec, nil
	}
	pts, err := toPoints([]zygo.Sexp{s})
	if err != nil {
		return shape.CurveSpec{}, fmt.Errorf("expected curve: %w", err)
	}
	return shape.Polyline(pts), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toJSONValue converts an argument into a value encoding/json can write, so
// that keyword arguments decode into parameter structs through their json
// tags.
func toJSONValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpStr:
		return toKeywordString(v)
	case *sexpVec3:
		return v.vec.V3(), nil
	case *sexpCurve:
		return v.spec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("unsupported argument %s", s.SexpString(nil))
	}
	out := make([]any, len(items))
	for i, item := range items {
		if out[i], err = toJSONValue(item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// fieldName maps a kebab-case keyword to its snake_case json field.
func fieldName(kw string) string {
	return strings.ReplaceAll(kw, "-", "_")
}

// kwFields converts the keyword arguments into a json object.
func kwFields(pa kwArgs) (map[string]any, error) {
	fields := make(map[string]any, len(pa.kw))
	for _, name := range pa.order {
		v, err := toJSONValue(pa.kw[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		fields[fieldName(name)] = v
	}
	return fields, nil
}

// strictDecoder returns a decode function for fields that rejects
// unknown keywords.
func strictDecoder(fields map[string]any) (func(v any) error, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// flatBuiltins maps 2D constructor names (after kebab conversion) to kinds.
var flatBuiltins = map[string]flat.Kind{
	"flat_circle":    flat.KindCircle,
	"flat_polygon":   flat.KindPolygon,
	"flat_ring":      flat.KindRing,
	"flat_rectangle": flat.KindRectangle,
	"flat_triangle":  flat.KindTriangle,
}

// registerBuiltins installs all scene builtins into a zygomys environment.
// The builtins operate on sb, populating its graph during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sb *sceneBuilder) {
	// Every builtin first checks that the evaluation is still wanted.
	add := func(name string, fn zygo.ZlispUserFunction) {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if err := sb.interrupted(); err != nil {
				return zygo.SexpNull, err
			}
			return fn(env, name, args)
		})
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	add("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: graph.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 2 :width-segments 16), (tube curve :radius 0.1), ...
	// One constructor per 3D kind; keywords are the parameter fields.
	// -----------------------------------------------------------------------
	for _, k := range shape.Kinds {
		kind := k
		add(string(kind), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			p, err := buildShape(kind, args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
			}
			return &sexpShape{data: graph.ShapeData{Params: p}}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (flat-circle :radius 1 :segments 32), (flat-polygon :radius 1 :sides 6)
	// -----------------------------------------------------------------------
	for n, k := range flatBuiltins {
		kind := k
		add(n, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			spec, err := buildFlat(kind, args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &sexpShape{data: graph.ShapeData{Flat: spec}}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (circle-curve 1 :divisions 64)
	// -----------------------------------------------------------------------
	add("circle_curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("circle-curve requires a radius")
		}
		r, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle-curve: radius: %w", err)
		}
		return withDivisions("circle-curve", shape.CircleCurve(r), pa)
	})

	// -----------------------------------------------------------------------
	// (helix radius height revolutions :divisions 128)
	// -----------------------------------------------------------------------
	add("helix", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("helix requires radius, height and revolutions")
		}
		var c [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("helix: argument %d: %w", i+1, err)
			}
			c[i] = f
		}
		return withDivisions("helix", shape.HelixCurve(c[0], c[1], c[2]), pa)
	})

	// -----------------------------------------------------------------------
	// (bezier p0 p1 p2 p3 :divisions 100)
	// -----------------------------------------------------------------------
	add("bezier", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		ctrl, err := toPoints(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bezier: %w", err)
		}
		if len(ctrl) != 4 {
			return zygo.SexpNull, fmt.Errorf("bezier requires 4 control points, got %d", len(ctrl))
		}
		return withDivisions("bezier", shape.BezierCurve(ctrl), pa)
	})

	// -----------------------------------------------------------------------
	// (polyline (vec3 0 0 0) (vec3 1 0 0) ...)
	// -----------------------------------------------------------------------
	add("polyline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyline: %w", err)
		}
		if len(pts) < 2 {
			return zygo.SexpNull, fmt.Errorf("polyline requires at least 2 points, got %d", len(pts))
		}
		return &sexpCurve{spec: shape.Polyline(pts)}, nil
	})

	// -----------------------------------------------------------------------
	// (defshape "name" (sphere ...))
	// -----------------------------------------------------------------------
	add("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a name and a shape expression")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: name: %w", err)
		}
		body, ok := args[1].(*sexpShape)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defshape: expected shape expression, got %T", args[1])
		}
		if sb.g.Lookup(shapeName) != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %q is already defined", shapeName)
		}
		id := sb.addShape(shapeName, body.data)
		return &sexpNodeRef{id: id, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (shape "name")
	// -----------------------------------------------------------------------
	add("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		n := sb.g.Lookup(shapeName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", shapeName)
		}
		return &sexpNodeRef{id: n.ID, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (place (shape "ball") :at (vec3 0 1 0) :rotate (vec3 0 0 90) :scale 2)
	// -----------------------------------------------------------------------
	add("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires exactly one shape or node as first argument")
		}
		childID, err := sb.node(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		for _, kw := range pa.order {
			v := pa.kw[kw]
			switch kw {
			case "at":
				vec, err := toVec3(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
				}
				td.Translation = &vec
			case "rotate":
				vec, err := toVec3(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
				}
				td.Rotation = &vec
			case "scale":
				vec, err := toScale(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("place: scale: %w", err)
				}
				td.Scale = &vec
			default:
				return zygo.SexpNull, fmt.Errorf("place: unknown keyword :%s", kw)
			}
		}

		id := sb.addTransform(childID, td)
		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (group "name" (place ...) (shape "ring") (torus) ...)
	// -----------------------------------------------------------------------
	add("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("group requires a name argument")
		}
		groupName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
		}
		if sb.g.Lookup(groupName) != nil {
			return zygo.SexpNull, fmt.Errorf("group: %q is already defined", groupName)
		}

		var children []graph.NodeID
		for i := 1; i < len(args); i++ {
			id, err := sb.node(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("group: child %d: %w", i, err)
			}
			children = append(children, id)
		}

		id := sb.addGroup(groupName, children)
		return &sexpNodeRef{id: id, name: groupName}, nil
	})
}

// buildShape decodes the arguments of a 3D constructor over the kind's
// defaults and validates the result. Tube and line take their curve as the
// first positional argument; points takes vec3 positionals.
func buildShape(kind shape.Kind, args []zygo.Sexp) (shape.Params, error) {
	pa := parseArgs(args)
	fields, err := kwFields(pa)
	if err != nil {
		return nil, err
	}

	switch kind {
	case shape.KindTube, shape.KindLine:
		if len(pa.positional) > 1 {
			return nil, fmt.Errorf("expected a single curve argument, got %d", len(pa.positional))
		}
		if len(pa.positional) == 1 {
			c, err := toCurve(pa.positional[0])
			if err != nil {
				return nil, err
			}
			fields["curve"] = c
		}
	case shape.KindPoints:
		pts, err := toPoints(pa.positional)
		if err != nil {
			return nil, err
		}
		if len(pts) > 0 {
			fields["points"] = pts
		}
	default:
		if len(pa.positional) > 0 {
			return nil, fmt.Errorf("unexpected positional argument %s; use keywords", pa.positional[0].SexpString(nil))
		}
	}

	decode, err := strictDecoder(fields)
	if err != nil {
		return nil, err
	}
	p, err := shape.Decode(kind, decode)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// buildFlat decodes a 2D constructor. Polygons take :sides.
func buildFlat(kind flat.Kind, args []zygo.Sexp) (*flat.Spec, error) {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return nil, fmt.Errorf("unexpected positional argument %s; use keywords", pa.positional[0].SexpString(nil))
	}
	fields, err := kwFields(pa)
	if err != nil {
		return nil, err
	}
	if kind == flat.KindPolygon {
		if v, ok := fields["sides"]; ok {
			fields["segments"] = v
			delete(fields, "sides")
		}
	}
	fields["kind"] = kind

	decode, err := strictDecoder(fields)
	if err != nil {
		return nil, err
	}
	var spec flat.Spec
	if err := decode(&spec); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// withDivisions applies an optional :divisions keyword to a curve preset.
func withDivisions(ctx string, spec shape.CurveSpec, pa kwArgs) (zygo.Sexp, error) {
	for _, kw := range pa.order {
		if kw != "divisions" {
			return zygo.SexpNull, fmt.Errorf("%s: unknown keyword :%s", ctx, kw)
		}
		n, err := toInt(pa.kw[kw])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: divisions: %w", ctx, err)
		}
		if n < 1 {
			return zygo.SexpNull, fmt.Errorf("%s: divisions must be at least 1, got %d", ctx, n)
		}
		spec.Divisions = n
	}
	return &sexpCurve{spec: spec}, nil
}
