package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateNothingToBuild(t *testing.T) {
	sources := map[string]string{
		"empty":      "",
		"whitespace": "   \n\t  \n  ",
		"comments":   ";; a table\n// legs come later\n",
		"arithmetic": "(def legs 4)\n(* legs 2)",
	}
	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(source)
			require.NoError(t, err)
			require.Empty(t, evalErrs)
			require.NotNil(t, g)
			assert.Zero(t, g.NodeCount())
		})
	}
}

func TestEvaluateMultiLineScene(t *testing.T) {
	source := `; a lamp
(def h 3)
(defshape "shade"
  (cone :radius 1 :height 1))
(group "lamp"
  (place (shape "shade") :at (vec3 0 h 0))
  (cylinder :radius-top 0.1 :radius-bottom 0.1 :height h))
`
	g, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.Len(t, g.Roots, 1)
	assert.Equal(t, "lamp", g.Get(g.Roots[0]).Name)
}

func TestSyntaxErrorLines(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		line    int
		message string
	}{
		{
			name:    "unclosed defshape",
			source:  "(def r 2)\n(defshape \"ball\"\n  (sphere :radius r)\n(group \"scene\" (shape \"ball\"))\n",
			line:    2,
			message: "missing ')'",
		},
		{
			name:    "mismatched bracket inside defshape",
			source:  "; ball\n(defshape \"ball\"\n  (sphere :radius 2])",
			line:    3,
			message: "unexpected ']'",
		},
		{
			name:    "stray closer",
			source:  "(box)\n\n(sphere))",
			line:    3,
			message: "unexpected ')'",
		},
		{
			name:    "unterminated name",
			source:  "(sphere)\n(defshape \"ball (sphere))",
			line:    2,
			message: "unterminated string",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(tt.source)
			require.NoError(t, err)
			assert.Nil(t, g)
			require.Len(t, evalErrs, 1)
			assert.Equal(t, tt.line, evalErrs[0].Line)
			assert.Contains(t, evalErrs[0].Message, tt.message)
		})
	}
}

func TestBadKeywordLines(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		line    int
		message string
	}{
		{
			name:    "shape parameter",
			source:  "(defshape \"post\"\n  (cylinder\n    :height 2\n    :radius-topp 0.5))",
			line:    4,
			message: "radius_topp",
		},
		{
			name:    "place keyword",
			source:  "(def y 1)\n(place (box)\n  :at (vec3 0 y 0)\n  :spin 90)",
			line:    4,
			message: "unknown keyword :spin",
		},
		{
			name:    "curve keyword",
			source:  "(tube\n  (helix 1 2 3 :steps 8))",
			line:    2,
			message: "unknown keyword :steps",
		},
		{
			name:    "invalid value points at the form",
			source:  "(box)\n(defshape \"ball\"\n  (sphere :radius -1))",
			line:    2,
			message: "radius",
		},
		{
			name:    "unknown shape name",
			source:  "(defshape \"ball\" (sphere))\n\n(group \"g\" (shape \"cube\"))",
			line:    3,
			message: "cube",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(tt.source)
			require.NoError(t, err)
			assert.Nil(t, g)
			require.Len(t, evalErrs, 1)
			assert.Equal(t, tt.line, evalErrs[0].Line, evalErrs[0].Message)
			assert.Contains(t, evalErrs[0].Message, tt.message)
			assert.NotContains(t, evalErrs[0].Message, "Error calling")
		})
	}
}

// endlessPlacement never finishes on its own; every iteration calls
// builtins, which is where cancellation is noticed.
const endlessPlacement = `(defshape "post" (box :width 0.1 :height 1 :depth 0.1))
(for [(def i 0) true (def i (+ i 1))]
  (place (shape "post") :at (vec3 i 0 0)))`

func TestTimeoutInsidePlaceLoop(t *testing.T) {
	eng := &Engine{Timeout: 50 * time.Millisecond}

	start := time.Now()
	g, evalErrs, err := eng.Evaluate(endlessPlacement)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "50ms")
	assert.Nil(t, g)
	assert.Nil(t, evalErrs)
	assert.Less(t, time.Since(start), EvalTimeout)

	// The engine is usable again afterwards.
	g, evalErrs, err = eng.Evaluate(`(box)`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	assert.Equal(t, 1, g.NodeCount())
}

func TestEvaluateContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewEngine().EvaluateContext(ctx, `(sphere)`)
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, _, err = NewEngine().EvaluateContext(ctx, endlessPlacement)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateSuperseded(t *testing.T) {
	eng := NewEngine()

	first := make(chan error, 1)
	go func() {
		_, _, err := eng.Evaluate(endlessPlacement)
		first <- err
	}()
	require.Eventually(t, func() bool {
		eng.mu.Lock()
		defer eng.mu.Unlock()
		return eng.generation == 1
	}, time.Second, time.Millisecond)

	g, evalErrs, err := eng.Evaluate(`(sphere)`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	assert.Equal(t, uint64(2), g.Version)

	select {
	case err := <-first:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(EvalTimeout):
		t.Fatal("superseded evaluation kept running")
	}
}

func TestEvaluateVersionIncrements(t *testing.T) {
	eng := NewEngine()

	var last uint64
	for i := 0; i < 3; i++ {
		g, _, err := eng.Evaluate("(sphere)")
		require.NoError(t, err, "iteration %d", i)
		assert.Greater(t, g.Version, last, "iteration %d", i)
		last = g.Version
	}
}

func TestEvalErrorString(t *testing.T) {
	assert.Equal(t, "line 4: missing ')'", EvalError{Line: 4, Message: "missing ')'"}.Error())
	assert.Equal(t, "no location", EvalError{Message: "no location"}.Error())
}

func TestSplitForms(t *testing.T) {
	source := `; header
(def name "a (paren) in a string")

  'quoted
(group name
  // comment with )
  (box))
[1 2 3] "bare" done`

	forms, perr := splitForms(source)
	require.Nil(t, perr)

	var texts []string
	var lines []int
	for _, f := range forms {
		texts = append(texts, f.text)
		lines = append(lines, f.line)
	}
	assert.Equal(t, []string{
		`(def name "a (paren) in a string")`,
		`'quoted`,
		"(group name\n  // comment with )\n  (box))",
		`[1 2 3]`,
		`"bare"`,
		`done`,
	}, texts)
	assert.Equal(t, []int{2, 4, 5, 8, 8, 8}, lines)
	assert.Equal(t, 7, forms[2].lineOf(len(forms[2].text)-1))
}

func TestFormErrorMapping(t *testing.T) {
	f := form{text: "(place (box)\n  :at 1\n  :twist 2)", line: 10}

	tests := []struct {
		name string
		err  error
		want EvalError
	}{
		{
			name: "parser line is relative to the form",
			err:  errors.New("Error on line 2: unexpected token\n"),
			want: EvalError{Line: 11, Message: "unexpected token"},
		},
		{
			name: "call prefix dropped and keyword located",
			err:  errors.New("Error calling 'place': place: unknown keyword :twist"),
			want: EvalError{Line: 12, Message: "place: unknown keyword :twist"},
		},
		{
			name: "other errors point at the form",
			err:  errors.New("symbol `nope`\n  not found"),
			want: EvalError{Line: 10, Message: "symbol `nope` not found"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formError(f, tt.err))
		})
	}
}
