// Package engine turns scene descriptions into scene graphs. Lisp scenes
// run in a sandboxed zygomys environment; YAML manifests are decoded
// directly (see LoadManifest).
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

func (w EvalWarning) String() string {
	if w.NodeID.IsZero() {
		return w.Message
	}
	return fmt.Sprintf("node %s: %s", w.NodeID.Short(), w.Message)
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism. Starting an evaluation cancels
// the one before it.
type Engine struct {
	// Timeout bounds each evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelCauseFunc
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate is EvaluateContext with a background context.
func (e *Engine) Evaluate(source string) (*graph.SceneGraph, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext takes Lisp source code and produces a new SceneGraph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, cancellation, panic): returns nil + nil + error
//
// Cancellation is observed each time the scene calls a builtin, so a
// loop that keeps placing shapes stops promptly.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*graph.SceneGraph, []EvalError, error) {
	ctx, gen, release := e.begin(ctx)
	defer release()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := e.evaluate(ctx, source, gen)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()

	res := e.wait(ctx, ch)
	return res.graph, res.errors, res.err
}

// evaluate runs the scene one top-level form at a time in a fresh
// sandbox, so errors can be pinned to the form that raised them.
func (e *Engine) evaluate(ctx context.Context, source string, gen uint64) (*graph.SceneGraph, []EvalError, error) {
	forms, perr := splitForms(source)
	if perr != nil {
		return nil, []EvalError{*perr}, nil
	}
	sb := newSceneBuilder()
	sb.ctx = ctx
	if len(forms) == 0 {
		g := sb.finish()
		g.Version = gen
		return g, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, sb)

	var last zygo.Sexp = zygo.SexpNull
	for _, f := range forms {
		if err := e.interrupted(ctx); err != nil {
			return nil, nil, err
		}
		// The lexer only emits a trailing atom once it sees a delimiter.
		if err := env.LoadString(preprocessSource(f.text) + "\n"); err != nil {
			return nil, []EvalError{formError(f, err)}, nil
		}
		v, err := env.Run()
		if err != nil {
			if ierr := e.interrupted(ctx); ierr != nil {
				return nil, nil, ierr
			}
			return nil, []EvalError{formError(f, err)}, nil
		}
		last = v
	}
	// A scene that ends in a bare shape expression renders that shape.
	if s, ok := last.(*sexpShape); ok {
		sb.addShape("", s.data)
	}

	g := sb.finish()
	g.Version = gen
	kernel.Logger().Debug("scene evaluated", "forms", len(forms), "nodes", g.NodeCount(), "roots", len(g.Roots), "generation", gen)
	return g, nil, nil
}
