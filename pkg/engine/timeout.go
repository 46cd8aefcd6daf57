package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/lathe/pkg/graph"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is the cause of an evaluation that ran past its limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is the cause of an evaluation abandoned because a
	// newer one started on the same Engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries an evaluation outcome from the worker goroutine.
type evalResult struct {
	graph  *graph.SceneGraph
	errors []EvalError
	err    error
}

// begin opens a new generation. The previous evaluation, if it is still
// running, is cancelled with ErrSuperseded. The returned context also
// carries the engine timeout; release must be called when the caller is
// done with it.
func (e *Engine) begin(parent context.Context) (ctx context.Context, gen uint64, release func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel(ErrSuperseded)
	}
	e.generation++
	gen = e.generation

	ctx, cancel := context.WithCancelCause(parent)
	ctx, stop := context.WithTimeoutCause(ctx, e.timeout(), ErrTimeout)
	e.cancel = cancel

	return ctx, gen, func() {
		stop()
		cancel(nil)
		e.mu.Lock()
		if e.generation == gen {
			e.cancel = nil
		}
		e.mu.Unlock()
	}
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return EvalTimeout
}

// interrupted reports why ctx ended, or nil while it is live. A timeout
// names the limit that was hit.
func (e *Engine) interrupted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrTimeout) {
		return fmt.Errorf("%w after %s", ErrTimeout, e.timeout())
	}
	return cause
}

// wait blocks until the worker reports on ch or ctx ends. A worker that
// finishes after its context ended is ignored; the builtins it calls
// notice the cancellation and stop it at the next scene form.
func (e *Engine) wait(ctx context.Context, ch <-chan evalResult) evalResult {
	select {
	case res := <-ch:
		if err := e.interrupted(ctx); err != nil {
			return evalResult{err: err}
		}
		return res
	case <-ctx.Done():
		return evalResult{err: e.interrupted(ctx)}
	}
}
