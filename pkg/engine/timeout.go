package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/meshbool/pkg/graph"
)

// DefaultTimeout bounds a single evaluation unless WithTimeout says
// otherwise.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned by an Evaluate call that finished after a
	// later call on the same engine had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the evaluation time limit. Zero or negative values keep
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Timeout returns the evaluation time limit.
func (e *Engine) Timeout() time.Duration { return e.timeout }

type evalResult struct {
	scene  *graph.Scene
	errors []EvalError
	err    error
}

// begin starts a new generation and returns it.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

// current reports whether gen is still the latest generation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// wait returns the outcome sent on ch for generation gen. A script that
// outlives the timeout keeps running in its goroutine; whatever it sends
// later lands in the buffered channel and is dropped.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*graph.Scene, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}
