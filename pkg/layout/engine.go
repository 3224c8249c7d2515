package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/resourcemap/pkg/errors"
	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/observability"
)

// Engine runs layout passes against a single solver.
//
// An Engine is built once and shared. It holds no per-call state, so
// concurrent Apply calls are independent.
type Engine struct {
	solver     Solver
	logger     *log.Logger
	offsetMode OffsetMode
	hooks      observability.LayoutHooks
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOffsetMode selects how edge offsets are composed.
func WithOffsetMode(m OffsetMode) Option {
	return func(e *Engine) { e.offsetMode = m }
}

// WithHooks overrides the globally registered layout hooks.
func WithHooks(h observability.LayoutHooks) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = h
		}
	}
}

// New returns an engine backed by s. A nil solver is allowed: every layout
// then degrades to an empty result.
func New(s Solver, opts ...Option) *Engine {
	e := &Engine{
		solver: s,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HasSolver reports whether the engine can produce layouts.
func (e *Engine) HasSolver() bool { return e.solver != nil }

// OffsetMode returns the engine's edge offset mode.
func (e *Engine) OffsetMode() OffsetMode { return e.offsetMode }

func (e *Engine) layoutHooks() observability.LayoutHooks {
	if e.hooks != nil {
		return e.hooks
	}
	return observability.Layout()
}

// Apply lays out g for a container with the given aspect ratio.
//
// Without a solver it returns an empty result and a nil error. Solver
// failures are returned with code [errors.ErrCodeSolverFailed], or
// [errors.ErrCodeTimeout] when ctx ended first.
func (e *Engine) Apply(ctx context.Context, g *graph.Node, aspectRatio float64) (graph.Result, error) {
	if g == nil {
		return graph.EmptyResult(), errors.New(errors.ErrCodeInvalidGraph, "graph has no root node")
	}
	hooks := e.layoutHooks()
	input := ToSolverNode(g, aspectRatio)

	if e.solver == nil {
		e.logger.Debug("no layout solver available, returning empty layout", "root", g.ID)
		hooks.OnSolverUnavailable(ctx, g.ID)
		return graph.EmptyResult(), nil
	}

	nodeCount := graph.NodeCount(g)
	hooks.OnLayoutStart(ctx, g.ID, nodeCount)
	start := time.Now()

	solved, err := e.solver.Solve(ctx, input, SolveOptions{AspectRatio: aspectRatio})
	if err == nil && solved == nil {
		err = errors.New(errors.ErrCodeSolverFailed, "solver returned no tree")
	}
	if err != nil {
		switch {
		case ctx.Err() != nil:
			err = errors.Wrap(errors.ErrCodeTimeout, err, "layout %s abandoned", g.ID)
		case !errors.Is(err, errors.ErrCodeSolverFailed):
			err = errors.Wrap(errors.ErrCodeSolverFailed, err, "layout %s", g.ID)
		}
		hooks.OnLayoutComplete(ctx, g.ID, observability.LayoutStats{}, time.Since(start), err)
		return graph.Result{}, err
	}

	res := ToRenderGraph(solved, e.offsetMode)
	elapsed := time.Since(start)
	hooks.OnLayoutComplete(ctx, g.ID, observability.LayoutStats{Nodes: len(res.Nodes), Edges: len(res.Edges)}, elapsed, nil)
	e.logger.Debug("layout complete",
		"root", g.ID,
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"duration", elapsed)
	return res, nil
}
