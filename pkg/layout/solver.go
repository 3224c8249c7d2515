package layout

import "context"

// SolveOptions carries solver-wide directives.
type SolveOptions struct {
	// AspectRatio is the container width divided by its height.
	AspectRatio float64
}

// Solver assigns positions, sizes and edge routes to a SolverNode tree.
//
// Solve returns a tree of the same shape with X, Y, Width and Height set on
// every node and Sections set on every edge. Implementations may mutate and
// return root. A Solver must be safe for concurrent use.
type Solver interface {
	Solve(ctx context.Context, root *SolverNode, opts SolveOptions) (*SolverNode, error)
}

// SolverFunc adapts a function to the [Solver] interface.
type SolverFunc func(ctx context.Context, root *SolverNode, opts SolveOptions) (*SolverNode, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, root *SolverNode, opts SolveOptions) (*SolverNode, error) {
	return f(ctx, root, opts)
}
