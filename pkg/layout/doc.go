// Package layout turns a resource graph tree into positioned render output.
//
// A layout pass has three stages:
//
//  1. [ToSolverNode] converts the [graph.Node] tree into a [SolverNode] tree:
//     every node gets a default size, dangling edges are dropped, and each
//     expanded group receives a directive profile.
//  2. A [Solver] assigns positions, sizes and edge routes.
//  3. [ToRenderGraph] flattens the solved tree into a [graph.Result].
//
// [Engine] sequences the stages. It is constructed once with the solver it
// should use and shared between callers:
//
//	var solver layout.Solver
//	if gv, err := graphviz.New(ctx); err != nil {
//	    logger.Warn("layout solver unavailable", "err", err)
//	} else {
//	    solver = gv
//	}
//	engine := layout.New(solver, layout.WithLogger(logger))
//	res, err := engine.Apply(ctx, root, 16.0/9.0)
//
// When no solver could be constructed the engine still works and returns an
// empty result for every graph.
//
// # Directive Profiles
//
// Groups with at least one surviving edge use the layered profile; groups
// without edges use rectangle packing driven by the container aspect ratio.
// Leaves carry a partition (see [PartitionLayer]) that biases their
// horizontal order. Collapsed groups carry no directives.
//
// # Coordinates
//
// Node positions in the result are relative to the parent node. Edge
// geometry is relative to the node owning the edge, and each edge carries a
// ParentOffset. By default the offset is the owner's position plus its
// parent's position; [WithOffsetMode] with [OffsetFullChain] sums the whole
// ancestor chain instead. [NewIndex] composes absolute rectangles for
// hit-testing and overlap checks.
package layout
