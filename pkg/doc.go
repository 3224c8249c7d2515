// Package pkg provides the core libraries for resourcemap graph layout.
//
// # Overview
//
// resourcemap positions nested graphs of infrastructure resources (clusters
// containing namespaces containing workloads) and routes the edges between
// them. A pluggable solver does the geometry; the libraries here convert the
// input tree for it, flatten its answer into render-ready nodes and edges,
// and serve the result to a CLI, an HTTP API and a WebSocket stream.
//
// # Architecture
//
// The typical data flow:
//
//	graph.json (nested graph.Node tree)
//	         ↓
//	    [layout] ToSolverNode (directives, collapse, partitions)
//	         ↓
//	    [solver/graphviz] Solve (one Graphviz run per expanded group)
//	         ↓
//	    [layout] ToRenderGraph (parent-relative nodes, offset edges)
//	         ↓
//	    [pipeline] cache + [render] SVG/PNG/PDF/JSON
//
// When no solver is available the engine returns an empty result instead of
// an error, so callers always get a renderable value.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/resourcemap/pkg/graph"
//	    "github.com/matzehuels/resourcemap/pkg/layout"
//	    "github.com/matzehuels/resourcemap/pkg/solver/graphviz"
//	)
//
//	g, _ := graph.ReadGraphFile("cluster.json")
//	solver, _ := graphviz.New(ctx)
//	defer solver.Close()
//	res, err := layout.New(solver).Apply(ctx, g, 16.0/9.0)
//
// # Main Packages
//
// [graph] - The input tree (Node, Edge) and the flattened output (Result,
// RenderNode, RenderEdge) with JSON helpers and validation.
//
// [layout] - Conversion to solver input, the Solver interface, the Engine
// with its degraded mode, flattening, and an R-tree index over results.
//
// [solver/graphviz] - A Solver backed by Graphviz compiled to WebAssembly.
//
// [pipeline] - Layout and render with caching, shared by CLI and server.
//
// [cache] - Null, file, in-memory LRU, Redis and MongoDB caches.
//
// [render] - SVG drawing and rsvg-convert based PNG and PDF conversion.
//
// [server] - HTTP and WebSocket API.
//
// [config], [errors], [observability], [telemetry], [buildinfo] - The
// ambient stack: configuration, coded errors, hooks and tracing.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/layout
// [solver/graphviz]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/solver/graphviz
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/observability
// [telemetry]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/telemetry
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/resourcemap/pkg/buildinfo
package pkg
