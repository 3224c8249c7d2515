// Package graph provides the resource graph model and the render output types.
//
// This package defines the canonical wire format for resourcemap's graph data,
// used for JSON files, API requests and responses, and caching.
//
// # Architecture
//
// The package sits at both ends of the layout pipeline:
//
//   - [Node], [Edge]: the hierarchical input tree (groups, leaves, edges)
//   - [Result], [RenderNode], [RenderEdge]: the flattened, positioned output
//
// The layout engine in pkg/layout reads a [Node] tree and produces a [Result].
// It never mutates the input tree.
//
// # Input Model
//
// A [Node] is a group when its Nodes slice is non-nil (even when empty) and a
// leaf otherwise. Groups carry the edges among their descendants; an edge may
// connect nodes at any depth below the group that owns it:
//
//	{
//	  "id": "cluster",
//	  "nodes": [
//	    {"id": "ns/default", "nodes": [{"id": "pod-a", "weight": 10}, {"id": "svc-a"}]},
//	    {"id": "ns/kube-system", "collapsed": true, "nodes": [{"id": "coredns"}]}
//	  ],
//	  "edges": [{"id": "e1", "source": "svc-a", "target": "pod-a", "label": "selects"}]
//	}
//
// A collapsed group is laid out as a single opaque box; its children and edges
// are ignored. Weight biases the horizontal ordering of leaves.
//
// # Output Model
//
// [Result] follows the node/edge shape consumed by react-flow style renderers:
// node positions are relative to the parent node (ParentID), while edge
// geometry is relative to the node owning the edge and carries a ParentOffset
// that places it in a shared frame.
//
// # Serialization
//
//	root, _ := graph.ReadGraphFile("cluster.json")   // File → *Node
//	data, _ := graph.MarshalGraph(root)              // *Node → []byte
//	res, _ := graph.ReadResultFile("cluster.layout.json")
//	graph.WriteResultFile(res, "out.json")
//
// Decoding assigns deterministic identifiers to edges that arrive without one
// (see [EnsureEdgeIDs]).
package graph
