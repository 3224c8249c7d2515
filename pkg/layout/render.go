package layout

import (
	"github.com/matzehuels/resourcemap/pkg/graph"
)

// OffsetMode selects how an edge's ParentOffset is composed.
type OffsetMode int

const (
	// OffsetTwoLevel sums the owning node's position and its parent's.
	OffsetTwoLevel OffsetMode = iota
	// OffsetFullChain sums positions from the owning node up to, but
	// excluding, the root. It is exact at any depth.
	OffsetFullChain
)

// String returns the config name of the mode.
func (m OffsetMode) String() string {
	if m == OffsetFullChain {
		return "full"
	}
	return "two-level"
}

// ParseOffsetMode parses "two-level" or "full". Empty selects the default.
func ParseOffsetMode(s string) (OffsetMode, bool) {
	switch s {
	case "", "two-level":
		return OffsetTwoLevel, true
	case "full", "full-chain":
		return OffsetFullChain, true
	}
	return OffsetTwoLevel, false
}

// ToRenderGraph flattens a solved tree into render nodes and edges.
//
// The root is not emitted. Root edges come first with a zero offset, then
// every descendant in pre-order followed by its own edges. Node positions
// stay parent-relative.
func ToRenderGraph(root *SolverNode, mode OffsetMode) graph.Result {
	res := graph.EmptyResult()
	if root == nil {
		return res
	}

	pushEdges := func(n *SolverNode, offset graph.Point) {
		for _, e := range n.Edges {
			res.Edges = append(res.Edges, renderEdge(e, offset))
		}
	}

	// chain is the summed position of every emitted ancestor.
	var convert func(n, parent *SolverNode, chain graph.Point)
	convert = func(n, parent *SolverNode, chain graph.Point) {
		res.Nodes = append(res.Nodes, renderNode(n, parent))

		pos := graph.Point{X: n.X, Y: n.Y}
		offset := pos
		switch {
		case mode == OffsetFullChain:
			offset = pos.Add(chain)
		case parent != nil:
			offset = pos.Add(graph.Point{X: parent.X, Y: parent.Y})
		}
		pushEdges(n, offset)

		for _, c := range n.Children {
			convert(c, n, chain.Add(pos))
		}
	}

	pushEdges(root, graph.Point{})
	for _, c := range root.Children {
		convert(c, nil, graph.Point{})
	}
	return res
}

func renderNode(n, parent *SolverNode) graph.RenderNode {
	rn := graph.RenderNode{
		ID:         n.ID,
		Type:       n.Type,
		Position:   graph.Point{X: n.X, Y: n.Y},
		Width:      n.Width,
		Height:     n.Height,
		Style:      graph.Size{Width: n.Width, Height: n.Height},
		Data:       n.Data,
		Hidden:     false,
		Selectable: true,
		Draggable:  false,
	}
	if parent != nil {
		rn.ParentID = parent.ID
	}
	return rn
}

func renderEdge(e *SolverEdge, offset graph.Point) graph.RenderEdge {
	typ := e.Type
	if typ == "" {
		typ = graph.TypeCustomEdge
	}
	return graph.RenderEdge{
		ID:         e.ID,
		Source:     e.Source,
		Target:     e.Target,
		Type:       typ,
		Selectable: false,
		Focusable:  false,
		Hidden:     false,
		MarkerEnd:  graph.Marker{Type: graph.MarkerArrowClosed},
		Data: graph.EdgeData{
			Data:         e.Data,
			Sections:     e.Sections,
			Label:        e.Label,
			Labels:       e.Labels,
			ParentOffset: offset,
		},
	}
}
