package layout

import (
	"github.com/matzehuels/resourcemap/pkg/graph"
)

// SolverNode is a sized, directive-annotated node handed to a [Solver].
// X and Y are filled in by the solver and are relative to the parent.
type SolverNode struct {
	ID         string
	Type       string
	Data       any
	X, Y       float64
	Width      float64
	Height     float64
	Directives Directives
	Children   []*SolverNode
	Edges      []*SolverEdge
}

// SolverEdge is an edge among descendants of the SolverNode that owns it.
// Sections and label positions are relative to the owning node.
type SolverEdge struct {
	ID       string
	Type     string
	Source   string
	Target   string
	Label    string
	Labels   []graph.Label
	Data     any
	Sections []graph.Section
}

// IsLeaf reports whether the node has no children.
func (n *SolverNode) IsLeaf() bool { return len(n.Children) == 0 }

type nodeKind int

const (
	kindLeaf nodeKind = iota
	kindGroup
	kindCollapsed
)

func classify(n *graph.Node) nodeKind {
	switch {
	case !n.IsGroup():
		return kindLeaf
	case n.Collapsed:
		return kindCollapsed
	default:
		return kindGroup
	}
}

// ToSolverNode converts a graph tree into solver input. The input is not
// modified and repeated calls produce equal trees.
//
// Collapsed groups become fixed-size boxes with nothing inside. Expanded
// groups keep only edges whose endpoints both lie in the group's subtree
// (the group itself included), and select
// the layered profile when any edge survives or rectangle packing
// otherwise. Leaves carry their partition.
func ToSolverNode(n *graph.Node, aspectRatio float64) *SolverNode {
	sn := &SolverNode{
		ID:     n.ID,
		Type:   graph.TypeObject,
		Data:   n.Data,
		Width:  graph.NodeWidth,
		Height: graph.NodeHeight,
	}

	switch classify(n) {
	case kindCollapsed:
		return sn

	case kindLeaf:
		sn.Directives = Directives{DirPartition: partitionDirective(n)}
		return sn
	}

	sn.Edges = convertEdges(n)
	if len(sn.Edges) > 0 {
		sn.Directives = LayeredDirectives(hasCollapsedDescendant(n))
	} else {
		sn.Directives = RectPackingDirectives(aspectRatio)
	}

	sn.Children = make([]*SolverNode, 0, len(n.Nodes))
	for _, c := range n.Nodes {
		sn.Children = append(sn.Children, ToSolverNode(c, aspectRatio))
	}
	return sn
}

// convertEdges keeps the edges of n whose endpoints are both n or one of its
// descendants. Dangling edges are dropped without error.
func convertEdges(n *graph.Node) []*SolverEdge {
	if len(n.Edges) == 0 {
		return []*SolverEdge{}
	}

	ids := graph.Descendants(n)
	ids[n.ID] = struct{}{}
	out := make([]*SolverEdge, 0, len(n.Edges))
	for _, e := range n.Edges {
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		se := &SolverEdge{
			ID:     e.ID,
			Type:   graph.TypeEdge,
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
			Data:   e.Data,
		}
		if e.Label != "" {
			se.Labels = []graph.Label{{Text: e.Label, Width: graph.LabelWidth, Height: graph.LabelHeight}}
		}
		out = append(out, se)
	}
	return out
}

func hasCollapsedDescendant(n *graph.Node) bool {
	for _, c := range n.Nodes {
		if c.IsCollapsed() || hasCollapsedDescendant(c) {
			return true
		}
	}
	return false
}

// Walk visits n and every node below it in pre-order.
func Walk(n *SolverNode, fn func(n, parent *SolverNode)) {
	var walk func(n, parent *SolverNode)
	walk = func(n, parent *SolverNode) {
		fn(n, parent)
		for _, c := range n.Children {
			walk(c, n)
		}
	}
	if n != nil {
		walk(n, nil)
	}
}
