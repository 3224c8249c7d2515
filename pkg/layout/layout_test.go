package layout

import (
	"context"

	"github.com/matzehuels/resourcemap/pkg/graph"
)

// gridSolver places children left to right with a fixed gap and routes
// every edge as a straight line between the first and last child.
var gridSolver = SolverFunc(func(_ context.Context, root *SolverNode, _ SolveOptions) (*SolverNode, error) {
	solveGrid(root)
	return root, nil
})

func solveGrid(n *SolverNode) {
	const gap = 10
	x := 0.0
	for _, c := range n.Children {
		solveGrid(c)
		c.X, c.Y = x+gap, gap
		x += c.Width + gap
	}
	if len(n.Children) > 0 {
		n.Width = max(n.Width, x+gap)
	}
	for _, e := range n.Edges {
		e.Sections = []graph.Section{{
			StartPoint: graph.Point{X: 0, Y: 0},
			EndPoint:   graph.Point{X: n.Width, Y: n.Height},
		}}
	}
}

func leaf(id string, weight float64) *graph.Node {
	return &graph.Node{ID: id, Weight: weight}
}

func group(id string, children ...*graph.Node) *graph.Node {
	if children == nil {
		children = []*graph.Node{}
	}
	return &graph.Node{ID: id, Nodes: children}
}

func edge(id, src, tgt string) graph.Edge {
	return graph.Edge{ID: id, Source: src, Target: tgt}
}

// visibleNodes counts the nodes a renderer should see: every node below
// root, without descending into collapsed groups.
func visibleNodes(root *graph.Node) int {
	count := 0
	var walk func(n *graph.Node)
	walk = func(n *graph.Node) {
		for _, c := range n.Nodes {
			count++
			if !c.IsCollapsed() {
				walk(c)
			}
		}
	}
	walk(root)
	return count
}
