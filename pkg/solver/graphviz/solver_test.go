package graphviz

import (
	"context"
	"testing"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/layout"
)

func newSolver(t *testing.T) *Solver {
	t.Helper()
	s, err := New(context.Background())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

const tolerance = 1.0

func assertInside(t *testing.T, parent *layout.SolverNode) {
	t.Helper()
	for _, c := range parent.Children {
		if c.X < -tolerance || c.Y < -tolerance ||
			c.X+c.Width > parent.Width+tolerance || c.Y+c.Height > parent.Height+tolerance {
			t.Errorf("%s (%.1f,%.1f %.1fx%.1f) escapes %s (%.1fx%.1f)",
				c.ID, c.X, c.Y, c.Width, c.Height, parent.ID, parent.Width, parent.Height)
		}
		assertInside(t, c)
	}
}

func TestSolveLayered(t *testing.T) {
	s := newSolver(t)
	sn := tree(layeredGroup())

	solved, err := s.Solve(context.Background(), sn, layout.SolveOptions{AspectRatio: 16.0 / 9.0})
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if solved.X != 0 || solved.Y != 0 {
		t.Errorf("root at (%v,%v), want origin", solved.X, solved.Y)
	}
	if solved.Width < graph.NodeWidth || solved.Height < graph.NodeHeight {
		t.Errorf("root size %vx%v below minimum", solved.Width, solved.Height)
	}
	assertInside(t, solved)

	ns := solved.Children[2]
	if ns.Width < graph.NodeWidth+48 || ns.Height < 2*graph.NodeHeight+72 {
		t.Errorf("ns size %vx%v too small for two stacked children", ns.Width, ns.Height)
	}

	byID := map[string]*layout.SolverEdge{}
	for _, e := range solved.Edges {
		byID[e.ID] = e
	}
	if len(byID["e1"].Sections) != 1 {
		t.Errorf("e1 sections = %d, want 1", len(byID["e1"].Sections))
	}
	if len(byID["e2"].Sections) != 1 {
		t.Errorf("e2 sections = %d, want 1", len(byID["e2"].Sections))
	}
	if byID["e3"].Sections != nil {
		t.Error("edge inside a single child should have no sections")
	}
	lbl := byID["e1"].Labels[0]
	if lbl.Width != graph.LabelWidth || lbl.X < -tolerance || lbl.X > solved.Width {
		t.Errorf("label = %+v", lbl)
	}
}

func TestSolveRectPackingNoOverlap(t *testing.T) {
	s := newSolver(t)
	root := &graph.Node{ID: "root"}
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		root.Nodes = append(root.Nodes, &graph.Node{ID: id})
	}
	collapsed := &graph.Node{ID: "kube-system", Collapsed: true, Nodes: []*graph.Node{{ID: "dns"}}}
	root.Nodes = append(root.Nodes, collapsed)

	engine := layout.New(s)
	res, err := engine.Apply(context.Background(), root, 16.0/9.0)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if len(res.Nodes) != 7 {
		t.Fatalf("nodes = %d, want 7", len(res.Nodes))
	}
	if overlaps := layout.NewIndex(res).Overlaps(); len(overlaps) != 0 {
		t.Errorf("overlapping siblings: %v", overlaps)
	}
	if n := res.Node("kube-system"); n.Width != graph.NodeWidth || n.Height != graph.NodeHeight {
		t.Errorf("collapsed group size %vx%v", n.Width, n.Height)
	}
}

func TestSolveCancelled(t *testing.T) {
	s := newSolver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Solve(ctx, tree(layeredGroup()), layout.SolveOptions{AspectRatio: 1}); err == nil {
		t.Error("Solve() with cancelled context should fail")
	}
}

func TestSolveLeafRoot(t *testing.T) {
	s := newSolver(t)
	sn := tree(&graph.Node{ID: "only"})
	solved, err := s.Solve(context.Background(), sn, layout.SolveOptions{AspectRatio: 1})
	if err != nil {
		t.Fatal(err)
	}
	if solved.Width != graph.NodeWidth || solved.Height != graph.NodeHeight {
		t.Errorf("leaf root size %vx%v", solved.Width, solved.Height)
	}
}
