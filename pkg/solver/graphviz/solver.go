package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/layout"
)

// Solver lays out SolverNode trees with Graphviz.
//
// Each expanded group is laid out as its own flat graph, innermost groups
// first, so a group's size is known before its parent is solved. A Solver
// serializes access to its Graphviz instance and is safe for concurrent use.
type Solver struct {
	mu     sync.Mutex
	gv     *graphviz.Graphviz
	logger *log.Logger
}

// Option configures a [Solver].
type Option func(*Solver)

// WithLogger sets the logger for per-group debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

// New starts a Graphviz instance. The error is returned unchanged so
// callers can fall back to a layout engine without a solver.
func New(ctx context.Context, opts ...Option) (*Solver, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	s := &Solver{
		gv:     gv,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the Graphviz instance.
func (s *Solver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gv.Close()
}

// Solve positions every node of root in place and returns it. The root is
// placed at the origin. Cancellation is checked between groups.
func (s *Solver) Solve(ctx context.Context, root *layout.SolverNode, opts layout.SolveOptions) (*layout.SolverNode, error) {
	if root == nil {
		return nil, fmt.Errorf("solve: nil root")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.solveGroup(ctx, root, opts.AspectRatio); err != nil {
		return nil, err
	}
	root.X, root.Y = 0, 0
	return root, nil
}

func (s *Solver) solveGroup(ctx context.Context, n *layout.SolverNode, aspectRatio float64) error {
	if n.IsLeaf() {
		return nil
	}
	for _, c := range n.Children {
		if err := s.solveGroup(ctx, c, aspectRatio); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := buildPlan(n, aspectRatio)
	if err != nil {
		return fmt.Errorf("group %s: %w", n.ID, err)
	}
	out, err := s.render(ctx, p)
	if err != nil {
		return fmt.Errorf("group %s: %w", n.ID, err)
	}
	if err := apply(n, p, out); err != nil {
		return fmt.Errorf("group %s: %w", n.ID, err)
	}
	s.logger.Debug("solved group",
		"id", n.ID,
		"engine", p.engine,
		"children", len(n.Children),
		"edges", len(p.edges),
		"size", fmt.Sprintf("%.0fx%.0f", n.Width, n.Height))
	return nil
}

// render lays out the plan's DOT graph and returns the xdot output.
func (s *Solver) render(ctx context.Context, p *plan) ([]byte, error) {
	g, err := graphviz.ParseBytes([]byte(p.dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := s.gv.SetLayout(p.engine).Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// apply reads positions from the xdot output back into n's children and
// edges and sizes n to fit its content.
func apply(n *layout.SolverNode, p *plan, xdot []byte) error {
	g, err := graphviz.ParseBytes(xdot)
	if err != nil {
		return fmt.Errorf("parse xdot: %w", err)
	}
	defer g.Close()

	bb, err := parseBox(g.GetStr("bb"))
	if err != nil {
		return err
	}
	f := frame{bb: bb, pad: p.padding}

	for i, c := range n.Children {
		gn, err := g.NodeByName(p.nodes[i])
		if err != nil || gn == nil {
			return fmt.Errorf("node %s missing from output", c.ID)
		}
		center, err := parsePoint(gn.GetStr("pos"))
		if err != nil {
			return fmt.Errorf("node %s: %w", c.ID, err)
		}
		pos := f.point(center)
		c.X = pos.X - c.Width/2
		c.Y = pos.Y - c.Height/2
	}

	routes, err := readEdges(g, p)
	if err != nil {
		return err
	}
	for _, pe := range p.edges {
		r, ok := routes[pe.name]
		if !ok {
			continue
		}
		if r.pos != "" {
			sp, err := parseSpline(r.pos)
			if err != nil {
				return fmt.Errorf("edge %s: %w", pe.edge.ID, err)
			}
			pe.edge.Sections = []graph.Section{sp.section(pe.edge.ID+"_s0", f)}
		}
		if r.lp != "" && len(pe.edge.Labels) > 0 {
			center, err := parsePoint(r.lp)
			if err != nil {
				return fmt.Errorf("edge %s label: %w", pe.edge.ID, err)
			}
			c := f.point(center)
			lbl := &pe.edge.Labels[0]
			lbl.X = c.X - lbl.Width/2
			lbl.Y = c.Y - lbl.Height/2
		}
	}

	minW, minH := n.Width, n.Height
	if v := n.Directives.Get(layout.DirNodeSizeMinimum); v != "" {
		if w, h, err := layout.ParseSize(v); err == nil {
			minW, minH = w, h
		}
	}
	n.Width = max(bb.width()+p.padding.Left+p.padding.Right, minW)
	n.Height = max(bb.height()+p.padding.Top+p.padding.Bottom, minH)
	return nil
}

type route struct {
	pos, lp string
}

// readEdges collects the pos and lp attributes of every edge by its id.
func readEdges(g *graphviz.Graph, p *plan) (map[string]route, error) {
	routes := make(map[string]route, len(p.edges))
	if len(p.edges) == 0 {
		return routes, nil
	}
	for _, name := range p.nodes {
		gn, err := g.NodeByName(name)
		if err != nil || gn == nil {
			continue
		}
		e, err := g.FirstOut(gn)
		for err == nil && e != nil {
			if id := e.GetStr("id"); id != "" {
				routes[id] = route{pos: e.GetStr("pos"), lp: e.GetStr("lp")}
			}
			e, err = g.NextOut(e)
		}
		if err != nil {
			return nil, fmt.Errorf("read edges of %s: %w", name, err)
		}
	}
	return routes, nil
}

var _ layout.Solver = (*Solver)(nil)
