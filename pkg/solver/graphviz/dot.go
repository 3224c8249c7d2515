package graphviz

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/resourcemap/pkg/layout"
)

// pointsPerInch converts layout units (points) to Graphviz inches.
const pointsPerInch = 72.0

// defaultAspectRatio is used when neither the group nor the solve call
// carries an aspect ratio.
const defaultAspectRatio = 1.0

// plan is the Graphviz graph built for one expanded group.
type plan struct {
	engine  graphviz.Layout
	dot     string
	padding layout.Padding
	nodes   []string // DOT node name per child index
	edges   []planEdge
}

// planEdge maps a DOT edge back to the solver edge it routes.
type planEdge struct {
	name string
	edge *layout.SolverEdge
}

// buildPlan writes the DOT graph for n. Children must already be sized.
func buildPlan(n *layout.SolverNode, aspectRatio float64) (*plan, error) {
	pad, err := layout.ParsePadding(n.Directives.Get(layout.DirPadding))
	if err != nil {
		return nil, err
	}
	p := &plan{padding: pad, nodes: make([]string, len(n.Children))}
	for i := range n.Children {
		p.nodes[i] = "n" + strconv.Itoa(i)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")

	switch layout.ProfileOf(n.Directives) {
	case layout.ProfileRectPacking:
		p.engine = graphviz.OSAGE
		cols := packColumns(n.Children, groupAspect(n, aspectRatio))
		fmt.Fprintf(&buf, "  pack=%s;\n", fmtNum(n.Directives.Float(layout.DirSpacingNodeNode, 20)))
		fmt.Fprintf(&buf, "  packmode=\"array_u%d\";\n", cols)
	default:
		p.engine = graphviz.DOT
		if rd := rankDir(n.Directives.Get(layout.DirDirection)); rd != "" {
			fmt.Fprintf(&buf, "  rankdir=%s;\n", rd)
		}
		fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(n.Directives.Float(layout.DirSpacingNodeNode, 60)))
		fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(n.Directives.Float(layout.DirSpacingBetweenLayers, 60)))
		fmt.Fprintf(&buf, "  splines=%s;\n", splines(n.Directives.Get(layout.DirEdgeRouting)))
	}
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for rank, i := range emissionOrder(n) {
		c := n.Children[i]
		fmt.Fprintf(&buf, "  %s [width=%s, height=%s, sortv=%d];\n",
			p.nodes[i], inches(c.Width), inches(c.Height), rank)
	}

	owner := ownerIndex(n)
	if len(n.Edges) > 0 {
		buf.WriteString("\n")
	}
	for k, e := range n.Edges {
		src, okS := owner[e.Source]
		tgt, okT := owner[e.Target]
		if !okS || !okT || src == tgt {
			continue
		}
		name := "e" + strconv.Itoa(k)
		attrs := []string{"id=" + name}
		if e.Label != "" {
			attrs = append(attrs, "label="+quote(e.Label))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", p.nodes[src], p.nodes[tgt], strings.Join(attrs, ", "))
		p.edges = append(p.edges, planEdge{name: name, edge: e})
	}

	buf.WriteString("}\n")
	p.dot = buf.String()
	return p, nil
}

// emissionOrder returns child indices in the order they are written. With
// partitioning active, children are stably sorted by partition so lower
// partitions are placed first.
func emissionOrder(n *layout.SolverNode) []int {
	order := make([]int, len(n.Children))
	for i := range order {
		order[i] = i
	}
	if !n.Directives.Bool(layout.DirPartitioningActivate) {
		return order
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(partitionOf(n.Children[a]), partitionOf(n.Children[b]))
	})
	return order
}

func partitionOf(n *layout.SolverNode) int {
	v, err := strconv.Atoi(n.Directives.Get(layout.DirPartition))
	if err != nil {
		return 0
	}
	return v
}

// ownerIndex maps every id below n to the index of the direct child that
// contains it.
func ownerIndex(n *layout.SolverNode) map[string]int {
	owner := make(map[string]int)
	for i, c := range n.Children {
		layout.Walk(c, func(d, _ *layout.SolverNode) { owner[d.ID] = i })
	}
	return owner
}

func groupAspect(n *layout.SolverNode, fallback float64) float64 {
	if fallback <= 0 {
		fallback = defaultAspectRatio
	}
	a := n.Directives.Float(layout.DirAspectRatio, fallback)
	if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return fallback
	}
	return a
}

// packColumns picks the column count whose grid of average-sized children
// best matches the aspect ratio.
func packColumns(children []*layout.SolverNode, aspectRatio float64) int {
	n := len(children)
	if n <= 1 {
		return 1
	}
	var w, h float64
	for _, c := range children {
		w += c.Width
		h += c.Height
	}
	if w <= 0 || h <= 0 {
		return 1
	}
	cols := int(math.Round(math.Sqrt(float64(n) * aspectRatio * h / w)))
	return max(1, min(cols, n))
}

func rankDir(direction string) string {
	switch direction {
	case "RIGHT":
		return "LR"
	case "LEFT":
		return "RL"
	case "DOWN":
		return "TB"
	case "UP":
		return "BT"
	}
	return ""
}

func splines(routing string) string {
	switch routing {
	case "ORTHOGONAL":
		return "ortho"
	case "POLYLINE":
		return "polyline"
	}
	return "spline"
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'f', 4, 64)
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
