package graphviz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/layout"
)

// box is a Graphviz bounding box in points, y up.
type box struct {
	llx, lly, urx, ury float64
}

func (b box) width() float64  { return b.urx - b.llx }
func (b box) height() float64 { return b.ury - b.lly }

// frame converts Graphviz coordinates of one group into the group's local
// top-left, y-down frame, shifted by the group's padding.
type frame struct {
	bb  box
	pad layout.Padding
}

func (f frame) point(p graph.Point) graph.Point {
	return graph.Point{
		X: p.X - f.bb.llx + f.pad.Left,
		Y: f.bb.ury - p.Y + f.pad.Top,
	}
}

// parseBox parses a "llx,lly,urx,ury" bounding box.
func parseBox(s string) (box, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 4 {
		return box{}, fmt.Errorf("bounding box %q: want 4 values", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return box{}, fmt.Errorf("bounding box %q: %w", s, err)
		}
		v[i] = f
	}
	return box{llx: v[0], lly: v[1], urx: v[2], ury: v[3]}, nil
}

// parsePoint parses an "x,y" coordinate. A trailing "!" is ignored.
func parsePoint(s string) (graph.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSuffix(strings.TrimSpace(s), "!"), ",")
	if !ok {
		return graph.Point{}, fmt.Errorf("point %q: missing comma", s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return graph.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	// Some outputs carry a third coordinate.
	ys, _, _ = strings.Cut(ys, ",")
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return graph.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return graph.Point{X: x, Y: y}, nil
}

// spline is one parsed edge route.
type spline struct {
	start, end *graph.Point
	controls   []graph.Point
}

// parseSpline parses an edge "pos" attribute:
//
//	e,x,y s,x,y p1 p2 ... pn
//
// Only the first spline is read when several are separated by ";".
func parseSpline(s string) (spline, error) {
	var sp spline
	first, _, _ := strings.Cut(strings.TrimSpace(s), ";")
	for _, tok := range strings.Fields(first) {
		switch {
		case strings.HasPrefix(tok, "e,"):
			p, err := parsePoint(tok[2:])
			if err != nil {
				return sp, err
			}
			sp.end = &p
		case strings.HasPrefix(tok, "s,"):
			p, err := parsePoint(tok[2:])
			if err != nil {
				return sp, err
			}
			sp.start = &p
		default:
			p, err := parsePoint(tok)
			if err != nil {
				return sp, err
			}
			sp.controls = append(sp.controls, p)
		}
	}
	if len(sp.controls) == 0 {
		return sp, fmt.Errorf("spline %q: no control points", s)
	}
	return sp, nil
}

// section converts the spline into a single section in frame f. The
// arrowhead tip, when present, becomes the end point.
func (sp spline) section(id string, f frame) graph.Section {
	pts := sp.controls
	start, end := pts[0], pts[len(pts)-1]
	if sp.start != nil {
		start = *sp.start
	}
	if sp.end != nil {
		end = *sp.end
	}

	sec := graph.Section{ID: id, StartPoint: f.point(start), EndPoint: f.point(end)}
	if len(pts) > 2 {
		sec.BendPoints = make([]graph.Point, 0, len(pts)-2)
		for _, p := range pts[1 : len(pts)-1] {
			sec.BendPoints = append(sec.BendPoints, f.point(p))
		}
	}
	return sec
}
