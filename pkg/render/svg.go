package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/layout"
)

const (
	defaultMargin   = 20.0
	groupRadius     = 8.0
	leafRadius      = 4.0
	groupLabelSize  = 13.0
	leafLabelSize   = 12.0
	edgeLabelSize   = 10.0
	fontFamily      = `-apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif`
	labelCharWidth  = 0.6
	labelMinChars   = 3
	arrowMarkerID   = "arrowclosed"
	groupFill       = "#f4f6f8"
	groupStroke     = "#b8c2cc"
	leafFill        = "#ffffff"
	leafStroke      = "#4a5568"
	edgeStroke      = "#718096"
	edgeLabelFill   = "#ffffff"
	textFill        = "#1a202c"
	mutedTextFill   = "#4a5568"
	labelDataKey    = "label"
	groupLabelInset = 8.0
)

// Option configures [RenderSVG].
type Option func(*svgRenderer)

type svgRenderer struct {
	margin float64
	title  string
}

// WithMargin sets the blank border around the drawing.
func WithMargin(m float64) Option { return func(r *svgRenderer) { r.margin = max(0, m) } }

// WithTitle adds a <title> element.
func WithTitle(s string) Option { return func(r *svgRenderer) { r.title = s } }

// RenderSVG draws res as an SVG document.
func RenderSVG(res graph.Result, opts ...Option) []byte {
	r := svgRenderer{margin: defaultMargin}
	for _, opt := range opts {
		opt(&r)
	}

	ix := layout.NewIndex(res)
	bounds := ix.Bounds()
	width := bounds.Max.X + 2*r.margin
	height := bounds.Max.Y + 2*r.margin

	hasChildren := make(map[string]bool, len(res.Nodes))
	for _, n := range res.Nodes {
		if n.ParentID != "" {
			hasChildren[n.ParentID] = true
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	renderDefs(&buf)
	fmt.Fprintf(&buf, `  <g transform="translate(%.1f,%.1f)" font-family='%s'>`+"\n", r.margin, r.margin, fontFamily)

	for _, n := range res.Nodes {
		if n.Hidden {
			continue
		}
		rect, _ := ix.Rect(n.ID)
		if hasChildren[n.ID] {
			renderGroup(&buf, n, rect)
		} else {
			renderLeaf(&buf, n, rect)
		}
	}
	for _, e := range res.Edges {
		if e.Hidden {
			continue
		}
		renderEdge(&buf, e)
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <defs>
    <marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>
    </marker>
  </defs>
`, arrowMarkerID, edgeStroke)
}

func renderGroup(buf *bytes.Buffer, n graph.RenderNode, r layout.Rect) {
	fmt.Fprintf(buf, `    <rect id="node-%s" class="group" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s"/>`+"\n",
		escapeXML(n.ID), r.Min.X, r.Min.Y, r.Width(), r.Height(), groupRadius, groupFill, groupStroke)
	label := fitLabel(nodeLabel(n), r.Width()-2*groupLabelInset, groupLabelSize)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="600" fill="%s">%s</text>`+"\n",
		r.Min.X+groupLabelInset, r.Min.Y+groupLabelInset+groupLabelSize, groupLabelSize, mutedTextFill, escapeXML(label))
}

func renderLeaf(buf *bytes.Buffer, n graph.RenderNode, r layout.Rect) {
	fmt.Fprintf(buf, `    <rect id="node-%s" class="node" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s"/>`+"\n",
		escapeXML(n.ID), r.Min.X, r.Min.Y, r.Width(), r.Height(), leafRadius, leafFill, leafStroke)
	label := fitLabel(nodeLabel(n), r.Width()-2*groupLabelInset, leafLabelSize)
	cx, cy := r.Min.X+r.Width()/2, r.Min.Y+r.Height()/2
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`+"\n",
		cx, cy, leafLabelSize, textFill, escapeXML(label))
}

func renderEdge(buf *bytes.Buffer, e graph.RenderEdge) {
	off := e.Data.ParentOffset
	for _, s := range e.Data.Sections {
		var path bytes.Buffer
		fmt.Fprintf(&path, "M %.1f %.1f", s.StartPoint.X+off.X, s.StartPoint.Y+off.Y)
		for _, p := range s.BendPoints {
			fmt.Fprintf(&path, " L %.1f %.1f", p.X+off.X, p.Y+off.Y)
		}
		fmt.Fprintf(&path, " L %.1f %.1f", s.EndPoint.X+off.X, s.EndPoint.Y+off.Y)

		marker := ""
		if e.MarkerEnd.Type == graph.MarkerArrowClosed {
			marker = fmt.Sprintf(` marker-end="url(#%s)"`, arrowMarkerID)
		}
		fmt.Fprintf(buf, `    <path id="edge-%s" class="edge" d="%s" fill="none" stroke="%s" stroke-width="1.5"%s/>`+"\n",
			escapeXML(e.ID), path.String(), edgeStroke, marker)
	}
	for _, l := range e.Data.Labels {
		x, y := l.X+off.X, l.Y+off.Y
		fmt.Fprintf(buf, `    <rect class="edge-label" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3" fill="%s"/>`+"\n",
			x, y, l.Width, l.Height, edgeLabelFill)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`+"\n",
			x+l.Width/2, y+l.Height/2, edgeLabelSize, mutedTextFill, escapeXML(fitLabel(l.Text, l.Width, edgeLabelSize)))
	}
}

// nodeLabel prefers a "label" string in the node payload over the id.
func nodeLabel(n graph.RenderNode) string {
	if m, ok := n.Data.(map[string]any); ok {
		if s, ok := m[labelDataKey].(string); ok && s != "" {
			return s
		}
	}
	return n.ID
}

// fitLabel truncates s to what fits in width at the given font size.
func fitLabel(s string, width, fontSize float64) string {
	runes := []rune(s)
	maxChars := max(labelMinChars, int(width/(fontSize*labelCharWidth)))
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
