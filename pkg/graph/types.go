package graph

import (
	"encoding/json"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Default sizes, in layout units, for boxes handed to the solver.
const (
	NodeWidth   = 220.0
	NodeHeight  = 70.0
	LabelWidth  = 70.0
	LabelHeight = 20.0
)

// Render type tags.
const (
	TypeObject     = "object"     // every solver node
	TypeEdge       = "edge"       // every solver edge
	TypeCustomEdge = "customEdge" // edge render type when the solver carries none
)

// MarkerArrowClosed is the default edge end marker.
const MarkerArrowClosed = "arrowclosed"

// =============================================================================
// Node - Hierarchical Input Model
// =============================================================================

// Node is a node of the resource graph tree.
//
// A node with a non-nil Nodes slice is a group; otherwise it is a leaf.
// Edges reference the ids of descendants of the node that owns them.
type Node struct {
	ID        string  `json:"id"`
	Data      any     `json:"data,omitempty"`
	Nodes     []*Node `json:"nodes,omitempty"`
	Edges     []Edge  `json:"edges,omitempty"`
	Collapsed bool    `json:"collapsed,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
}

// Edge connects two descendants of the node that owns it.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// IsGroup reports whether the node has a child list, even an empty one.
func (n *Node) IsGroup() bool { return n.Nodes != nil }

// IsCollapsed reports whether the node is a collapsed group.
// The flag has no effect on leaves.
func (n *Node) IsCollapsed() bool { return n.Collapsed && n.IsGroup() }

// MarshalJSON keeps an empty child list on the wire so that an empty group
// does not decode back as a leaf.
func (n Node) MarshalJSON() ([]byte, error) {
	type alias Node
	out := struct {
		alias
		Nodes *[]*Node `json:"nodes,omitempty"`
	}{alias: alias(n)}
	if n.Nodes != nil {
		out.Nodes = &n.Nodes
	}
	return json.Marshal(out)
}

// =============================================================================
// Render Output Model
// =============================================================================

// Point is a 2D coordinate in layout units.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Section is one routed piece of an edge.
// Coordinates are relative to the node that owns the edge.
type Section struct {
	ID         string  `json:"id,omitempty" bson:"id,omitempty"`
	StartPoint Point   `json:"startPoint" bson:"start_point"`
	EndPoint   Point   `json:"endPoint" bson:"end_point"`
	BendPoints []Point `json:"bendPoints,omitempty" bson:"bend_points,omitempty"`
}

// Label is a positioned edge label box.
type Label struct {
	Text   string  `json:"text" bson:"text"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Size holds node dimensions for the renderer's style block.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// RenderNode is a positioned node. Position is relative to ParentID.
type RenderNode struct {
	ID         string  `json:"id" bson:"id"`
	Type       string  `json:"type" bson:"type"`
	Position   Point   `json:"position" bson:"position"`
	Width      float64 `json:"width" bson:"width"`
	Height     float64 `json:"height" bson:"height"`
	Style      Size    `json:"style" bson:"style"`
	ParentID   string  `json:"parentId,omitempty" bson:"parent_id,omitempty"`
	Data       any     `json:"data,omitempty" bson:"data,omitempty"`
	Hidden     bool    `json:"hidden" bson:"hidden"`
	Selectable bool    `json:"selectable" bson:"selectable"`
	Draggable  bool    `json:"draggable" bson:"draggable"`
}

// Marker describes an edge end marker.
type Marker struct {
	Type string `json:"type" bson:"type"`
}

// EdgeData carries edge geometry and the caller's payload.
type EdgeData struct {
	Data         any       `json:"data,omitempty" bson:"data,omitempty"`
	Sections     []Section `json:"sections,omitempty" bson:"sections,omitempty"`
	Label        string    `json:"label,omitempty" bson:"label,omitempty"`
	Labels       []Label   `json:"labels,omitempty" bson:"labels,omitempty"`
	ParentOffset Point     `json:"parentOffset" bson:"parent_offset"`
}

// RenderEdge is a routed edge.
type RenderEdge struct {
	ID         string   `json:"id" bson:"id"`
	Source     string   `json:"source" bson:"source"`
	Target     string   `json:"target" bson:"target"`
	Type       string   `json:"type" bson:"type"`
	Selectable bool     `json:"selectable" bson:"selectable"`
	Focusable  bool     `json:"focusable" bson:"focusable"`
	Hidden     bool     `json:"hidden" bson:"hidden"`
	MarkerEnd  Marker   `json:"markerEnd" bson:"marker_end"`
	Data       EdgeData `json:"data" bson:"data"`
}

// Result is the flattened output of a layout pass.
type Result struct {
	Nodes []RenderNode `json:"nodes" bson:"nodes"`
	Edges []RenderEdge `json:"edges" bson:"edges"`
}

// EmptyResult returns a result with non-nil empty slices, so it encodes as
// {"nodes":[],"edges":[]}.
func EmptyResult() Result {
	return Result{Nodes: []RenderNode{}, Edges: []RenderEdge{}}
}

// Node returns the node with the given id, or nil.
func (r Result) Node(id string) *RenderNode {
	for i := range r.Nodes {
		if r.Nodes[i].ID == id {
			return &r.Nodes[i]
		}
	}
	return nil
}
