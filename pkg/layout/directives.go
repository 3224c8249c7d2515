package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/resourcemap/pkg/graph"
)

// =============================================================================
// Directive Keys
// =============================================================================

// Directive keys understood by solvers. Values are always strings.
const (
	DirAlgorithm            = "algorithm"
	DirAspectRatio          = "aspectRatio"
	DirDirection            = "direction"
	DirEdgeRouting          = "edgeRouting"
	DirPadding              = "padding"
	DirSpacingNodeNode      = "spacing.nodeNode"
	DirSpacingBetweenLayers = "layered.spacing.nodeNodeBetweenLayers"
	DirNodeSizeMinimum      = "nodeSize.minimum"
	DirNodeSizeConstraints  = "nodeSize.constraints"
	DirPartitioningActivate = "partitioning.activate"
	DirPartition            = "partitioning.partition"
	DirDesiredEdgeLength    = "stress.desiredEdgeLength"
	DirStressEpsilon        = "stress.epsilon"
	DirOptimizationGoal     = "rectpacking.widthApproximation.optimizationGoal"
	DirRowHeightReeval      = "rectpacking.packing.compaction.rowHeightReevaluation"
)

// Algorithm names.
const (
	AlgorithmLayered     = "layered"
	AlgorithmRectPacking = "rectpacking"
)

// Directives is the per-node option map handed to the solver.
type Directives map[string]string

// Get returns the value for key, or "" when absent.
func (d Directives) Get(key string) string { return d[key] }

// Float parses the value for key, returning def when absent or malformed.
func (d Directives) Float(key string, def float64) float64 {
	v, ok := d[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Bool reports whether the value for key is "true".
func (d Directives) Bool(key string) bool { return d[key] == "true" }

// Clone returns a copy of d.
func (d Directives) Clone() Directives {
	if d == nil {
		return nil
	}
	out := make(Directives, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// =============================================================================
// Profiles
// =============================================================================

// Profile names a bundle of directives chosen for an expanded group.
type Profile string

const (
	// ProfileLayered is used for groups with at least one routable edge.
	ProfileLayered Profile = AlgorithmLayered
	// ProfileRectPacking is used for groups whose edges were all dropped.
	ProfileRectPacking Profile = AlgorithmRectPacking
)

// Spacing values for layered groups. Groups containing a collapsed
// descendant pack tighter.
const (
	spacingNodeNode          = 60
	spacingNodeNodeCollapsed = 1
	edgeLength               = 250
	edgeLengthCollapsed      = 20
)

var (
	layeredPadding     = Padding{Left: 16, Top: 16, Right: 16, Bottom: 16}
	rectPackingPadding = Padding{Left: 24, Top: 48, Right: 24, Bottom: 24}
)

// LayeredDirectives returns the directive profile for a group with edges.
func LayeredDirectives(collapsedInside bool) Directives {
	spacing, length := spacingNodeNode, edgeLength
	if collapsedInside {
		spacing, length = spacingNodeNodeCollapsed, edgeLengthCollapsed
	}
	return Directives{
		DirPartitioningActivate: "true",
		DirDirection:            "UNDEFINED",
		DirEdgeRouting:          "SPLINES",
		DirNodeSizeMinimum:      FormatSize(graph.NodeWidth, graph.NodeHeight),
		DirNodeSizeConstraints:  "[MINIMUM_SIZE]",
		DirAlgorithm:            AlgorithmLayered,
		DirSpacingNodeNode:      strconv.Itoa(spacing),
		DirSpacingBetweenLayers: "60",
		DirDesiredEdgeLength:    strconv.Itoa(length),
		DirStressEpsilon:        "0.1",
		DirPadding:              layeredPadding.String(),
	}
}

// RectPackingDirectives returns the directive profile for a group without
// edges. The aspect ratio is recorded so the solver can match the container.
// Only the Graphviz solver reads DirAspectRatio; other solvers may ignore it.
func RectPackingDirectives(aspectRatio float64) Directives {
	d := Directives{
		DirAlgorithm:        AlgorithmRectPacking,
		DirOptimizationGoal: "ASPECT_RATIO_DRIVEN",
		DirRowHeightReeval:  "true",
		DirEdgeRouting:      "SPLINES",
		DirSpacingNodeNode:  "20",
		DirPadding:          rectPackingPadding.String(),
	}
	if aspectRatio > 0 {
		d[DirAspectRatio] = strconv.FormatFloat(aspectRatio, 'g', -1, 64)
	}
	return d
}

// ProfileOf returns the profile selected by d, or "" for leaves and
// collapsed groups.
func ProfileOf(d Directives) Profile {
	switch d[DirAlgorithm] {
	case AlgorithmLayered:
		return ProfileLayered
	case AlgorithmRectPacking:
		return ProfileRectPacking
	}
	return ""
}

// =============================================================================
// Value Formats
// =============================================================================

// Padding is the inner margin of a group.
type Padding struct {
	Left, Top, Right, Bottom float64
}

// String formats p as "[left=16, top=16, right=16, bottom=16]".
func (p Padding) String() string {
	return fmt.Sprintf("[left=%s, top=%s, right=%s, bottom=%s]",
		formatNum(p.Left), formatNum(p.Top), formatNum(p.Right), formatNum(p.Bottom))
}

// ParsePadding parses the padding format produced by [Padding.String].
// Missing sides are zero.
func ParsePadding(s string) (Padding, error) {
	var p Padding
	s = strings.TrimSpace(s)
	if s == "" {
		return p, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return p, fmt.Errorf("padding %q: missing brackets", s)
	}
	for _, part := range strings.Split(s[1:len(s)-1], ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return p, fmt.Errorf("padding %q: malformed entry %q", s, part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return p, fmt.Errorf("padding %q: %w", s, err)
		}
		switch strings.TrimSpace(k) {
		case "left":
			p.Left = f
		case "top":
			p.Top = f
		case "right":
			p.Right = f
		case "bottom":
			p.Bottom = f
		default:
			return p, fmt.Errorf("padding %q: unknown side %q", s, k)
		}
	}
	return p, nil
}

// FormatSize formats a size as "(220.0,70.0)".
func FormatSize(w, h float64) string {
	return "(" + strconv.FormatFloat(w, 'f', 1, 64) + "," + strconv.FormatFloat(h, 'f', 1, 64) + ")"
}

// ParseSize parses the format produced by [FormatSize].
func ParseSize(s string) (w, h float64, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return 0, 0, fmt.Errorf("size %q: missing parentheses", s)
	}
	ws, hs, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: missing comma", s)
	}
	if w, err = strconv.ParseFloat(strings.TrimSpace(ws), 64); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if h, err = strconv.ParseFloat(strings.TrimSpace(hs), 64); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	return w, h, nil
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
