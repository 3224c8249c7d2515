package layout

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tidwall/rtree"

	"github.com/matzehuels/resourcemap/pkg/graph"
)

// Rect is an axis-aligned rectangle in absolute layout coordinates.
type Rect struct {
	Min, Max graph.Point
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Intersects reports whether r and o share a region of positive area.
// Rectangles that only touch do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Index is a spatial index over the absolute rectangles of a layout result.
type Index struct {
	tree   rtree.RTreeG[string]
	rects  map[string]Rect
	parent map[string]string
	depth  map[string]int
	order  []string
}

// NewIndex composes the parent-relative node positions of res into absolute
// rectangles and indexes them. Nodes whose parent is unknown are treated as
// top-level.
func NewIndex(res graph.Result) *Index {
	ix := &Index{
		rects:  make(map[string]Rect, len(res.Nodes)),
		parent: make(map[string]string, len(res.Nodes)),
		depth:  make(map[string]int, len(res.Nodes)),
	}
	for _, n := range res.Nodes {
		origin := n.Position
		depth := 0
		if p, ok := ix.rects[n.ParentID]; ok && n.ParentID != "" {
			origin = origin.Add(p.Min)
			depth = ix.depth[n.ParentID] + 1
			ix.parent[n.ID] = n.ParentID
		}
		r := Rect{Min: origin, Max: graph.Point{X: origin.X + n.Width, Y: origin.Y + n.Height}}
		ix.rects[n.ID] = r
		ix.depth[n.ID] = depth
		ix.order = append(ix.order, n.ID)
		ix.tree.Insert([2]float64{r.Min.X, r.Min.Y}, [2]float64{r.Max.X, r.Max.Y}, n.ID)
	}
	return ix
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int { return ix.tree.Len() }

// Rect returns the absolute rectangle of the node with the given id.
func (ix *Index) Rect(id string) (Rect, bool) {
	r, ok := ix.rects[id]
	return r, ok
}

// Bounds returns the rectangle enclosing every indexed node.
func (ix *Index) Bounds() Rect {
	var b Rect
	for i, id := range ix.order {
		r := ix.rects[id]
		if i == 0 {
			b = r
			continue
		}
		b.Min.X = min(b.Min.X, r.Min.X)
		b.Min.Y = min(b.Min.Y, r.Min.Y)
		b.Max.X = max(b.Max.X, r.Max.X)
		b.Max.Y = max(b.Max.Y, r.Max.Y)
	}
	return b
}

// NodeAt returns the innermost node containing the point (x, y).
func (ix *Index) NodeAt(x, y float64) (string, bool) {
	best, bestDepth := "", -1
	pt := [2]float64{x, y}
	ix.tree.Search(pt, pt, func(_, _ [2]float64, id string) bool {
		d := ix.depth[id]
		if d > bestDepth || (d == bestDepth && id < best) {
			best, bestDepth = id, d
		}
		return true
	})
	return best, bestDepth >= 0
}

// Search returns the ids of nodes intersecting r, sorted.
func (ix *Index) Search(r Rect) []string {
	var ids []string
	ix.tree.Search([2]float64{r.Min.X, r.Min.Y}, [2]float64{r.Max.X, r.Max.Y},
		func(_, _ [2]float64, id string) bool {
			if ix.rects[id].Intersects(r) {
				ids = append(ids, id)
			}
			return true
		})
	slices.Sort(ids)
	return ids
}

// Overlaps returns every pair of siblings whose rectangles intersect.
// Each pair is ordered and the list is sorted.
func (ix *Index) Overlaps() [][2]string {
	var pairs [][2]string
	for _, id := range ix.order {
		r := ix.rects[id]
		for _, other := range ix.Search(r) {
			if other <= id || ix.parent[other] != ix.parent[id] {
				continue
			}
			pairs = append(pairs, [2]string{id, other})
		}
	}
	slices.SortFunc(pairs, func(a, b [2]string) int {
		return cmp.Or(strings.Compare(a[0], b[0]), strings.Compare(a[1], b[1]))
	})
	return pairs
}
