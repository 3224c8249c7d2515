package graph

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/resourcemap/pkg/errors"
)

// edgeNamespace scopes generated edge ids.
var edgeNamespace = uuid.MustParse("5f0b7e52-3c8e-4f7a-9a55-2f6a8c1d9e47")

// ForEachNode visits n and every node below it in pre-order.
// Children of collapsed groups are visited too.
func ForEachNode(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Nodes {
		ForEachNode(c, fn)
	}
}

// NodeWeight returns the ordering weight of n.
func NodeWeight(n *Node) float64 {
	if n == nil {
		return 0
	}
	return n.Weight
}

// NodeCount returns the number of nodes in the tree rooted at n, including n.
func NodeCount(n *Node) int {
	count := 0
	ForEachNode(n, func(*Node) { count++ })
	return count
}

// EdgeCount returns the number of edges declared anywhere in the tree.
func EdgeCount(n *Node) int {
	count := 0
	ForEachNode(n, func(x *Node) { count += len(x.Edges) })
	return count
}

// Descendants returns the ids of every node strictly below n.
func Descendants(n *Node) map[string]struct{} {
	ids := make(map[string]struct{})
	if n == nil {
		return ids
	}
	for _, c := range n.Nodes {
		ForEachNode(c, func(d *Node) { ids[d.ID] = struct{}{} })
	}
	return ids
}

// Find returns the node with the given id, or nil.
func Find(root *Node, id string) *Node {
	var found *Node
	ForEachNode(root, func(n *Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}

// Groups returns every group node in pre-order, including the root when it
// is a group.
func Groups(root *Node) []*Node {
	var out []*Node
	ForEachNode(root, func(n *Node) {
		if n.IsGroup() {
			out = append(out, n)
		}
	})
	return out
}

// Validate checks that node and edge ids are well formed and that node ids
// are unique across the tree. Dangling edge endpoints are not an error; the
// layout engine drops those edges.
func Validate(root *Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidGraph, "graph has no root node")
	}
	seen := make(map[string]bool)
	visited := make(map[*Node]bool)
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n == nil {
			return errors.New(errors.ErrCodeInvalidGraph, "graph contains a nil node")
		}
		if visited[n] {
			return errors.New(errors.ErrCodeInvalidGraph, "node %q is reachable more than once", n.ID)
		}
		visited[n] = true
		if err := errors.ValidateID("node", n.ID); err != nil {
			return err
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeInvalidGraph, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		for _, e := range n.Edges {
			if err := errors.ValidateID("edge", e.ID); err != nil {
				return err
			}
		}
		for _, c := range n.Nodes {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

// EnsureEdgeIDs assigns an id to every edge that lacks one. Generated ids are
// name-based UUIDs of the owning node, endpoints and position, so decoding
// the same document twice yields the same ids.
func EnsureEdgeIDs(root *Node) {
	ForEachNode(root, func(n *Node) {
		for i := range n.Edges {
			e := &n.Edges[i]
			if e.ID != "" {
				continue
			}
			name := n.ID + "\x00" + e.Source + "\x00" + e.Target + "\x00" + strconv.Itoa(i)
			e.ID = uuid.NewSHA1(edgeNamespace, []byte(name)).String()
		}
	})
}
