package layout

import (
	"strconv"

	"github.com/matzehuels/resourcemap/pkg/graph"
)

// PartitionLayer returns the partition a leaf is placed in. Lower partitions
// are placed further left, so heavier nodes end up first. Fractional weights
// are truncated toward zero.
func PartitionLayer(n *graph.Node) int {
	return -int(graph.NodeWeight(n))
}

func partitionDirective(n *graph.Node) string {
	return strconv.Itoa(PartitionLayer(n))
}
