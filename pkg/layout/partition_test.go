package layout

import "testing"

func TestPartitionLayer(t *testing.T) {
	tests := []struct {
		weight float64
		want   int
		dir    string
	}{
		{5, -5, "-5"},
		{-3, 3, "3"},
		{0, 0, "0"},
		{2.7, -2, "-2"},
		{-2.7, 2, "2"},
	}

	for _, tt := range tests {
		n := leaf("a", tt.weight)
		if got := PartitionLayer(n); got != tt.want {
			t.Errorf("PartitionLayer(weight=%v) = %d, want %d", tt.weight, got, tt.want)
		}
		if got := ToSolverNode(n, 1).Directives[DirPartition]; got != tt.dir {
			t.Errorf("partition directive (weight=%v) = %q, want %q", tt.weight, got, tt.dir)
		}
	}
}

func TestPartitionLayerNil(t *testing.T) {
	if got := PartitionLayer(nil); got != 0 {
		t.Errorf("PartitionLayer(nil) = %d, want 0", got)
	}
}
