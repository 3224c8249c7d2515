package cli

import (
	"strings"
	"testing"
)

func TestStatsLine(t *testing.T) {
	tests := []struct {
		name    string
		summary layoutSummary
		want    []string
		notWant []string
	}{
		{"fresh", layoutSummary{Nodes: 4, Edges: 1}, []string{"4 nodes", "1 edges", iconFresh}, []string{"overlaps"}},
		{"cached", layoutSummary{Nodes: 4, Cached: true}, []string{"0 edges", iconCached}, []string{iconFresh}},
		{"overlaps", layoutSummary{Nodes: 3, Overlaps: 2}, []string{"2 overlaps"}, nil},
		{"degraded wins over cached", layoutSummary{Cached: true, Degraded: true}, []string{iconDegraded}, []string{iconCached}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := statsLine(tt.summary)
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("statsLine() = %q, missing %q", line, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(line, w) {
					t.Errorf("statsLine() = %q, should not contain %q", line, w)
				}
			}
		})
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := []struct{ in, want string }{
		{":8080", "localhost:8080"},
		{"0.0.0.0:80", "0.0.0.0:80"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := displayAddr(tt.in); got != tt.want {
			t.Errorf("displayAddr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
