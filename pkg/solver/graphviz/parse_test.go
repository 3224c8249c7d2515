package graphviz

import (
	"testing"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/layout"
)

func TestParseBox(t *testing.T) {
	b, err := parseBox("0,0,454,188")
	if err != nil {
		t.Fatal(err)
	}
	if b.width() != 454 || b.height() != 188 {
		t.Errorf("box = %+v", b)
	}
	for _, bad := range []string{"", "1,2,3", "a,b,c,d"} {
		if _, err := parseBox(bad); err == nil {
			t.Errorf("parseBox(%q) should fail", bad)
		}
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in   string
		want graph.Point
	}{
		{"27,18", graph.Point{X: 27, Y: 18}},
		{"27.5,18.25!", graph.Point{X: 27.5, Y: 18.25}},
		{"1,2,3", graph.Point{X: 1, Y: 2}},
	}
	for _, tt := range tests {
		got, err := parsePoint(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parsePoint(%q) = %+v, %v; want %+v", tt.in, got, err, tt.want)
		}
	}
	if _, err := parsePoint("12"); err == nil {
		t.Error("parsePoint(12) should fail")
	}
}

func TestParseSpline(t *testing.T) {
	sp, err := parseSpline("e,100,10 100,90 100,70 100,50 100,30")
	if err != nil {
		t.Fatal(err)
	}
	if sp.end == nil || *sp.end != (graph.Point{X: 100, Y: 10}) {
		t.Errorf("end = %v", sp.end)
	}
	if sp.start != nil {
		t.Errorf("start = %v, want nil", sp.start)
	}
	if len(sp.controls) != 4 {
		t.Errorf("controls = %d, want 4", len(sp.controls))
	}

	if _, err := parseSpline("e,1,2"); err == nil {
		t.Error("spline without control points should fail")
	}
}

func TestSplineSection(t *testing.T) {
	sp, err := parseSpline("s,0,100 e,100,0 10,90 40,60 60,40 90,10")
	if err != nil {
		t.Fatal(err)
	}
	f := frame{bb: box{llx: 0, lly: 0, urx: 100, ury: 100}, pad: layout.Padding{Left: 16, Top: 16}}
	sec := sp.section("e_s0", f)

	if sec.ID != "e_s0" {
		t.Errorf("ID = %q", sec.ID)
	}
	if sec.StartPoint != (graph.Point{X: 16, Y: 16}) {
		t.Errorf("StartPoint = %+v, want (16,16)", sec.StartPoint)
	}
	if sec.EndPoint != (graph.Point{X: 116, Y: 116}) {
		t.Errorf("EndPoint = %+v, want (116,116)", sec.EndPoint)
	}
	if len(sec.BendPoints) != 2 || sec.BendPoints[0] != (graph.Point{X: 56, Y: 56}) {
		t.Errorf("BendPoints = %+v", sec.BendPoints)
	}
}

func TestFramePoint(t *testing.T) {
	f := frame{bb: box{llx: -10, lly: 0, urx: 90, ury: 50}, pad: layout.Padding{Left: 24, Top: 48}}
	got := f.point(graph.Point{X: -10, Y: 50})
	if got != (graph.Point{X: 24, Y: 48}) {
		t.Errorf("top-left corner maps to %+v, want (24,48)", got)
	}
}
