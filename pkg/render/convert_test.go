package render

import (
	"bytes"
	"testing"

	"github.com/matzehuels/resourcemap/pkg/errors"
	"github.com/matzehuels/resourcemap/pkg/graph"
)

func TestToPNG(t *testing.T) {
	svg := RenderSVG(graph.EmptyResult())
	png, err := ToPNG(svg, 1)

	if !Available() {
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("ToPNG() without rsvg-convert error = %v, want %v", err, errors.ErrCodeUnsupported)
		}
		return
	}
	if err != nil {
		t.Fatalf("ToPNG() error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("ToPNG() output is not a PNG")
	}
}

func TestToPDF(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	pdf, err := ToPDF(RenderSVG(graph.EmptyResult()))
	if err != nil {
		t.Fatalf("ToPDF() error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("ToPDF() output is not a PDF")
	}
}

func TestToPDFInvalidSVG(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	if _, err := ToPDF([]byte("not svg")); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("ToPDF(garbage) error = %v, want %v", err, errors.ErrCodeInternal)
	}
}
