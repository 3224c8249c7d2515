package pipeline

import (
	"fmt"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/render"
)

// Render generates output artifacts in the requested formats.
// The SVG is drawn at most once and shared by the svg, png and pdf outputs.
func Render(res graph.Result, opts Options) (map[string][]byte, error) {
	if err := opts.normalizeRender(); err != nil {
		return nil, err
	}

	var svg []byte
	svgOnce := func() []byte {
		if svg == nil {
			svg = render.RenderSVG(res)
		}
		return svg
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalResult(res)
		case FormatSVG:
			data = svgOnce()
		case FormatPNG:
			data, err = render.ToPNG(svgOnce(), opts.PNGScale)
		case FormatPDF:
			data, err = render.ToPDF(svgOnce())
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
