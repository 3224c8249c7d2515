// Package render draws layout results.
//
// [RenderSVG] composes the parent-relative positions of a [graph.Result]
// into absolute coordinates and writes a standalone SVG document: groups
// as rounded containers, leaves as labelled boxes, and edges as polylines
// through their routed sections.
//
// The [ToPDF] and [ToPNG] functions convert SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := render.RenderSVG(result)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [graph.Result]: github.com/matzehuels/resourcemap/pkg/graph.Result
package render
