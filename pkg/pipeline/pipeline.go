// Package pipeline runs the layout → render pipeline for resourcemap.
//
// The CLI and the HTTP API share this package so that caching, defaults and
// validation behave the same at every entry point.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: convert the graph, run the solver and flatten the result
//  2. Render: generate artifacts (JSON, SVG, PNG, PDF) from the layout
//
// Each stage checks the cache first. Layouts are keyed by the graph hash and
// the inputs that change a layout; artifacts by the layout hash and format.
//
// # Usage
//
//	engine := layout.New(solver, layout.WithLogger(logger))
//	runner := pipeline.NewRunner(c, nil, engine, logger)
//	result, err := runner.Execute(ctx, g, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/resourcemap/pkg/errors"
	"github.com/matzehuels/resourcemap/pkg/graph"
)

const (
	// DefaultAspectRatio is the container width/height ratio used when none
	// is given.
	DefaultAspectRatio = 16.0 / 9.0

	// DefaultPNGScale renders PNGs at twice the layout resolution.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatSVG, FormatPNG, FormatPDF}

// Options is the per-call configuration. Zero values take defaults.
type Options struct {
	AspectRatio float64     `json:"aspect_ratio,omitempty"`
	Refresh     bool        `json:"refresh,omitempty"` // skip cache reads
	Formats     []string    `json:"formats,omitempty"`
	PNGScale    float64     `json:"png_scale,omitempty"`
	Logger      *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Layout is the flattened layout.
	Layout graph.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int // input nodes, root included
	EdgeCount   int // input edges
	LayoutNodes int
	LayoutEdges int
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat reports an INVALID_FORMAT error unless format is one of
// [Formats].
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats...)
}

// ValidateFormats is [ValidateFormat] over a list.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

var discard = log.NewWithOptions(io.Discard, log.Options{})

// normalizeLayout fills the layout defaults and checks the aspect ratio.
func (o *Options) normalizeLayout() error {
	if o.AspectRatio == 0 {
		o.AspectRatio = DefaultAspectRatio
	}
	if o.Logger == nil {
		o.Logger = discard
	}
	return errors.ValidateAspectRatio(o.AspectRatio)
}

// normalizeRender fills the render defaults and checks every format.
func (o *Options) normalizeRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = discard
	}
	return ValidateFormats(o.Formats)
}

// Normalize prepares o for a full pipeline run: defaults are filled in and
// the aspect ratio and formats validated.
func (o *Options) Normalize() error {
	if err := o.normalizeLayout(); err != nil {
		return err
	}
	return o.normalizeRender()
}
