package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file (single format) or base path
	formats     []string // json, svg, png, pdf
	aspectRatio float64
	scale       float64 // PNG scale factor
	refresh     bool
	engine      engineFlags
}

// renderCommand creates the render command for generating artifacts.
// Input is either a graph (laid out first) or a layout file written by
// the layout command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultPNGScale}

	cmd := &cobra.Command{
		Use:   "render [graph.json | graph.layout.json]",
		Short: "Render a graph or layout to SVG, PNG, PDF or JSON",
		Long: `Render a graph or a precomputed layout.

Inputs ending in .layout.json are rendered as-is. Any other input is read as
a graph and laid out first. PNG and PDF output require rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().Float64Var(&opts.aspectRatio, "aspect-ratio", 0, "container width/height ratio (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached layouts and artifacts")
	opts.engine.register(cmd)

	return cmd
}

// runRender lays out (unless given a layout file) and renders input.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	runner, closeRunner, err := c.newRunner(ctx, opts.engine)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer closeRunner()

	pipeOpts := pipeline.Options{
		AspectRatio: c.aspectRatio(opts.aspectRatio),
		Refresh:     opts.refresh,
		Formats:     opts.formats,
		PNGScale:    opts.scale,
		Logger:      c.Logger,
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.formats, ", ")+"...")
	spinner.Start()

	var (
		artifacts map[string][]byte
		summary   layoutSummary
	)
	if strings.HasSuffix(input, layoutSuffix) {
		res, err := graph.ReadResultFile(input)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("load layout %s: %w", input, err)
		}
		var hit bool
		artifacts, hit, err = runner.RenderWithCacheInfo(ctx, res, pipeOpts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render: %w", err)
		}
		summary = summarize(res, hit, true)
	} else {
		g, err := graph.ReadGraphFile(input)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("load graph %s: %w", input, err)
		}
		result, err := runner.Execute(ctx, g, pipeOpts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render: %w", err)
		}
		artifacts = result.Artifacts
		summary = summarize(result.Layout, result.CacheInfo.LayoutHit, runner.Engine.HasSolver())
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(artifacts)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, opts.formats, input, opts.output)
	if err != nil {
		return err
	}

	if summary.Degraded {
		printWarning("No solver available, rendered an empty layout")
	} else {
		printSuccess("Render complete")
	}
	for _, p := range paths {
		printFile(p)
	}
	printStats(summary)
	return nil
}

// outputPath returns where the artifact in format is written.
// A single format with an explicit output goes exactly there.
func outputPath(format string, formats []string, input, output string) string {
	if output != "" && len(formats) == 1 {
		return output
	}
	base := basePath(output, input)
	if format == pipeline.FormatJSON {
		return base + layoutSuffix
	}
	return base + "." + format
}

// writeArtifacts writes every artifact to disk and returns the paths sorted
// by format name.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	ordered := append([]string(nil), formats...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var paths []string
	for _, format := range ordered {
		data, ok := artifacts[format]
		if !ok {
			return nil, fmt.Errorf("renderer produced no %s output", format)
		}
		path := outputPath(format, formats, input, output)
		if path == input {
			return nil, fmt.Errorf("refusing to overwrite input %s", input)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
