package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/layout"
	"github.com/matzehuels/resourcemap/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output      string
	aspectRatio float64
	refresh     bool
	engine      engineFlags
}

// layoutCommand creates the layout command for computing positions and edge routes.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a layout for a nested resource graph",
		Long: `Compute a layout for a nested resource graph.

The layout command reads a graph.json file and writes the flattened layout
(render nodes with parent-relative positions and routed edges) to
<input>.layout.json. The output can be turned into SVG, PNG or PDF with
'render'.

When no solver is available the layout is empty and a warning is printed.
Results are cached according to the [cache] config section.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().Float64Var(&opts.aspectRatio, "aspect-ratio", 0, "container width/height ratio (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached layouts")
	opts.engine.register(cmd)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts layoutOpts) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, closeRunner, err := c.newRunner(ctx, opts.engine)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer closeRunner()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d nodes...", graph.NodeCount(g)))
	spinner.Start()

	res, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, pipeline.Options{
		AspectRatio: c.aspectRatio(opts.aspectRatio),
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = basePath("", input) + layoutSuffix
	}
	if err := graph.WriteResultFile(res, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	summary := summarize(res, cacheHit, runner.Engine.HasSolver())
	if summary.Degraded {
		printWarning("No solver available, wrote an empty layout")
	} else {
		printSuccess("Layout complete")
	}
	printFile(outputPath)
	printStats(summary)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// summarize counts the layout's nodes, edges and overlapping siblings.
func summarize(res graph.Result, cached, hasSolver bool) layoutSummary {
	return layoutSummary{
		Nodes:    len(res.Nodes),
		Edges:    len(res.Edges),
		Overlaps: len(layout.NewIndex(res).Overlaps()),
		Cached:   cached,
		Degraded: !hasSolver,
	}
}
