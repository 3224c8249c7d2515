// Package cli implements the resourcemap command-line interface.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/resourcemap/pkg/buildinfo"
	"github.com/matzehuels/resourcemap/pkg/cache"
	"github.com/matzehuels/resourcemap/pkg/config"
	"github.com/matzehuels/resourcemap/pkg/layout"
	"github.com/matzehuels/resourcemap/pkg/pipeline"
	"github.com/matzehuels/resourcemap/pkg/solver/graphviz"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "resourcemap"

	// layoutSuffix marks layout files written by the layout command.
	layoutSuffix = ".layout.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "resourcemap lays out nested resource graphs",
		Long: `resourcemap computes positions and edge routes for nested graphs of
infrastructure resources (clusters, namespaces, workloads) and renders them
as JSON, SVG, PNG or PDF. It also serves the layout engine over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "engine", cfg.Layout.Engine, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// engineFlags are the per-command overrides of the [layout] and [cache]
// config sections.
type engineFlags struct {
	engine      string
	fullOffsets bool
	noCache     bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.engine, "engine", "", "layout engine: graphviz, none (default from config)")
	cmd.Flags().BoolVar(&f.fullOffsets, "full-offsets", false, "offset edges by their full ancestor chain")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply returns cfg with the flag overrides applied and validated.
func (f engineFlags) apply(cfg config.Config) (config.Config, error) {
	if f.engine != "" {
		cfg.Layout.Engine = f.engine
	}
	if f.fullOffsets {
		cfg.Layout.OffsetMode = layout.OffsetFullChain.String()
	}
	if f.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use. The returned function
// releases the cache and the solver.
func (c *CLI) newRunner(ctx context.Context, flags engineFlags) (*pipeline.Runner, func(), error) {
	cfg, err := flags.apply(c.Config)
	if err != nil {
		return nil, nil, err
	}

	store, err := cache.Open(ctx, cfg.Cache.Options())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
		store = cache.NewNullCache()
	}

	engine, closeSolver := c.newEngine(ctx, cfg.Layout)
	var keyer cache.Keyer
	if cfg.Cache.KeyPrefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.KeyPrefix)
	}
	runner := pipeline.NewRunner(store, keyer, engine, c.Logger)
	if engine.HasSolver() {
		runner.EngineName = cfg.Layout.Engine
	}
	runner.LayoutTTL = cfg.Cache.TTL.Duration

	cleanup := func() {
		if err := runner.Close(); err != nil {
			c.Logger.Debug("close cache", "error", err)
		}
		closeSolver()
	}
	return runner, cleanup, nil
}

// newEngine builds the layout engine named by lc. When Graphviz cannot be
// started the engine runs without a solver and every layout is empty.
func (c *CLI) newEngine(ctx context.Context, lc config.LayoutConfig) (*layout.Engine, func()) {
	mode, _ := layout.ParseOffsetMode(lc.OffsetMode)
	opts := []layout.Option{layout.WithLogger(c.Logger), layout.WithOffsetMode(mode)}

	if lc.Engine == config.EngineNone {
		return layout.New(nil, opts...), func() {}
	}

	gv, err := graphviz.New(ctx, graphviz.WithLogger(c.Logger))
	if err != nil {
		c.Logger.Warn("graphviz unavailable, layouts will be empty", "error", err)
		return layout.New(nil, opts...), func() {}
	}
	return layout.New(gv, opts...), func() {
		if err := gv.Close(); err != nil {
			c.Logger.Debug("close graphviz", "error", err)
		}
	}
}

// aspectRatio returns flag when set and the configured default otherwise.
func (c *CLI) aspectRatio(flag float64) float64 {
	if flag != 0 {
		return flag
	}
	return c.Config.Layout.AspectRatio
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// basePath strips the graph or layout extension from input, or uses output
// when given.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		for _, f := range pipeline.Formats {
			if ext == "."+f {
				return strings.TrimSuffix(output, ext)
			}
		}
		return output
	}
	if strings.HasSuffix(input, layoutSuffix) {
		return strings.TrimSuffix(input, layoutSuffix)
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
