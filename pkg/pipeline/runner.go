package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/resourcemap/pkg/cache"
	"github.com/matzehuels/resourcemap/pkg/graph"
	"github.com/matzehuels/resourcemap/pkg/layout"
	"github.com/matzehuels/resourcemap/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// EngineNone names an engine without a solver in cache keys.
const EngineNone = "none"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its dependencies. Multiple goroutines
// can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Engine *layout.Engine
	Logger *log.Logger

	// EngineName identifies the solver in cache keys, so layouts from
	// different solvers never collide.
	EngineName string

	// LayoutTTL overrides cache.TTLLayout when positive.
	LayoutTTL time.Duration
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If engine is nil, every layout degrades to an empty result.
func NewRunner(c cache.Cache, keyer cache.Keyer, engine *layout.Engine, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if engine == nil {
		engine = layout.New(nil, layout.WithLogger(logger))
	}
	name := "solver"
	if !engine.HasSolver() {
		name = EngineNone
	}
	return &Runner{
		Cache:      c,
		Keyer:      keyer,
		Engine:     engine,
		Logger:     logger,
		EngineName: name,
	}
}

// Execute runs layout and render for g with caching.
func (r *Runner) Execute(ctx context.Context, g *graph.Node, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}
	if hash, err := GraphHash(g); err == nil {
		result.GraphHash = hash
	}
	result.Stats.NodeCount = graph.NodeCount(g)
	result.Stats.EdgeCount = graph.EdgeCount(g)

	layoutStart := time.Now()
	res, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.LayoutNodes = len(res.Nodes)
	result.Stats.LayoutEdges = len(res.Edges)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GraphHash returns the content hash of g's canonical JSON encoding.
// Graphs that cannot be encoded have no hash.
func GraphHash(g *graph.Node) (string, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return "", fmt.Errorf("hash graph: %w", err)
	}
	return cache.Hash(data), nil
}

// LayoutKey returns the cache key for a layout of g under opts.
func (r *Runner) LayoutKey(g *graph.Node, opts Options) (string, error) {
	hash, err := GraphHash(g)
	if err != nil {
		return "", err
	}
	return r.Keyer.LayoutKey(hash, cache.LayoutKeyOpts{
		AspectRatio: opts.AspectRatio,
		Engine:      r.EngineName,
		OffsetMode:  r.Engine.OffsetMode().String(),
	}), nil
}

// LayoutWithCacheInfo computes a layout with caching and reports whether it
// came from the cache. Degraded layouts from an engine without a solver are
// never cached, and neither are layouts of graphs without a hash.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Node, opts Options) (graph.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.normalizeLayout(); err != nil {
		return graph.Result{}, false, err
	}
	hooks := observability.Cache()

	key, err := r.LayoutKey(g, opts)
	if err != nil {
		opts.Logger.Warn("layout cache skipped", "error", err)
	}
	cacheable := err == nil
	if cacheable && !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("layout cache read failed", "error", err)
		}
		if err == nil && hit {
			if cached, err := graph.UnmarshalResult(data); err == nil {
				hooks.OnCacheHit(ctx, keyTypeLayout)
				return cached, true, nil
			}
			// Undecodable entries are recomputed
		}
		hooks.OnCacheMiss(ctx, keyTypeLayout)
	}

	res, err := r.Engine.Apply(ctx, g, opts.AspectRatio)
	if err != nil {
		return graph.Result{}, false, err
	}

	if cacheable && r.Engine.HasSolver() {
		if data, err := graph.MarshalResult(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.layoutTTL()); err != nil {
				opts.Logger.Warn("layout cache write failed", "error", err)
			} else {
				hooks.OnCacheSet(ctx, keyTypeLayout, len(data))
			}
		}
	}
	return res, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *graph.Node, opts Options) (graph.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res graph.Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.normalizeRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	layoutData, err := graph.MarshalResult(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Format: format})
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keyFor(format))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			return artifacts, true, nil
		}
		hooks.OnCacheMiss(ctx, keyTypeArtifact)
	}

	renderHooks := observability.Render()
	renderHooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(res, opts)
	renderHooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if err := r.Cache.Set(ctx, keyFor(format), data, cache.TTLArtifact); err == nil {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res graph.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) layoutTTL() time.Duration {
	if r.LayoutTTL > 0 {
		return r.LayoutTTL
	}
	return cache.TTLLayout
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
