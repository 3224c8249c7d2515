package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/resourcemap/pkg/observability"
)

// Hooks records layout, render and cache events on the current span.
// Register it with observability.SetLayoutHooks and friends.
type Hooks struct{}

var (
	_ observability.LayoutHooks = Hooks{}
	_ observability.RenderHooks = Hooks{}
	_ observability.CacheHooks  = Hooks{}
)

func (Hooks) OnLayoutStart(ctx context.Context, rootID string, nodeCount int) {
	trace.SpanFromContext(ctx).AddEvent("layout.start", trace.WithAttributes(
		attribute.String("layout.root", rootID),
		attribute.Int("layout.input_nodes", nodeCount),
	))
}

func (Hooks) OnLayoutComplete(ctx context.Context, rootID string, stats observability.LayoutStats, d time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	attrs := []attribute.KeyValue{
		attribute.String("layout.root", rootID),
		attribute.Int("layout.nodes", stats.Nodes),
		attribute.Int("layout.edges", stats.Edges),
		attribute.Int64("layout.duration_ms", d.Milliseconds()),
	}
	if err != nil {
		span.RecordError(err)
	}
	span.AddEvent("layout.complete", trace.WithAttributes(attrs...))
}

func (Hooks) OnSolverUnavailable(ctx context.Context, rootID string) {
	trace.SpanFromContext(ctx).AddEvent("layout.degraded", trace.WithAttributes(
		attribute.String("layout.root", rootID),
	))
}

func (Hooks) OnRenderStart(ctx context.Context, formats []string) {
	trace.SpanFromContext(ctx).AddEvent("render.start", trace.WithAttributes(
		attribute.StringSlice("render.formats", formats),
	))
}

func (Hooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
	}
	span.AddEvent("render.complete", trace.WithAttributes(
		attribute.StringSlice("render.formats", formats),
		attribute.Int64("render.duration_ms", d.Milliseconds()),
	))
}

func (Hooks) OnCacheHit(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.hit", trace.WithAttributes(attribute.String("cache.key_type", keyType)))
}

func (Hooks) OnCacheMiss(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.miss", trace.WithAttributes(attribute.String("cache.key_type", keyType)))
}

func (Hooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	trace.SpanFromContext(ctx).AddEvent("cache.set", trace.WithAttributes(
		attribute.String("cache.key_type", keyType),
		attribute.Int("cache.size", size),
	))
}

// Register installs Hooks as the global observability hooks.
func Register() {
	observability.SetLayoutHooks(Hooks{})
	observability.SetRenderHooks(Hooks{})
	observability.SetCacheHooks(Hooks{})
}
