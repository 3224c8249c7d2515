// Package observability is a process-wide registry of instrumentation hooks.
//
// Libraries emit events through the registered hooks; binaries decide what
// receives them. Until something is registered every hook is a no-op, so
// pkg/layout and pkg/pipeline never import a tracing backend. The
// OpenTelemetry receiver is telemetry.Hooks, installed by telemetry.Register.
//
// Emitting:
//
//	observability.Layout().OnLayoutStart(ctx, root.ID, nodeCount)
//	// ... solve ...
//	observability.Layout().OnLayoutComplete(ctx, root.ID, stats, duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// LayoutStats summarizes a finished layout pass.
type LayoutStats struct {
	Nodes int // render nodes emitted
	Edges int // render edges emitted
}

// LayoutHooks receives events from the layout engine.
type LayoutHooks interface {
	// OnLayoutStart is called before the graph is converted for the solver.
	OnLayoutStart(ctx context.Context, rootID string, nodeCount int)

	// OnLayoutComplete is called after the solver returned, successfully or not.
	OnLayoutComplete(ctx context.Context, rootID string, stats LayoutStats, duration time.Duration, err error)

	// OnSolverUnavailable is called when a layout degrades to an empty result.
	OnSolverUnavailable(ctx context.Context, rootID string)
}

// RenderHooks receives events from artifact rendering.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopLayoutHooks ignores every layout event.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                                  {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, LayoutStats, time.Duration, error) {}
func (NoopLayoutHooks) OnSolverUnavailable(context.Context, string)                                 {}

type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// slot holds one registered hook set. Interfaces are boxed so that
// atomic.Pointer can store them.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.noop
}

func (s *slot[T]) set(h T) { s.p.Store(&h) }

var (
	layoutSlot = slot[LayoutHooks]{noop: NoopLayoutHooks{}}
	renderSlot = slot[RenderHooks]{noop: NoopRenderHooks{}}
	cacheSlot  = slot[CacheHooks]{noop: NoopCacheHooks{}}
)

// SetLayoutHooks installs h for all later layout events. Nil is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		layoutSlot.set(h)
	}
}

func SetRenderHooks(h RenderHooks) {
	if h != nil {
		renderSlot.set(h)
	}
}

func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

func Layout() LayoutHooks { return layoutSlot.get() }
func Render() RenderHooks { return renderSlot.get() }
func Cache() CacheHooks   { return cacheSlot.get() }

// Reset drops every registered hook.
func Reset() {
	layoutSlot.p.Store(nil)
	renderSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
}
