package telemetry

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/matzehuels/resourcemap/pkg/observability"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	Install(tp, "resourcemap-test")
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		if got := Sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("Sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
	if got := Sampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("Sampler(0.5) = %s, want ratio sampler", got)
	}
}

func TestSpanHelpers(t *testing.T) {
	sr := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "layout")
	if TraceID(ctx) == "" {
		t.Error("TraceID() empty inside a recorded span")
	}
	EndSpan(span, stderrors.New("boom"))

	ended := sr.Ended()
	if len(ended) != 1 {
		t.Fatalf("got %d ended spans, want 1", len(ended))
	}
	if ended[0].Name() != "layout" {
		t.Errorf("span name = %s, want layout", ended[0].Name())
	}
	if len(ended[0].Events()) == 0 {
		t.Error("EndSpan() should record the error as an event")
	}
	if TraceID(context.Background()) != "" {
		t.Error("TraceID() should be empty without a span")
	}
}

func TestHooksRecordEvents(t *testing.T) {
	sr := installRecorder(t)
	observability.Reset()
	t.Cleanup(observability.Reset)
	Register()

	ctx, span := StartSpan(context.Background(), "request")
	observability.Layout().OnLayoutStart(ctx, "root", 4)
	observability.Layout().OnLayoutComplete(ctx, "root", observability.LayoutStats{Nodes: 3, Edges: 1}, time.Millisecond, nil)
	observability.Cache().OnCacheMiss(ctx, "layout")
	observability.Cache().OnCacheSet(ctx, "layout", 128)
	span.End()

	ended := sr.Ended()
	if len(ended) != 1 {
		t.Fatalf("got %d spans, want 1", len(ended))
	}
	var names []string
	for _, e := range ended[0].Events() {
		names = append(names, e.Name)
	}
	want := []string{"layout.start", "layout.complete", "cache.miss", "cache.set"}
	if len(names) != len(want) {
		t.Fatalf("events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestTracingMiddleware(t *testing.T) {
	sr := installRecorder(t)

	h := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get(TraceIDHeader) == "" {
		t.Error("missing X-Trace-ID header")
	}
	ended := sr.Ended()
	if len(ended) != 1 || ended[0].Name() != "GET /healthz" {
		t.Errorf("spans = %v, want one span named GET /healthz", ended)
	}
}
