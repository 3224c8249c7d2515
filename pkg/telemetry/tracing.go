// Package telemetry wires OpenTelemetry tracing into resourcemap.
//
// Tracing is off unless [Init] is given an OTLP/HTTP endpoint. Without it the
// global no-op tracer provider stays in place and every helper here is cheap.
// [Hooks] forwards layout and cache events from pkg/observability onto the
// span carried by the request context.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is reported when Config.ServiceName is empty.
const DefaultServiceName = "resourcemap"

// Config configures tracing.
type Config struct {
	Endpoint     string  // OTLP/HTTP endpoint URL; empty disables tracing
	ServiceName  string  // service.name resource attribute
	SamplingRate float64 // 0..1, values >= 1 sample everything
}

var (
	mu         sync.RWMutex
	tracerName = DefaultServiceName
)

// Init installs a global tracer provider exporting to cfg.Endpoint.
// The returned function flushes and stops the exporter. When tracing is
// disabled the shutdown function is a no-op.
func Init(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", name)),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(Sampler(cfg.SamplingRate))),
	)
	Install(tp, name)
	return tp.Shutdown, nil
}

// Install makes tp the global tracer provider and names the tracer used by
// [StartSpan]. Tests use it with an in-memory span recorder.
func Install(tp trace.TracerProvider, name string) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	mu.Lock()
	tracerName = name
	mu.Unlock()
}

// Sampler maps a sampling rate to a sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the resourcemap tracer from the global provider.
func Tracer() trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	return otel.Tracer(tracerName)
}

// StartSpan starts a span named name with optional attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddSpanAttributes adds attributes to the span in ctx.
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TraceID returns the trace id in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
