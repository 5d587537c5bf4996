package infrastructure

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"mfspulse/internal/config"
)

// TracerName is the instrumentation scope for pipeline spans.
const TracerName = "mfspulse/pipeline"

// InitTracing configures a tracer provider that writes spans to stdout and
// registers it globally. The returned shutdown function flushes pending
// spans; call it on exit.
func InitTracing(ctx context.Context) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.AppName),
		semconv.ServiceVersion(config.AppVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build otel resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// Tracer returns the pipeline tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartStageSpan opens a span for one pipeline stage with the run ID
// attached.
func StartStageSpan(ctx context.Context, stage, runID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, stage, trace.WithAttributes(
		attribute.String("pipeline.run_id", runID),
		attribute.String("pipeline.stage", stage),
	))
}
