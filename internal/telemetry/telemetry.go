// Package telemetry configures the tracer provider used to wrap adapter
// executions in spans.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName identifies spans emitted by this process.
const TracerName = "github.com/tandemkit/tandem"

// Shutdown flushes any pending spans.
type Shutdown func(ctx context.Context) error

// Init sets up the global tracer provider. When disabled, a no-op provider
// keeps span creation free. Span export goes to stderr so stdout stays
// reserved for the response envelope.
func Init(enabled bool) (trace.Tracer, Shutdown, error) {
	if !enabled {
		provider := noop.NewTracerProvider()
		otel.SetTracerProvider(provider)
		return provider.Tracer(TracerName), func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	return provider.Tracer(TracerName), provider.Shutdown, nil
}
