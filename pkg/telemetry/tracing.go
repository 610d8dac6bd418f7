// Package telemetry wires OpenTelemetry tracing for the SDK. The
// transport records one client span per request through the tracer
// exposed here; everything is no-op safe when unconfigured.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/esms-io/esms-go/telemetry"

// Config drives how tracing is initialized.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint enables OTLP/HTTP export when non-empty (host:port).
	Endpoint string
	// Insecure disables TLS toward the collector.
	Insecure bool
	// TracerProvider overrides the constructed provider, for tests.
	TracerProvider trace.TracerProvider
}

// Manager owns the tracer provider and its shutdown.
type Manager struct {
	tracer   trace.Tracer
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewManager builds a tracing manager. Without an Endpoint the spans
// stay in-process (whatever sampler/exporter the provider defaults to).
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.TracerProvider != nil {
		return &Manager{
			tracer:   cfg.TracerProvider.Tracer(instrumentationName),
			provider: cfg.TracerProvider,
		}, nil
	}

	name := cfg.ServiceName
	if name == "" {
		name = "esms-go"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.Endpoint != "" {
		exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	return &Manager{
		tracer:   provider.Tracer(instrumentationName),
		provider: provider,
		shutdown: provider.Shutdown,
	}, nil
}

// Tracer returns the tracer the transport instruments requests with.
func (m *Manager) Tracer() trace.Tracer {
	if m == nil {
		return nil
	}
	return m.tracer
}

// Shutdown flushes and stops the provider when this manager owns one.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil || m.shutdown == nil {
		return nil
	}
	return m.shutdown(ctx)
}
