package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewManagerDefaults(t *testing.T) {
	m, err := NewManager(context.Background(), Config{ServiceName: "esms-test"})
	require.NoError(t, err)
	require.NotNil(t, m.Tracer())
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestNewManagerHonorsInjectedProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	m, err := NewManager(context.Background(), Config{TracerProvider: provider})
	require.NoError(t, err)

	_, span := m.Tracer().Start(context.Background(), "probe")
	span.End()
	require.Len(t, recorder.Ended(), 1)
	require.Equal(t, "probe", recorder.Ended()[0].Name())

	// The manager does not own an injected provider.
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestNilManagerIsNoopSafe(t *testing.T) {
	var m *Manager
	require.Nil(t, m.Tracer())
	require.NoError(t, m.Shutdown(context.Background()))
}
