package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest installs a test tracer provider with an in-memory exporter.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}

	return exporter, cleanup
}

func TestStartDispatchSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	ctx, span := sm.StartDispatchSpan(context.Background(), "key")
	require.NotNil(t, span)

	sm.AddSpanEvent(ctx, "dispatch.suppressed", attribute.String("module", "keyblock"))
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	s := spans[0]
	assert.Equal(t, "modhost.dispatch.key", s.Name)
	assert.Equal(t, codes.Ok, s.Status.Code)
	assert.Contains(t, s.Attributes, attribute.String("event.kind", "key"))
	require.Len(t, s.Events, 1)
	assert.Equal(t, "dispatch.suppressed", s.Events[0].Name)
	assert.Contains(t, s.Events[0].Attributes, attribute.String("module", "keyblock"))
}

func TestStartLifecycleSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	_, span := sm.StartLifecycleSpan(context.Background(), "reload")
	sm.EndSpanWithError(span, errors.New("chatlog: bad capacity"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	s := spans[0]
	assert.Equal(t, "modhost.lifecycle.reload", s.Name)
	assert.Equal(t, codes.Error, s.Status.Code)
	assert.Equal(t, "chatlog: bad capacity", s.Status.Description)
	assert.Contains(t, s.Attributes, attribute.String("lifecycle.op", "reload"))
}

func TestEndSpanWithError_NilSpan(t *testing.T) {
	sm := NewSpanManager()
	assert.NotPanics(t, func() {
		sm.EndSpanWithError(nil, errors.New("ignored"))
	})
}

func TestAddSpanEvent_NoSpan(t *testing.T) {
	sm := NewSpanManager()
	assert.NotPanics(t, func() {
		sm.AddSpanEvent(context.Background(), "orphan")
	})
}

func TestNewSpanManagerFor(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	sm := NewSpanManagerFor(tp)
	_, span := sm.StartLifecycleSpan(context.Background(), "load")
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "modhost.lifecycle.load", spans[0].Name)
}
