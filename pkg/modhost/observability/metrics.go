package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records module host metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one broadcast: how many modules ran and
	// whether one of them suppressed the event.
	RecordDispatch(ctx context.Context, kind string, invoked int, suppressed bool, duration time.Duration)

	// RecordRejected records a dispatch refused by the in-progress guard.
	RecordRejected(ctx context.Context, kind string)

	// RecordHandlerFault records a module handler failure.
	RecordHandlerFault(ctx context.Context, module, kind string)

	// RecordLifecycle records a bulk lifecycle operation.
	RecordLifecycle(ctx context.Context, op string, modules int, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	invoked         metric.Int64Histogram
	suppressed      metric.Int64Counter
	rejected        metric.Int64Counter
	handlerFaults   metric.Int64Counter
	lifecycleOps    metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance on the global provider.
func newOtelMetrics() (*otelMetrics, error) {
	return metricsFor(otel.Meter("modhost"))
}

// NewMetricsRecorderFor returns a MetricsRecorder bound to mp instead of the
// global meter provider.
func NewMetricsRecorderFor(mp metric.MeterProvider) (MetricsRecorder, error) {
	return metricsFor(mp.Meter("modhost"))
}

func metricsFor(meter metric.Meter) (*otelMetrics, error) {

	dispatches, err := meter.Int64Counter("modhost.dispatch.count",
		metric.WithDescription("Number of event dispatches"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("modhost.dispatch.latency_ms",
		metric.WithDescription("Event dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	invoked, err := meter.Int64Histogram("modhost.dispatch.invoked",
		metric.WithDescription("Number of module handlers invoked per dispatch"),
	)
	if err != nil {
		return nil, err
	}

	suppressed, err := meter.Int64Counter("modhost.dispatch.suppressed",
		metric.WithDescription("Number of dispatches a module suppressed"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("modhost.dispatch.rejected",
		metric.WithDescription("Number of dispatches refused while another was in progress"),
	)
	if err != nil {
		return nil, err
	}

	handlerFaults, err := meter.Int64Counter("modhost.handler.faults",
		metric.WithDescription("Number of module handler faults"),
	)
	if err != nil {
		return nil, err
	}

	lifecycleOps, err := meter.Int64Counter("modhost.lifecycle.ops",
		metric.WithDescription("Number of bulk lifecycle operations"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		invoked:         invoked,
		suppressed:      suppressed,
		rejected:        rejected,
		handlerFaults:   handlerFaults,
		lifecycleOps:    lifecycleOps,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records one broadcast.
func (m *otelMetrics) RecordDispatch(ctx context.Context, kind string, invoked int, suppressed bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))

	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.invoked.Record(ctx, int64(invoked), attrs)

	if suppressed {
		m.suppressed.Add(ctx, 1, attrs)
	}
}

// RecordRejected records a refused dispatch.
func (m *otelMetrics) RecordRejected(ctx context.Context, kind string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordHandlerFault records a module handler failure.
func (m *otelMetrics) RecordHandlerFault(ctx context.Context, module, kind string) {
	m.handlerFaults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("module", module),
		attribute.String("kind", kind),
	))
}

// RecordLifecycle records a bulk lifecycle operation.
func (m *otelMetrics) RecordLifecycle(ctx context.Context, op string, modules int, err error) {
	m.lifecycleOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.Int("modules", modules),
		attribute.Bool("success", err == nil),
	))
}
