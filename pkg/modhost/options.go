package modhost

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/modhost/pkg/modhost/config"
	"github.com/randalmurphal/modhost/pkg/modhost/journal"
	"github.com/randalmurphal/modhost/pkg/modhost/observability"
)

// options holds configuration shared by Registry, Dispatcher and Controller.
// Each component reads the fields it needs.
type options struct {
	logger     *slog.Logger
	metrics    observability.MetricsRecorder
	spans      observability.SpanManager
	journal    journal.Store
	faultLimit int
	settings   config.Source
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		settings: config.Static(config.New(nil)),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Registry, Dispatcher or Controller.
type Option func(*options)

// WithLogger sets the logger for diagnostics.
// Default: slog.Default(). A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
//
// Example:
//
//	d := modhost.NewDispatcher(reg, modhost.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracing sets the span manager used for dispatch and lifecycle spans.
// Default: observability.NoopSpanManager{}
func WithTracing(sm observability.SpanManager) Option {
	return func(o *options) {
		if sm != nil {
			o.spans = sm
		}
	}
}

// WithJournal records every handler fault in store.
// Journal write failures are logged and otherwise ignored.
func WithJournal(store journal.Store) Option {
	return func(o *options) {
		o.journal = store
	}
}

// WithFaultLimit quarantines a module after n handler faults: it stops
// receiving events until it is added again.
// Default: 0 (never quarantine; a faulting module only misses the current event)
func WithFaultLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.faultLimit = n
		}
	}
}

// WithSettings sets where the Controller reads module settings from.
// Default: an empty configuration.
func WithSettings(src config.Source) Option {
	return func(o *options) {
		if src != nil {
			o.settings = src
		}
	}
}

// reportFault logs, counts and journals a recovered handler panic.
func (o *options) reportFault(ctx context.Context, f *HandlerFault) {
	observability.LogHandlerFault(o.logger, f.Module, f.Kind, f)
	o.metrics.RecordHandlerFault(ctx, f.Module, f.Kind)

	if o.journal == nil {
		return
	}
	err := o.journal.Record(ctx, journal.Fault{
		Module:  f.Module,
		Kind:    f.Kind,
		Message: fmt.Sprint(f.Value),
		Stack:   f.Stack,
	})
	if err != nil {
		observability.LogJournalError(o.logger, f.Module, err)
	}
}
