// Package observability provides the diagnostics surface of the module
// host: structured logging, metrics, and tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every log helper accepts a nil logger and does nothing with it.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds module context to a logger.
// Returns a new logger with module and kind fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "keyblock", "key")
//	enriched.Warn("odd key code") // includes module, kind
func EnrichLogger(logger *slog.Logger, module, kind string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("module", module),
		slog.String("kind", kind),
	)
}

// LogModuleAdded logs a module becoming eligible for dispatch.
func LogModuleAdded(logger *slog.Logger, module string) {
	if logger == nil {
		return
	}
	logger.Debug("module added",
		slog.String("module", module),
	)
}

// LogModuleReplaced logs a module being displaced by a same-named one.
func LogModuleReplaced(logger *slog.Logger, module string) {
	if logger == nil {
		return
	}
	logger.Info("module replaced",
		slog.String("module", module),
	)
}

// LogModuleRemoved logs a module leaving the registry.
func LogModuleRemoved(logger *slog.Logger, module string) {
	if logger == nil {
		return
	}
	logger.Debug("module removed",
		slog.String("module", module),
	)
}

// LogHandlerFault logs a module handler that failed while handling an event.
// Dispatch continues with the next module.
func LogHandlerFault(logger *slog.Logger, module, kind string, err error) {
	if logger == nil {
		return
	}
	logger.Error("module handler faulted",
		slog.String("module", module),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
}

// LogQuarantined logs a module that stopped participating in dispatch.
func LogQuarantined(logger *slog.Logger, module string, faults int) {
	if logger == nil {
		return
	}
	logger.Warn("module quarantined",
		slog.String("module", module),
		slog.Int("faults", faults),
	)
}

// LogDispatchRejected logs a dispatch refused because another was in progress.
func LogDispatchRejected(logger *slog.Logger, kind string) {
	if logger == nil {
		return
	}
	logger.Warn("dispatch rejected: another dispatch in progress",
		slog.String("kind", kind),
	)
}

// LogLifecycle logs completion of a bulk lifecycle operation.
func LogLifecycle(logger *slog.Logger, op string, modules int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("lifecycle operation completed",
		slog.String("op", op),
		slog.Int("modules", modules),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogLifecycleIgnored logs a lifecycle call that is illegal in the current
// state and was ignored.
func LogLifecycleIgnored(logger *slog.Logger, op, state string) {
	if logger == nil {
		return
	}
	logger.Warn("lifecycle operation ignored",
		slog.String("op", op),
		slog.String("state", state),
	)
}

// LogLifecycleFailure logs one module failing a lifecycle step.
// The operation continues with the remaining modules.
func LogLifecycleFailure(logger *slog.Logger, op, module string, err error) {
	if logger == nil {
		return
	}
	logger.Error("module lifecycle step failed",
		slog.String("op", op),
		slog.String("module", module),
		slog.String("error", err.Error()),
	)
}

// LogJournalError logs a fault that could not be written to the journal (non-fatal).
func LogJournalError(logger *slog.Logger, module string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("fault journal write failed",
		slog.String("module", module),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
