// Package journal records module handler faults for later inspection.
//
// A journal is a diagnostic sink: the dispatcher writes one Fault each time a
// module handler panics, and operators read them back with List. It never
// holds module state.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Store persists handler faults.
// Implementations must be safe for concurrent use.
type Store interface {
	// Record appends a fault. A zero ID or At is filled in by the store.
	Record(ctx context.Context, f Fault) error

	// List returns faults, most recent first.
	// An empty module lists faults for every module; limit <= 0 means no limit.
	List(ctx context.Context, module string, limit int) ([]Fault, error)

	// Count returns the number of stored faults.
	Count(ctx context.Context) (int, error)

	// Clear removes faults for a module, or all faults if module is empty.
	Clear(ctx context.Context, module string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Fault is one recorded handler failure.
type Fault struct {
	ID      string
	Module  string
	Kind    string
	Message string
	Stack   string
	At      time.Time
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("fault journal closed")
)

// stamp fills in the ID and timestamp of a fault if they are unset.
func stamp(f Fault) Fault {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.At.IsZero() {
		f.At = time.Now().UTC()
	}
	return f
}
