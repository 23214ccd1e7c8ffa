package journal

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory fault journal.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	faults []Fault
	closed bool
}

// NewMemoryStore creates a new in-memory fault journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements Store.
func (m *MemoryStore) Record(_ context.Context, f Fault) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.faults = append(m.faults, stamp(f))
	return nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, module string, limit int) ([]Fault, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []Fault
	for i := len(m.faults) - 1; i >= 0; i-- {
		f := m.faults[i]
		if module != "" && f.Module != module {
			continue
		}
		out = append(out, f)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.faults), nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context, module string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if module == "" {
		m.faults = nil
		return nil
	}
	kept := m.faults[:0]
	for _, f := range m.faults {
		if f.Module != module {
			kept = append(kept, f)
		}
	}
	m.faults = kept
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.faults = nil
	return nil
}
