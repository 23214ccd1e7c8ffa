package modhost

import (
	"sync"
)

// tracker records hook invocations in order.
type tracker struct {
	mu    sync.Mutex
	calls []string
}

func (t *tracker) record(call string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, call)
}

func (t *tracker) all() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

func (t *tracker) count(call string) int {
	n := 0
	for _, c := range t.all() {
		if c == call {
			n++
		}
	}
	return n
}

// quiet disables logging in tests.
var quiet = WithLogger(nil)

// keyModule returns a module whose key handler records its name and
// optionally blocks the key.
func keyModule(name string, tr *tracker, block bool) Module {
	return NewModule(name, Hooks{
		OnKey: func(ev *KeyEvent) {
			tr.record(name)
			if block {
				ev.Blocked = true
			}
		},
		OnUnload: func() { tr.record("unload:" + name) },
	})
}

// loopModule returns a module that records its name on every tick.
func loopModule(name string, tr *tracker) Module {
	return NewModule(name, Hooks{
		OnLoop:   func() { tr.record(name) },
		OnUnload: func() { tr.record("unload:" + name) },
	})
}

// newTestHost builds a registry and dispatcher with logging disabled.
func newTestHost(opts ...Option) (*Registry, *Dispatcher) {
	opts = append([]Option{quiet}, opts...)
	reg := NewRegistry(opts...)
	return reg, NewDispatcher(reg, opts...)
}
