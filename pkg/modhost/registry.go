package modhost

import (
	"context"
	"errors"

	"github.com/randalmurphal/modhost/pkg/modhost/observability"
	"github.com/randalmurphal/modhost/pkg/modhost/registry"
)

// Registry owns the set of loaded modules, keyed by canonical name.
//
// Iteration order is registration order: a module keeps the position it was
// added at, and a module that replaces another under the same name is a new
// registration placed last. Every dispatch visits modules in this order.
//
// Registry is safe for concurrent use. Hooks are never called while the
// registry lock is held, so an unload hook may itself add or remove modules.
type Registry struct {
	entries *registry.Ordered[string, *entry]
	opts    options
}

// NewRegistry creates an empty registry.
// It honors WithLogger, WithMetrics and WithJournal.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		entries: registry.New[string, *entry](),
		opts:    applyOptions(opts),
	}
}

// Add registers m under Normalize(m.Name()).
//
// If a module is already registered under that name it is removed and its
// OnUnload runs before m becomes visible. m is eligible for the next
// dispatch as soon as Add returns. A nil module is ignored.
func (r *Registry) Add(m Module) {
	if m == nil {
		return
	}
	r.add(m)
}

// add registers m and returns its new entry.
func (r *Registry) add(m Module) *entry {
	e := newEntry(m)

	replaced := false
	for !r.entries.Insert(e.name, e) {
		if prior, ok := r.entries.Take(e.name); ok {
			r.unload(prior)
			replaced = true
		}
	}

	if replaced {
		observability.LogModuleReplaced(r.opts.logger, e.name)
	} else {
		observability.LogModuleAdded(r.opts.logger, e.name)
	}
	return e
}

// Get returns the module registered under name, in any capitalization.
func (r *Registry) Get(name string) (Module, bool) {
	e, ok := r.entries.Get(Normalize(name))
	if !ok {
		return nil, false
	}
	return e.module, true
}

// Has reports whether a module is registered under name.
func (r *Registry) Has(name string) bool {
	return r.entries.Has(Normalize(name))
}

// Remove unregisters m by its canonical name and runs its OnUnload.
// It reports whether anything was removed.
func (r *Registry) Remove(m Module) bool {
	if m == nil {
		return false
	}
	return r.RemoveName(m.Name())
}

// RemoveName unregisters the module registered under name and runs its
// OnUnload. Removing a name that is not registered is a no-op.
func (r *Registry) RemoveName(name string) bool {
	e, ok := r.entries.Take(Normalize(name))
	if !ok {
		return false
	}
	r.unload(e)
	observability.LogModuleRemoved(r.opts.logger, e.name)
	return true
}

// Snapshot returns the registered modules in dispatch order.
// The slice is a copy; later registry changes do not affect it.
func (r *Registry) Snapshot() []Module {
	entries := r.entries.Snapshot()
	modules := make([]Module, len(entries))
	for i, e := range entries {
		modules[i] = e.module
	}
	return modules
}

// Names returns the canonical names of registered modules in dispatch order.
func (r *Registry) Names() []string {
	return r.entries.Keys()
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	return r.entries.Len()
}

// snapshot returns the current entries in dispatch order.
func (r *Registry) snapshot() []*entry {
	return r.entries.Snapshot()
}

// lookup returns the entry registered under name.
func (r *Registry) lookup(name string) (*entry, bool) {
	return r.entries.Get(Normalize(name))
}

// unload runs the entry's OnUnload hook at most once.
func (r *Registry) unload(e *entry) {
	if !e.unloaded.CompareAndSwap(false, true) || e.hooks.OnUnload == nil {
		return
	}
	err := protect(e.name, "unload", func() error {
		e.hooks.OnUnload()
		return nil
	})
	var fault *HandlerFault
	if errors.As(err, &fault) {
		r.opts.reportFault(context.Background(), fault)
	}
}
