package modhost

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/randalmurphal/modhost/pkg/modhost/config"
	"github.com/randalmurphal/modhost/pkg/modhost/observability"
)

// State is the lifecycle state of a Controller.
type State int32

// Controller states.
const (
	StateUnloaded State = iota
	StateLoaded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Factory constructs one module. LoadModules calls each factory once.
type Factory func() (Module, error)

// Controller performs bulk lifecycle operations over a Registry:
// loading the default module set, unloading everything, and pushing
// configuration changes to loaded modules.
//
// Lifecycle calls are not dispatches. A module handler may call any of them
// while a dispatch is running; the registry snapshot of the running pass is
// unaffected.
type Controller struct {
	reg       *Registry
	factories []Factory
	opts      options

	state atomic.Int32
	ready atomic.Bool
}

// NewController creates a controller that loads modules from factories, in
// order, into reg. It honors WithSettings, WithLogger, WithMetrics,
// WithTracing and WithJournal.
func NewController(reg *Registry, factories []Factory, opts ...Option) *Controller {
	return &Controller{
		reg:       reg,
		factories: append([]Factory(nil), factories...),
		opts:      applyOptions(opts),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// LoadModules constructs and registers every module.
//
// Per factory: construct, Add, run OnLoad, deliver OnResourcesReady if
// resources were already announced, then deliver the module's settings via
// OnReloadConfig. A failing module is removed again (if it was added) and
// the rest keep loading; every failure is joined into the returned error.
//
// LoadModules while loaded returns ErrAlreadyLoaded and changes nothing.
func (c *Controller) LoadModules(ctx context.Context) (err error) {
	if !c.state.CompareAndSwap(int32(StateUnloaded), int32(StateLoaded)) {
		observability.LogLifecycleIgnored(c.opts.logger, "load", c.State().String())
		return ErrAlreadyLoaded
	}

	done := observability.TimedOperation()
	ctx, span := c.opts.spans.StartLifecycleSpan(ctx, "load")
	defer func() {
		c.opts.spans.EndSpanWithError(span, err)
		c.opts.metrics.RecordLifecycle(ctx, "load", c.reg.Len(), err)
		observability.LogLifecycle(c.opts.logger, "load", c.reg.Len(), done())
	}()

	var errs []error
	cfg, cfgErr := c.opts.settings()
	if cfgErr != nil {
		observability.LogLifecycleFailure(c.opts.logger, "load", "", cfgErr)
		errs = append(errs, fmt.Errorf("read settings: %w", cfgErr))
		cfg = config.New(nil)
	}

	for i, factory := range c.factories {
		if err := c.loadOne(ctx, i, factory, cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadOne runs the load sequence for a single factory.
func (c *Controller) loadOne(ctx context.Context, pos int, factory Factory, cfg config.Config) error {
	var m Module
	err := protect(fmt.Sprintf("factory[%d]", pos), "construct", func() error {
		var ferr error
		m, ferr = factory()
		if ferr == nil && m == nil {
			ferr = errors.New("factory returned no module")
		}
		return ferr
	})
	if err != nil {
		return c.failed(ctx, fmt.Sprintf("factory[%d]", pos), "construct", err)
	}

	e := c.reg.add(m)
	if cur, ok := c.reg.lookup(e.name); !ok || cur != e {
		// OnUnload of a replaced module removed or replaced this one.
		return nil
	}

	if err := c.step(ctx, e, "load", func(h *Hooks) error {
		if h.OnLoad == nil {
			return nil
		}
		return h.OnLoad()
	}); err != nil {
		c.reg.RemoveName(e.name)
		return err
	}

	var errs []error
	if c.ready.Load() {
		if err := c.step(ctx, e, "ready", readyHook); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.step(ctx, e, "reload", reloadHook(cfg.Section(e.name))); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// maxUnloadPasses bounds how often UnloadModules sweeps the registry when
// unload hooks keep registering modules.
const maxUnloadPasses = 8

// UnloadModules removes every registered module in dispatch order; each
// OnUnload runs exactly once. Modules added by an unload hook are removed
// by a further sweep. If unload hooks are still registering modules after
// maxUnloadPasses sweeps, the remainder stays registered and is logged.
func (c *Controller) UnloadModules(ctx context.Context) {
	was := State(c.state.Swap(int32(StateUnloaded)))

	done := observability.TimedOperation()
	ctx, span := c.opts.spans.StartLifecycleSpan(ctx, "unload")

	n := 0
	for pass := 0; pass < maxUnloadPasses && c.reg.Len() > 0; pass++ {
		for _, name := range c.reg.Names() {
			if c.reg.RemoveName(name) {
				n++
			}
		}
	}
	if left := c.reg.Len(); left > 0 {
		observability.LogLifecycleFailure(c.opts.logger, "unload", "",
			fmt.Errorf("%d modules still registered after %d passes", left, maxUnloadPasses))
	}

	c.opts.spans.EndSpanWithError(span, nil)
	c.opts.metrics.RecordLifecycle(ctx, "unload", n, nil)
	if was == StateUnloaded && n == 0 {
		return
	}
	observability.LogLifecycle(c.opts.logger, "unload", n, done())
}

// ReloadConfig re-reads settings and hands every loaded module its own
// section. A failing module does not stop the others from being notified;
// failures are joined into the returned error.
//
// If the settings cannot be read no module is notified. ReloadConfig while
// unloaded returns ErrNotLoaded and does nothing.
func (c *Controller) ReloadConfig(ctx context.Context) (err error) {
	if c.State() != StateLoaded {
		observability.LogLifecycleIgnored(c.opts.logger, "reload", c.State().String())
		return ErrNotLoaded
	}

	done := observability.TimedOperation()
	ctx, span := c.opts.spans.StartLifecycleSpan(ctx, "reload")
	entries := c.reg.snapshot()
	defer func() {
		c.opts.spans.EndSpanWithError(span, err)
		c.opts.metrics.RecordLifecycle(ctx, "reload", len(entries), err)
		observability.LogLifecycle(c.opts.logger, "reload", len(entries), done())
	}()

	cfg, err := c.opts.settings()
	if err != nil {
		observability.LogLifecycleFailure(c.opts.logger, "reload", "", err)
		return fmt.Errorf("read settings: %w", err)
	}

	var errs []error
	for _, e := range entries {
		if err := c.step(ctx, e, "reload", reloadHook(cfg.Section(e.name))); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResourcesReady announces that the host's backing resources are available
// and forwards OnResourcesReady to every loaded module. Modules loaded later
// receive it as part of LoadModules. A second announcement returns
// ErrResourcesAlreadyReady and notifies nobody.
func (c *Controller) ResourcesReady(ctx context.Context) (err error) {
	if !c.ready.CompareAndSwap(false, true) {
		observability.LogLifecycleIgnored(c.opts.logger, "ready", "resources ready")
		return ErrResourcesAlreadyReady
	}

	done := observability.TimedOperation()
	ctx, span := c.opts.spans.StartLifecycleSpan(ctx, "ready")
	entries := c.reg.snapshot()
	defer func() {
		c.opts.spans.EndSpanWithError(span, err)
		c.opts.metrics.RecordLifecycle(ctx, "ready", len(entries), err)
		observability.LogLifecycle(c.opts.logger, "ready", len(entries), done())
	}()

	var errs []error
	for _, e := range entries {
		if err := c.step(ctx, e, "ready", readyHook); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// step runs one lifecycle hook of one module with panic isolation.
func (c *Controller) step(ctx context.Context, e *entry, op string, fn func(*Hooks) error) error {
	err := protect(e.name, op, func() error { return fn(&e.hooks) })
	if err == nil {
		return nil
	}
	return c.failed(ctx, e.name, op, err)
}

// failed logs a lifecycle failure and wraps it in a *ModuleError.
func (c *Controller) failed(ctx context.Context, module, op string, err error) error {
	var fault *HandlerFault
	if errors.As(err, &fault) {
		c.opts.reportFault(ctx, fault)
	}
	observability.LogLifecycleFailure(c.opts.logger, op, module, err)
	return &ModuleError{Module: module, Op: op, Err: err}
}

func readyHook(h *Hooks) error {
	if h.OnResourcesReady != nil {
		h.OnResourcesReady()
	}
	return nil
}

func reloadHook(cfg config.Config) func(*Hooks) error {
	return func(h *Hooks) error {
		if h.OnReloadConfig == nil {
			return nil
		}
		return h.OnReloadConfig(cfg)
	}
}
