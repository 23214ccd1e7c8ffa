/*
Package modhost is the event-dispatch core of an in-process extension host.

# Overview

A host application embeds modhost to give independently written feature
units ("modules") a turn at every event it sees: per-frame ticks and draw
phases, mouse clicks, key presses, network packets, chat messages, and
user commands. The host owns the event sources; modhost owns the modules.

Three pieces cooperate:
  - Registry: canonical name to module, in registration order
  - Dispatcher: broadcasts each event kind to every module that handles it
  - Controller: bulk load, unload, and configuration reload

# Modules

A module is a name plus a Hooks value. Each Hooks field is optional; a nil
field means the module does not handle that event kind:

	counter := 0
	m := modhost.NewModule("Counter", modhost.Hooks{
	    OnLoop: func() { counter++ },
	    OnKey: func(ev *modhost.KeyEvent) {
	        if ev.Key == 0x7A {
	            ev.Blocked = true
	        }
	    },
	})

Names are canonicalized with Normalize, so "Counter", "counter" and
" COUNTER " refer to the same entry. Adding a module under a name that is
already registered unloads the previous module first.

# Dispatch

Dispatch visits modules in registration order over a snapshot taken when
the call starts. Setting Blocked on a suppressible event stops the pass:
modules after the one that set it are not invoked, and the return value
tells the host to skip its own default handling.

	reg := modhost.NewRegistry()
	reg.Add(m)
	d := modhost.NewDispatcher(reg)

	ev := &modhost.KeyEvent{Key: 0x7A}
	if d.Key(ctx, ev) {
	    // host skips its default key handling
	}

Modules may add or remove modules from inside a handler; the change is seen
by the next dispatch, not the current one. A panic inside a handler is
recovered, logged, and reported as a *HandlerFault; dispatch continues with
the next module. Only one dispatch runs at a time. A dispatch started while
another is in progress invokes nothing.

# Lifecycle

	ctrl := modhost.NewController(reg, []modhost.Factory{newRadar, newChatLog},
	    modhost.WithSettings(config.FileSource("modules.yaml")))
	if err := ctrl.LoadModules(ctx); err != nil {
	    log.Printf("some modules failed to load: %v", err)
	}
	defer ctrl.UnloadModules(ctx)

Each module receives its own section of the settings file on load and on
every ReloadConfig.

# Observability

Logging uses log/slog; metrics and tracing use OpenTelemetry. Both are off
(no-op) unless configured with WithLogger, WithMetrics and WithTracing.
WithJournal records every handler fault in a journal.Store.
*/
package modhost
