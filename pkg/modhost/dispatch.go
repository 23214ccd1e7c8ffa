package modhost

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/modhost/pkg/modhost/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Dispatcher broadcasts host events to the modules in a Registry.
//
// Each broadcast takes a snapshot of the registry when it starts and visits
// every module in registration order. Modules added or removed while a pass
// is running are seen by the next pass; a module removed mid-pass still
// receives the current event.
//
// Only one dispatch runs at a time. A dispatch attempted while another is in
// progress, whether re-entrant from a handler or from another goroutine, is
// rejected: nothing is invoked, suppressible kinds report false, and
// UserInput reports InputIgnored.
type Dispatcher struct {
	reg  *Registry
	opts options
	busy atomic.Bool
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	return &Dispatcher{
		reg:  reg,
		opts: applyOptions(opts),
	}
}

// Loop dispatches the periodic tick.
func (d *Dispatcher) Loop(ctx context.Context) {
	d.notify(ctx, KindLoop, notifyHook(KindLoop))
}

// GameJoin dispatches entry into a game session.
func (d *Dispatcher) GameJoin(ctx context.Context) {
	d.notify(ctx, KindGameJoin, notifyHook(KindGameJoin))
}

// GameExit dispatches the end of a game session.
func (d *Dispatcher) GameExit(ctx context.Context) {
	d.notify(ctx, KindGameExit, notifyHook(KindGameExit))
}

// Draw dispatches the in-game frame draw phase.
func (d *Dispatcher) Draw(ctx context.Context) {
	d.notify(ctx, KindDraw, notifyHook(KindDraw))
}

// AutomapDraw dispatches the automap draw phase.
func (d *Dispatcher) AutomapDraw(ctx context.Context) {
	d.notify(ctx, KindAutomapDraw, notifyHook(KindAutomapDraw))
}

// OOGDraw dispatches the out-of-game draw phase.
func (d *Dispatcher) OOGDraw(ctx context.Context) {
	d.notify(ctx, KindOOGDraw, notifyHook(KindOOGDraw))
}

// LeftClick dispatches a left mouse button event.
// It returns true if a module blocked the click.
func (d *Dispatcher) LeftClick(ctx context.Context, ev *ClickEvent) bool {
	blocked, _ := dispatchEvent(ctx, d, KindLeftClick, ev, &ev.Blocked,
		func(h *Hooks) func(*ClickEvent) { return h.OnLeftClick })
	return blocked
}

// RightClick dispatches a right mouse button event.
// It returns true if a module blocked the click.
func (d *Dispatcher) RightClick(ctx context.Context, ev *ClickEvent) bool {
	blocked, _ := dispatchEvent(ctx, d, KindRightClick, ev, &ev.Blocked,
		func(h *Hooks) func(*ClickEvent) { return h.OnRightClick })
	return blocked
}

// Key dispatches a key event.
// It returns true if a module blocked the key.
func (d *Dispatcher) Key(ctx context.Context, ev *KeyEvent) bool {
	blocked, _ := dispatchEvent(ctx, d, KindKey, ev, &ev.Blocked,
		func(h *Hooks) func(*KeyEvent) { return h.OnKey })
	return blocked
}

// ChatPacket dispatches a packet from the chat server.
// It returns true if a module blocked the packet.
func (d *Dispatcher) ChatPacket(ctx context.Context, ev *PacketEvent) bool {
	blocked, _ := dispatchEvent(ctx, d, KindChatPacket, ev, &ev.Blocked, packetHook(KindChatPacket))
	return blocked
}

// RealmPacket dispatches a packet from the realm server.
// It returns true if a module blocked the packet.
func (d *Dispatcher) RealmPacket(ctx context.Context, ev *PacketEvent) bool {
	blocked, _ := dispatchEvent(ctx, d, KindRealmPacket, ev, &ev.Blocked, packetHook(KindRealmPacket))
	return blocked
}

// GamePacket dispatches a packet from the game server.
// It returns true if a module blocked the packet.
func (d *Dispatcher) GamePacket(ctx context.Context, ev *PacketEvent) bool {
	blocked, _ := dispatchEvent(ctx, d, KindGamePacket, ev, &ev.Blocked, packetHook(KindGamePacket))
	return blocked
}

// ChatMessage dispatches a received chat line.
// It returns true if a module blocked the message.
func (d *Dispatcher) ChatMessage(ctx context.Context, ev *ChatEvent) bool {
	blocked, _ := dispatchEvent(ctx, d, KindChatMessage, ev, &ev.Blocked,
		func(h *Hooks) func(*ChatEvent) { return h.OnChatMessage })
	return blocked
}

// Dispatch broadcasts the event selected by kind and returns its final
// Blocked value. ev must be nil for payload-free kinds and the matching
// event pointer otherwise (*ClickEvent, *KeyEvent, *PacketEvent,
// *ChatEvent). It returns ErrDispatchInProgress if another dispatch is
// running. User input is routed with UserInput, not Dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, ev any) (bool, error) {
	var blocked, ok bool
	switch kind {
	case KindLoop, KindGameJoin, KindGameExit, KindDraw, KindAutomapDraw, KindOOGDraw:
		if ev != nil {
			return false, fmt.Errorf("%s takes no payload, got %T", kind, ev)
		}
		ok = d.notify(ctx, kind, notifyHook(kind))
	case KindLeftClick, KindRightClick:
		click, isClick := ev.(*ClickEvent)
		if !isClick || click == nil {
			return false, fmt.Errorf("%s needs *ClickEvent, got %T", kind, ev)
		}
		pick := func(h *Hooks) func(*ClickEvent) { return h.OnLeftClick }
		if kind == KindRightClick {
			pick = func(h *Hooks) func(*ClickEvent) { return h.OnRightClick }
		}
		blocked, ok = dispatchEvent(ctx, d, kind, click, &click.Blocked, pick)
	case KindKey:
		key, isKey := ev.(*KeyEvent)
		if !isKey || key == nil {
			return false, fmt.Errorf("%s needs *KeyEvent, got %T", kind, ev)
		}
		blocked, ok = dispatchEvent(ctx, d, kind, key, &key.Blocked,
			func(h *Hooks) func(*KeyEvent) { return h.OnKey })
	case KindChatPacket, KindRealmPacket, KindGamePacket:
		pkt, isPacket := ev.(*PacketEvent)
		if !isPacket || pkt == nil {
			return false, fmt.Errorf("%s needs *PacketEvent, got %T", kind, ev)
		}
		blocked, ok = dispatchEvent(ctx, d, kind, pkt, &pkt.Blocked, packetHook(kind))
	case KindChatMessage:
		chat, isChat := ev.(*ChatEvent)
		if !isChat || chat == nil {
			return false, fmt.Errorf("%s needs *ChatEvent, got %T", kind, ev)
		}
		blocked, ok = dispatchEvent(ctx, d, kind, chat, &chat.Blocked,
			func(h *Hooks) func(*ChatEvent) { return h.OnChatMessage })
	default:
		return false, fmt.Errorf("cannot broadcast event kind %s", kind)
	}
	if !ok {
		return false, ErrDispatchInProgress
	}
	return blocked, nil
}

func notifyHook(kind Kind) func(*Hooks) func() {
	switch kind {
	case KindLoop:
		return func(h *Hooks) func() { return h.OnLoop }
	case KindGameJoin:
		return func(h *Hooks) func() { return h.OnGameJoin }
	case KindGameExit:
		return func(h *Hooks) func() { return h.OnGameExit }
	case KindDraw:
		return func(h *Hooks) func() { return h.OnDraw }
	case KindAutomapDraw:
		return func(h *Hooks) func() { return h.OnAutomapDraw }
	default:
		return func(h *Hooks) func() { return h.OnOOGDraw }
	}
}

func packetHook(kind Kind) func(*Hooks) func(*PacketEvent) {
	switch kind {
	case KindChatPacket:
		return func(h *Hooks) func(*PacketEvent) { return h.OnChatPacket }
	case KindRealmPacket:
		return func(h *Hooks) func(*PacketEvent) { return h.OnRealmPacket }
	default:
		return func(h *Hooks) func(*PacketEvent) { return h.OnGamePacket }
	}
}

// UserInput routes a command to the module registered under target.
//
// Unlike the broadcasts it reaches at most one module. InputNoModule tells
// the host nobody is registered under that name so it can report the mistake.
func (d *Dispatcher) UserInput(ctx context.Context, target, message string, fromGame bool) InputResult {
	if !d.acquire(ctx, KindUserInput) {
		return InputIgnored
	}
	defer d.busy.Store(false)

	e, ok := d.reg.lookup(target)
	if !ok {
		return InputNoModule
	}
	if e.quarantined.Load() || e.hooks.OnUserInput == nil {
		return InputIgnored
	}

	start := time.Now()
	ctx, span := d.opts.spans.StartDispatchSpan(ctx, KindUserInput.String())

	handled := false
	err := protect(e.name, KindUserInput.String(), func() error {
		handled = e.hooks.OnUserInput(UserInput{Module: e.name, Message: message, FromGame: fromGame})
		return nil
	})
	if err != nil {
		d.fault(ctx, e, err)
		handled = false
	}

	d.opts.spans.EndSpanWithError(span, err)
	d.opts.metrics.RecordDispatch(ctx, KindUserInput.String(), 1, false, time.Since(start))

	if handled {
		return InputHandled
	}
	return InputIgnored
}

// notify broadcasts a payload-free event to every module.
// It reports whether the dispatch guard admitted the call.
func (d *Dispatcher) notify(ctx context.Context, kind Kind, pick func(*Hooks) func()) bool {
	return d.run(ctx, kind, func(e *entry) bool {
		fn := pick(&e.hooks)
		if fn == nil {
			return false
		}
		fn()
		return true
	}, nil)
}

// dispatchEvent broadcasts a suppressible event and returns its final
// Blocked value and whether the dispatch guard admitted the call.
func dispatchEvent[E any](ctx context.Context, d *Dispatcher, kind Kind, ev *E, blocked *bool, pick func(*Hooks) func(*E)) (bool, bool) {
	ok := d.run(ctx, kind, func(e *entry) bool {
		fn := pick(&e.hooks)
		if fn == nil {
			return false
		}
		fn(ev)
		return true
	}, blocked)
	return *blocked, ok
}

// run is the broadcast loop shared by every event kind.
//
// invoke calls the entry's handler for this kind and reports whether it had
// one. blocked, if non-nil, is read after every invocation; once it is true
// the remaining modules are skipped.
func (d *Dispatcher) run(ctx context.Context, kind Kind, invoke func(*entry) bool, blocked *bool) bool {
	if !d.acquire(ctx, kind) {
		return false
	}
	defer d.busy.Store(false)

	start := time.Now()
	ctx, span := d.opts.spans.StartDispatchSpan(ctx, kind.String())

	invoked := 0
	suppressed := false
	for _, e := range d.reg.snapshot() {
		if e.quarantined.Load() {
			continue
		}

		ran := false
		err := protect(e.name, kind.String(), func() error {
			ran = invoke(e)
			return nil
		})
		if err != nil {
			ran = true
			d.fault(ctx, e, err)
		}
		if !ran {
			continue
		}
		invoked++

		if blocked != nil && *blocked {
			suppressed = true
			d.opts.spans.AddSpanEvent(ctx, "dispatch.suppressed", attribute.String("module", e.name))
			break
		}
	}

	d.opts.spans.EndSpanWithError(span, nil)
	d.opts.metrics.RecordDispatch(ctx, kind.String(), invoked, suppressed, time.Since(start))
	return true
}

// acquire claims the dispatch guard, reporting a rejection if it is taken.
func (d *Dispatcher) acquire(ctx context.Context, kind Kind) bool {
	if d.busy.CompareAndSwap(false, true) {
		return true
	}
	observability.LogDispatchRejected(d.opts.logger, kind.String())
	d.opts.metrics.RecordRejected(ctx, kind.String())
	return false
}

// fault records a handler failure and quarantines the module once it
// reaches the configured limit.
func (d *Dispatcher) fault(ctx context.Context, e *entry, err error) {
	var hf *HandlerFault
	if !errors.As(err, &hf) {
		hf = &HandlerFault{Module: e.name, Value: err}
	}
	d.opts.reportFault(ctx, hf)

	n := e.faults.Add(1)
	if d.opts.faultLimit > 0 && n >= int64(d.opts.faultLimit) && e.quarantined.CompareAndSwap(false, true) {
		observability.LogQuarantined(d.opts.logger, e.name, int(n))
	}
}

// Busy reports whether a dispatch is currently in progress.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}
