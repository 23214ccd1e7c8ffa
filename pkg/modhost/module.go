package modhost

import (
	"sync/atomic"

	"github.com/randalmurphal/modhost/pkg/modhost/config"
)

// Module is an independently loaded extension unit.
//
// Hooks is read once, when the module is added to a Registry. Changing the
// returned value afterwards has no effect until the module is added again.
type Module interface {
	Name() string
	Hooks() Hooks
}

// Hooks is the set of capabilities a module implements.
// A nil field means the module does not handle that event.
//
// Suppressible events are passed by pointer; a handler claims the event by
// setting its Blocked field. Handlers must not retain event pointers.
type Hooks struct {
	// OnLoad runs right after the module becomes visible in the registry.
	// A returned error removes the module again.
	OnLoad func() error
	// OnUnload runs exactly once when the module leaves the registry.
	OnUnload func()
	// OnReloadConfig receives the module's own settings section.
	OnReloadConfig func(cfg config.Config) error
	// OnResourcesReady runs once the host's backing resources are available.
	OnResourcesReady func()

	OnLoop        func()
	OnGameJoin    func()
	OnGameExit    func()
	OnDraw        func()
	OnAutomapDraw func()
	OnOOGDraw     func()

	OnLeftClick  func(ev *ClickEvent)
	OnRightClick func(ev *ClickEvent)
	OnKey        func(ev *KeyEvent)

	OnChatPacket  func(ev *PacketEvent)
	OnRealmPacket func(ev *PacketEvent)
	OnGamePacket  func(ev *PacketEvent)

	OnChatMessage func(ev *ChatEvent)

	// OnUserInput reports whether the module handled the input.
	OnUserInput func(in UserInput) bool
}

// NewModule returns a Module with a fixed name and hook set.
func NewModule(name string, hooks Hooks) Module {
	return &funcModule{name: name, hooks: hooks}
}

type funcModule struct {
	name  string
	hooks Hooks
}

func (m *funcModule) Name() string { return m.name }
func (m *funcModule) Hooks() Hooks { return m.hooks }

// entry is one registration of a module.
// A module added twice gets two entries; counters never carry over.
type entry struct {
	name   string
	module Module
	hooks  Hooks

	unloaded    atomic.Bool
	faults      atomic.Int64
	quarantined atomic.Bool
}

func newEntry(m Module) *entry {
	return &entry{
		name:   Normalize(m.Name()),
		module: m,
		hooks:  m.Hooks(),
	}
}
