package modhost

// Kind identifies an event kind a module can handle.
type Kind int

// Event kinds.
const (
	KindLoop Kind = iota
	KindGameJoin
	KindGameExit
	KindDraw
	KindAutomapDraw
	KindOOGDraw
	KindLeftClick
	KindRightClick
	KindKey
	KindChatPacket
	KindRealmPacket
	KindGamePacket
	KindChatMessage
	KindUserInput
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindLoop:
		return "loop"
	case KindGameJoin:
		return "game_join"
	case KindGameExit:
		return "game_exit"
	case KindDraw:
		return "draw"
	case KindAutomapDraw:
		return "automap_draw"
	case KindOOGDraw:
		return "oog_draw"
	case KindLeftClick:
		return "left_click"
	case KindRightClick:
		return "right_click"
	case KindKey:
		return "key"
	case KindChatPacket:
		return "chat_packet"
	case KindRealmPacket:
		return "realm_packet"
	case KindGamePacket:
		return "game_packet"
	case KindChatMessage:
		return "chat_message"
	case KindUserInput:
		return "user_input"
	default:
		return "unknown"
	}
}

// ClickEvent is a mouse button press or release at screen coordinates.
type ClickEvent struct {
	Up   bool
	X, Y uint32

	// Blocked suppresses the click for later modules and the host.
	Blocked bool
}

// KeyEvent is a key press or release.
type KeyEvent struct {
	Up  bool
	Key byte
	// Param is the host's raw key message parameter.
	Param int64

	// Blocked suppresses the key for later modules and the host.
	Blocked bool
}

// Repeat returns the repeat count packed in Param.
func (e *KeyEvent) Repeat() uint16 { return uint16(e.Param & 0xFFFF) }

// Extended reports whether the key is an extended key.
func (e *KeyEvent) Extended() bool { return e.Param&(1<<24) != 0 }

// AltDown reports whether ALT was held when the key changed state.
func (e *KeyEvent) AltDown() bool { return e.Param&(1<<29) != 0 }

// WasDown reports whether the key was down before this message.
func (e *KeyEvent) WasDown() bool { return e.Param&(1<<30) != 0 }

// PacketEvent is one framed network packet. Data is borrowed from the host
// and must not be retained after the handler returns.
type PacketEvent struct {
	Data []byte

	// Blocked drops the packet.
	Blocked bool
}

// ID returns the packet opcode (its first byte), or 0 for an empty packet.
func (e *PacketEvent) ID() byte {
	if len(e.Data) == 0 {
		return 0
	}
	return e.Data[0]
}

// ChatEvent is a chat line received by the host.
type ChatEvent struct {
	User    string
	Message string
	// FromGame is true for in-game chat, false for out-of-game channels.
	FromGame bool

	// Blocked hides the message.
	Blocked bool
}

// UserInput is a command addressed to a single module.
type UserInput struct {
	// Module is the canonical name of the target module.
	Module   string
	Message  string
	FromGame bool
}

// InputResult is the outcome of routing user input to a module.
type InputResult int

// User input outcomes.
const (
	// InputNoModule means no module is registered under the target name.
	InputNoModule InputResult = iota
	// InputIgnored means the module exists but did not handle the input.
	InputIgnored
	// InputHandled means the module handled the input.
	InputHandled
)

// Found reports whether the target module exists.
func (r InputResult) Found() bool { return r != InputNoModule }

// Handled reports whether the target module handled the input.
func (r InputResult) Handled() bool { return r == InputHandled }

// String returns the string representation of the result.
func (r InputResult) String() string {
	switch r {
	case InputNoModule:
		return "no_module"
	case InputIgnored:
		return "ignored"
	case InputHandled:
		return "handled"
	default:
		return "unknown"
	}
}
