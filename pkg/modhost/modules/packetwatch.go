package modules

import (
	"log/slog"
	"sync"

	"github.com/randalmurphal/modhost/pkg/modhost"
	"github.com/randalmurphal/modhost/pkg/modhost/config"
)

// PacketWatch counts packets per source and opcode, and drops opcodes it is
// told to block.
//
// Settings: block (list of opcodes, any base).
// Commands: "stats" logs the counters, "reset" zeroes them.
type PacketWatch struct {
	logger *slog.Logger

	mu      sync.Mutex
	counts  map[modhost.Kind]map[byte]int
	block   map[byte]bool
	dropped int
}

// NewPacketWatch creates a packet watcher that blocks nothing.
func NewPacketWatch(logger *slog.Logger) *PacketWatch {
	p := &PacketWatch{logger: logger, block: make(map[byte]bool)}
	p.reset()
	return p
}

// Name implements modhost.Module.
func (p *PacketWatch) Name() string { return "PacketWatch" }

// Hooks implements modhost.Module.
func (p *PacketWatch) Hooks() modhost.Hooks {
	return modhost.Hooks{
		OnReloadConfig: p.reload,
		OnChatPacket:   p.watch(modhost.KindChatPacket),
		OnRealmPacket:  p.watch(modhost.KindRealmPacket),
		OnGamePacket:   p.watch(modhost.KindGamePacket),
		OnGameExit:     p.reset,
		OnUserInput:    p.onInput,
	}
}

// Count returns how many packets with opcode id arrived from source, which
// is one of the packet event kinds.
func (p *PacketWatch) Count(source modhost.Kind, id byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[source][id]
}

// Dropped returns how many packets this module has blocked.
func (p *PacketWatch) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

func (p *PacketWatch) reload(cfg config.Config) error {
	block, err := byteSet(cfg, "block")
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.block = block
	return nil
}

func (p *PacketWatch) watch(source modhost.Kind) func(*modhost.PacketEvent) {
	return func(ev *modhost.PacketEvent) {
		if len(ev.Data) == 0 {
			return
		}
		id := ev.ID()

		p.mu.Lock()
		defer p.mu.Unlock()
		p.counts[source][id]++
		if p.block[id] {
			ev.Blocked = true
			p.dropped++
		}
	}
}

func (p *PacketWatch) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts = map[modhost.Kind]map[byte]int{
		modhost.KindChatPacket:  {},
		modhost.KindRealmPacket: {},
		modhost.KindGamePacket:  {},
	}
	p.dropped = 0
}

func (p *PacketWatch) onInput(in modhost.UserInput) bool {
	verb, _ := command(in.Message)
	switch verb {
	case "stats":
		p.mu.Lock()
		defer p.mu.Unlock()
		for source, byID := range p.counts {
			for id, n := range byID {
				p.logger.Info("packet count",
					slog.String("module", in.Module),
					slog.String("source", source.String()),
					slog.Int("opcode", int(id)),
					slog.Int("count", n),
				)
			}
		}
		return true
	case "reset":
		p.reset()
		return true
	}
	return false
}
