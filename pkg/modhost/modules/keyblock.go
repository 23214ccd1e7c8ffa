package modules

import (
	"log/slog"

	"github.com/randalmurphal/modhost/pkg/modhost"
	"github.com/randalmurphal/modhost/pkg/modhost/config"
)

// KeyBlock swallows configured keys before other modules and the host see
// them.
//
// Settings: enabled (bool, default true), keys (list of key codes, any base).
// Commands: "on", "off", "list", "add <code>", "remove <code>".
type KeyBlock struct {
	logger  *slog.Logger
	enabled bool
	keys    map[byte]bool
	blocked int
}

// NewKeyBlock creates an enabled key blocker with no keys.
func NewKeyBlock(logger *slog.Logger) *KeyBlock {
	return &KeyBlock{logger: logger, enabled: true, keys: make(map[byte]bool)}
}

// Name implements modhost.Module.
func (k *KeyBlock) Name() string { return "KeyBlock" }

// Hooks implements modhost.Module.
func (k *KeyBlock) Hooks() modhost.Hooks {
	return modhost.Hooks{
		OnReloadConfig: k.reload,
		OnKey:          k.onKey,
		OnUserInput:    k.onInput,
	}
}

// Blocked returns how many key events this module has suppressed.
func (k *KeyBlock) Blocked() int { return k.blocked }

// reload applies nothing unless every setting is valid.
func (k *KeyBlock) reload(cfg config.Config) error {
	keys, err := byteSet(cfg, "keys")
	if err != nil {
		return err
	}
	k.enabled = cfg.Bool("enabled", true)
	k.keys = keys
	return nil
}

func (k *KeyBlock) onKey(ev *modhost.KeyEvent) {
	if k.enabled && k.keys[ev.Key] {
		ev.Blocked = true
		k.blocked++
	}
}

func (k *KeyBlock) onInput(in modhost.UserInput) bool {
	verb, arg := command(in.Message)
	switch verb {
	case "on":
		k.enabled = true
	case "off":
		k.enabled = false
	case "list":
		k.logger.Info("blocked keys",
			slog.String("module", in.Module),
			slog.Bool("enabled", k.enabled),
			slog.String("keys", formatBytes(k.keys)),
		)
	case "add", "remove":
		code, ok := parseByte(arg)
		if !ok {
			return false
		}
		if verb == "add" {
			k.keys[code] = true
		} else {
			delete(k.keys, code)
		}
	default:
		return false
	}
	return true
}
