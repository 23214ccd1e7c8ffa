// Package modules contains the built-in feature modules loaded by default.
//
// Each module reads its settings from its own section of the host settings
// file (see modhost.Controller) and answers a few user-input commands.
package modules

import (
	"log/slog"

	"github.com/randalmurphal/modhost/pkg/modhost"
	"github.com/randalmurphal/modhost/pkg/modhost/render"
)

// Defaults returns factories for every built-in module, in load order.
// r may be nil for hosts that never draw; the overlay then stays idle.
func Defaults(r render.Renderer, logger *slog.Logger) []modhost.Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return []modhost.Factory{
		func() (modhost.Module, error) { return NewChatLog(logger), nil },
		func() (modhost.Module, error) { return NewKeyBlock(logger), nil },
		func() (modhost.Module, error) { return NewPacketWatch(logger), nil },
		func() (modhost.Module, error) { return NewOverlay(r), nil },
	}
}
