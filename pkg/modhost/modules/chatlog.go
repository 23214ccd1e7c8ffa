package modules

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/randalmurphal/modhost/pkg/modhost"
	"github.com/randalmurphal/modhost/pkg/modhost/config"
)

// DefaultChatCapacity is the number of chat lines kept when no capacity is
// configured.
const DefaultChatCapacity = 50

// ChatLine is one remembered chat message.
type ChatLine struct {
	User     string
	Message  string
	FromGame bool
}

// ChatLog keeps the most recent chat messages.
//
// Settings: capacity (int, default 50).
// Commands: "dump" logs the history, "clear" forgets it.
type ChatLog struct {
	logger *slog.Logger

	mu       sync.Mutex
	capacity int
	lines    []ChatLine
}

// NewChatLog creates an empty chat log.
func NewChatLog(logger *slog.Logger) *ChatLog {
	return &ChatLog{logger: logger, capacity: DefaultChatCapacity}
}

// Name implements modhost.Module.
func (c *ChatLog) Name() string { return "ChatLog" }

// Hooks implements modhost.Module.
func (c *ChatLog) Hooks() modhost.Hooks {
	return modhost.Hooks{
		OnUnload:       c.clear,
		OnReloadConfig: c.reload,
		OnChatMessage:  c.onChat,
		OnUserInput:    c.onInput,
	}
}

// Lines returns the remembered messages, oldest first.
func (c *ChatLog) Lines() []ChatLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatLine(nil), c.lines...)
}

func (c *ChatLog) reload(cfg config.Config) error {
	n := cfg.Int("capacity", DefaultChatCapacity)
	if n < 1 {
		return fmt.Errorf("capacity must be positive, got %d", n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = n
	c.trim()
	return nil
}

func (c *ChatLog) onChat(ev *modhost.ChatEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, ChatLine{User: ev.User, Message: ev.Message, FromGame: ev.FromGame})
	c.trim()
}

func (c *ChatLog) onInput(in modhost.UserInput) bool {
	verb, _ := command(in.Message)
	switch verb {
	case "dump":
		for i, line := range c.Lines() {
			c.logger.Info("chat history",
				slog.String("module", in.Module),
				slog.Int("line", i+1),
				slog.String("user", line.User),
				slog.String("message", line.Message),
				slog.Bool("from_game", line.FromGame),
			)
		}
		return true
	case "clear":
		c.clear()
		return true
	}
	return false
}

func (c *ChatLog) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// trim drops the oldest lines beyond capacity. Callers hold c.mu.
func (c *ChatLog) trim() {
	if extra := len(c.lines) - c.capacity; extra > 0 {
		c.lines = append(c.lines[:0:0], c.lines[extra:]...)
	}
}
