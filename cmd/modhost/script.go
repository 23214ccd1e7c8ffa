package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/randalmurphal/modhost/pkg/modhost"
	"github.com/randalmurphal/modhost/pkg/modhost/journal"
	"github.com/randalmurphal/modhost/pkg/modhost/strutil"
)

// session is the state a script runs against.
type session struct {
	host     *modhost.Host
	screen   *consoleRenderer
	journal  journal.Store
	out      io.Writer
	finished bool
}

// command is one parsed script line.
type command struct {
	line int
	text string
	run  func(ctx context.Context, s *session) error
}

// ScriptError reports a script line that could not be parsed.
type ScriptError struct {
	Line int
	Text string
	Err  error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

var errUsage = errors.New("wrong arguments")

// parseScript reads a session script. Blank lines and lines starting with
// '#' are skipped. Every line is validated before anything runs.
func parseScript(r io.Reader) ([]command, error) {
	var cmds []command
	var errs []error

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := strutil.Trim(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		run, err := parseLine(strings.Fields(text))
		if err != nil {
			errs = append(errs, &ScriptError{Line: n, Text: text, Err: err})
			continue
		}
		cmds = append(cmds, command{line: n, text: text, run: run})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cmds, nil
}

// execute runs parsed commands in order until the script ends or a
// command fails.
func execute(ctx context.Context, s *session, cmds []command) error {
	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.run(ctx, s); err != nil {
			return fmt.Errorf("line %d %q: %w", c.line, c.text, err)
		}
	}
	return nil
}

func parseLine(f []string) (func(context.Context, *session) error, error) {
	verb, args := strutil.ToLower(f[0]), f[1:]

	switch verb {
	case "loop", "join", "exit", "draw", "automap", "oog":
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments", errUsage, verb)
		}
		kind := map[string]modhost.Kind{
			"loop": modhost.KindLoop, "join": modhost.KindGameJoin, "exit": modhost.KindGameExit,
			"draw": modhost.KindDraw, "automap": modhost.KindAutomapDraw, "oog": modhost.KindOOGDraw,
		}[verb]
		return func(ctx context.Context, s *session) error {
			_, err := s.host.Dispatcher.Dispatch(ctx, kind, nil)
			return err
		}, nil

	case "load", "unload", "reload", "ready":
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments", errUsage, verb)
		}
		return lifecycleCommand(verb), nil

	case "key":
		return parseKey(args)
	case "click":
		return parseClick(args)
	case "mouse":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: mouse <x> <y>", errUsage)
		}
		x, okX := strutil.ToInteger[int](args[0])
		y, okY := strutil.ToInteger[int](args[1])
		if !okX || !okY {
			return nil, fmt.Errorf("%w: bad coordinates", errUsage)
		}
		return func(_ context.Context, s *session) error {
			s.screen.cx, s.screen.cy = x, y
			return nil
		}, nil
	case "packet":
		return parsePacket(args)
	case "chat":
		return parseChat(args)
	case "input":
		if len(args) < 2 {
			return nil, fmt.Errorf("%w: input <module> <message...>", errUsage)
		}
		target, msg := args[0], strings.Join(args[1:], " ")
		return func(ctx context.Context, s *session) error {
			res := s.host.Dispatcher.UserInput(ctx, target, msg, false)
			fmt.Fprintf(s.out, "input %s %q: %s\n", target, msg, res)
			return nil
		}, nil
	case "modules":
		return func(_ context.Context, s *session) error {
			fmt.Fprintf(s.out, "modules: %s\n", strings.Join(s.host.Registry.Names(), " "))
			return nil
		}, nil
	case "faults":
		module := ""
		if len(args) > 0 {
			module = modhost.Normalize(args[0])
		}
		return func(ctx context.Context, s *session) error {
			return printFaults(ctx, s, module)
		}, nil
	}
	return nil, fmt.Errorf("unknown command %q", verb)
}

func lifecycleCommand(verb string) func(context.Context, *session) error {
	return func(ctx context.Context, s *session) error {
		var err error
		c := s.host.Controller
		switch verb {
		case "load":
			err = c.LoadModules(ctx)
		case "unload":
			c.UnloadModules(ctx)
		case "reload":
			err = c.ReloadConfig(ctx)
		case "ready":
			err = c.ResourcesReady(ctx)
		}
		// Module failures are reported, not fatal: the session goes on.
		if err != nil {
			fmt.Fprintf(s.out, "%s: %v\n", verb, err)
		} else {
			fmt.Fprintf(s.out, "%s: ok (%d modules)\n", verb, s.host.Registry.Len())
		}
		return nil
	}
}

// parseUpDown accepts "up" or "down".
func parseUpDown(s string) (up bool, ok bool) {
	switch strutil.ToLower(s) {
	case "up":
		return true, true
	case "down":
		return false, true
	}
	return false, false
}

func upDown(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

func verdict(blocked bool) string {
	if blocked {
		return "blocked"
	}
	return "passed"
}

// key <up|down> <code> [param]
func parseKey(args []string) (func(context.Context, *session) error, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("%w: key <up|down> <code> [param]", errUsage)
	}
	up, ok := parseUpDown(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: expected up or down, got %q", errUsage, args[0])
	}
	code, ok := strutil.ToInteger[uint8](args[1])
	if !ok {
		return nil, fmt.Errorf("%w: bad key code %q", errUsage, args[1])
	}
	var param int64
	if len(args) == 3 {
		if param, ok = strutil.ToInteger[int64](args[2]); !ok {
			return nil, fmt.Errorf("%w: bad key param %q", errUsage, args[2])
		}
	}
	return func(ctx context.Context, s *session) error {
		ev := &modhost.KeyEvent{Up: up, Key: code, Param: param}
		blocked, err := s.host.Dispatcher.Dispatch(ctx, modhost.KindKey, ev)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "key %s 0x%02X: %s\n", upDown(up), code, verdict(blocked))
		return nil
	}, nil
}

// click <left|right> <up|down> <x> <y>
func parseClick(args []string) (func(context.Context, *session) error, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("%w: click <left|right> <up|down> <x> <y>", errUsage)
	}
	var kind modhost.Kind
	switch strutil.ToLower(args[0]) {
	case "left":
		kind = modhost.KindLeftClick
	case "right":
		kind = modhost.KindRightClick
	default:
		return nil, fmt.Errorf("%w: expected left or right, got %q", errUsage, args[0])
	}
	up, ok := parseUpDown(args[1])
	if !ok {
		return nil, fmt.Errorf("%w: expected up or down, got %q", errUsage, args[1])
	}
	x, okX := strutil.ToInteger[uint32](args[2])
	y, okY := strutil.ToInteger[uint32](args[3])
	if !okX || !okY {
		return nil, fmt.Errorf("%w: bad coordinates", errUsage)
	}
	return func(ctx context.Context, s *session) error {
		ev := &modhost.ClickEvent{Up: up, X: x, Y: y}
		blocked, err := s.host.Dispatcher.Dispatch(ctx, kind, ev)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "click %s %s %d,%d: %s\n", strutil.ToLower(args[0]), upDown(up), x, y, verdict(blocked))
		return nil
	}, nil
}

// packet <chat|realm|game> <byte...>
func parsePacket(args []string) (func(context.Context, *session) error, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%w: packet <chat|realm|game> <byte...>", errUsage)
	}
	var kind modhost.Kind
	source := strutil.ToLower(args[0])
	switch source {
	case "chat":
		kind = modhost.KindChatPacket
	case "realm":
		kind = modhost.KindRealmPacket
	case "game":
		kind = modhost.KindGamePacket
	default:
		return nil, fmt.Errorf("%w: unknown packet source %q", errUsage, args[0])
	}
	data := make([]byte, 0, len(args)-1)
	for _, a := range args[1:] {
		b, ok := strutil.ToInteger[uint8](a)
		if !ok {
			return nil, fmt.Errorf("%w: bad packet byte %q", errUsage, a)
		}
		data = append(data, b)
	}
	return func(ctx context.Context, s *session) error {
		// Each dispatch gets its own copy; handlers may not keep it.
		ev := &modhost.PacketEvent{Data: append([]byte(nil), data...)}
		blocked, err := s.host.Dispatcher.Dispatch(ctx, kind, ev)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "packet %s 0x%02X (%d bytes): %s\n", source, ev.ID(), len(data), verdict(blocked))
		return nil
	}, nil
}

// chat <game|oog> <user> <message...>
func parseChat(args []string) (func(context.Context, *session) error, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%w: chat <game|oog> <user> <message...>", errUsage)
	}
	var fromGame bool
	switch strutil.ToLower(args[0]) {
	case "game":
		fromGame = true
	case "oog":
		fromGame = false
	default:
		return nil, fmt.Errorf("%w: expected game or oog, got %q", errUsage, args[0])
	}
	user, msg := args[1], strings.Join(args[2:], " ")
	return func(ctx context.Context, s *session) error {
		ev := &modhost.ChatEvent{User: user, Message: msg, FromGame: fromGame}
		blocked, err := s.host.Dispatcher.Dispatch(ctx, modhost.KindChatMessage, ev)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "chat %s: %s\n", user, verdict(blocked))
		return nil
	}, nil
}

func printFaults(ctx context.Context, s *session, module string) error {
	if s.journal == nil {
		fmt.Fprintln(s.out, "faults: no journal")
		return nil
	}
	faults, err := s.journal.List(ctx, module, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "faults: %d\n", len(faults))
	for _, f := range faults {
		fmt.Fprintf(s.out, "  %s %s: %s\n", f.Module, f.Kind, f.Message)
	}
	return nil
}
