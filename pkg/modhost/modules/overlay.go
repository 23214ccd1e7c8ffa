package modules

import (
	"fmt"

	"github.com/randalmurphal/modhost/pkg/modhost"
	"github.com/randalmurphal/modhost/pkg/modhost/config"
	"github.com/randalmurphal/modhost/pkg/modhost/render"
)

// Overlay draws a frame counter that collapses when clicked.
//
// Settings: x, y, font (int), visible (bool, default true), background
// (color behind the text, default black, -1 for none).
// Commands: "show", "hide".
type Overlay struct {
	r          render.Renderer
	hook       *render.TextHook
	frames     int
	collapsed  bool
	background render.Color
}

// NewOverlay creates an overlay drawing through r.
func NewOverlay(r render.Renderer) *Overlay {
	o := &Overlay{r: r, hook: render.NewTextHook(10, 10, ""), background: render.ColorBlack}
	o.hook.HoverColor = render.ColorGold
	o.hook.OnLeftClick = func(up bool) bool {
		if up {
			o.collapsed = !o.collapsed
		}
		return true
	}
	return o
}

// Name implements modhost.Module.
func (o *Overlay) Name() string { return "Overlay" }

// Hooks implements modhost.Module.
func (o *Overlay) Hooks() modhost.Hooks {
	return modhost.Hooks{
		OnReloadConfig: o.reload,
		OnGameJoin:     func() { o.frames = 0 },
		OnDraw:         o.draw,
		OnLeftClick:    o.onClick,
		OnUserInput:    o.onInput,
	}
}

// Frames returns the number of frames drawn since the game was joined.
func (o *Overlay) Frames() int { return o.frames }

// Collapsed reports whether the overlay is collapsed.
func (o *Overlay) Collapsed() bool { return o.collapsed }

func (o *Overlay) reload(cfg config.Config) error {
	bg := render.Color(cfg.Int("background", int(render.ColorBlack)))
	if bg < render.ColorNone {
		return fmt.Errorf("background must be a color or -1, got %d", bg)
	}
	o.background = bg
	o.hook.X = cfg.Int("x", o.hook.X)
	o.hook.Y = cfg.Int("y", o.hook.Y)
	o.hook.Font = render.Font(cfg.Int("font", int(o.hook.Font)))
	o.hook.Visible = cfg.Bool("visible", true)
	return nil
}

func (o *Overlay) draw() {
	o.frames++
	if o.r == nil {
		return
	}
	if o.collapsed {
		o.hook.Text = "[+]"
	} else {
		o.hook.Text = render.Textf("modhost frame %d", o.frames)
	}
	if o.hook.Visible && o.background != render.ColorNone {
		x1, y1, x2, y2 := o.hook.Bounds(o.r)
		o.r.DrawRect(x1-2, y1-1, x2+2, y2+1, o.background)
	}
	o.hook.Draw(o.r)
}

func (o *Overlay) onClick(ev *modhost.ClickEvent) {
	if o.r == nil {
		return
	}
	if o.hook.LeftClick(o.r, ev.Up, int(ev.X), int(ev.Y)) {
		ev.Blocked = true
	}
}

func (o *Overlay) onInput(in modhost.UserInput) bool {
	verb, _ := command(in.Message)
	switch verb {
	case "show":
		o.hook.Visible = true
	case "hide":
		o.hook.Visible = false
	default:
		return false
	}
	return true
}
