package render

// TextHook is a piece of positioned, clickable text.
//
// The zero value is usable but invisible; NewTextHook returns a visible
// white hook. TextHook is not safe for concurrent use.
type TextHook struct {
	X, Y  int
	Align Align
	Text  string
	Font  Font
	Color Color
	// HoverColor replaces Color while the cursor is over the text.
	// ColorNone disables hover highlighting.
	HoverColor Color
	Visible    bool

	// OnLeftClick and OnRightClick run for clicks inside the text.
	// Returning true claims the click.
	OnLeftClick  func(up bool) bool
	OnRightClick func(up bool) bool
}

// NewTextHook returns a visible hook drawing text at (x, y).
func NewTextHook(x, y int, text string) *TextHook {
	return &TextHook{
		X:          x,
		Y:          y,
		Text:       text,
		Color:      ColorWhite,
		HoverColor: ColorNone,
		Visible:    true,
	}
}

// Size returns the pixel size of the hook's text.
func (h *TextHook) Size(r Renderer) (w, ht int) {
	return r.TextSize(h.Text, h.Font)
}

// Bounds returns the screen rectangle covered by the text.
func (h *TextHook) Bounds(r Renderer) (x1, y1, x2, y2 int) {
	w, ht := h.Size(r)
	x1 = h.X
	switch h.Align {
	case AlignCenter:
		x1 -= w / 2
	case AlignRight:
		x1 -= w
	}
	return x1, h.Y, x1 + w, h.Y + ht
}

// Contains reports whether (x, y) is over the visible text.
func (h *TextHook) Contains(r Renderer, x, y int) bool {
	if !h.Visible || h.Text == "" {
		return false
	}
	x1, y1, x2, y2 := h.Bounds(r)
	return x >= x1 && x < x2 && y >= y1 && y < y2
}

// Draw renders the text, in HoverColor if the cursor is over it.
func (h *TextHook) Draw(r Renderer) {
	if !h.Visible || h.Text == "" {
		return
	}
	color := h.Color
	if h.HoverColor != ColorNone {
		if cx, cy := r.Cursor(); h.Contains(r, cx, cy) {
			color = h.HoverColor
		}
	}
	r.DrawText(h.X, h.Y, h.Align, h.Font, color, h.Text)
}

// LeftClick forwards a left click at (x, y) to OnLeftClick if it lands on
// the text. It reports whether the click was claimed.
func (h *TextHook) LeftClick(r Renderer, up bool, x, y int) bool {
	return h.click(r, h.OnLeftClick, up, x, y)
}

// RightClick forwards a right click at (x, y) to OnRightClick if it lands
// on the text. It reports whether the click was claimed.
func (h *TextHook) RightClick(r Renderer, up bool, x, y int) bool {
	return h.click(r, h.OnRightClick, up, x, y)
}

func (h *TextHook) click(r Renderer, fn func(bool) bool, up bool, x, y int) bool {
	if fn == nil || !h.Contains(r, x, y) {
		return false
	}
	return fn(up)
}
