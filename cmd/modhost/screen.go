package main

import (
	"fmt"
	"io"

	"github.com/randalmurphal/modhost/pkg/modhost/render"
)

// consoleRenderer prints draw calls instead of drawing them. Every glyph is
// measured as 8x16 pixels.
type consoleRenderer struct {
	out    io.Writer
	cx, cy int
}

func (c *consoleRenderer) DrawText(x, y int, _ render.Align, font render.Font, color render.Color, text string) {
	fmt.Fprintf(c.out, "  text %d,%d font=%d color=%d %q\n", x, y, font, color, text)
}

func (c *consoleRenderer) TextSize(text string, _ render.Font) (int, int) {
	return len(text) * 8, 16
}

func (c *consoleRenderer) DrawRect(x1, y1, x2, y2 int, color render.Color) {
	fmt.Fprintf(c.out, "  rect %d,%d-%d,%d color=%d\n", x1, y1, x2, y2, color)
}

func (c *consoleRenderer) Cursor() (int, int) {
	return c.cx, c.cy
}
