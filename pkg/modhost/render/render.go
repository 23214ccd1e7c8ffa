// Package render is the boundary between modules and the host's drawing
// primitives.
//
// The host implements Renderer; modules draw through it from their draw
// hooks. Text is always passed pre-formatted. Use Textf at the call site
// when formatting is needed.
package render

import "fmt"

// Align is horizontal text alignment relative to the draw position.
type Align int

// Alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font selects one of the host's built-in fonts.
type Font uint

// Color is a host text or shape color.
type Color int

// Colors.
const (
	// ColorNone disables an optional color, such as a hover color.
	ColorNone Color = iota - 1
	ColorWhite
	ColorRed
	ColorGreen
	ColorBlue
	ColorGold
	ColorGrey
	ColorBlack
	ColorTan
	ColorOrange
	ColorYellow
)

// Renderer draws onto the host's current frame.
type Renderer interface {
	// DrawText draws text with its top edge at y. x is the left edge,
	// center, or right edge depending on align.
	DrawText(x, y int, align Align, font Font, color Color, text string)

	// TextSize measures text in pixels.
	TextSize(text string, font Font) (w, h int)

	// DrawRect fills the rectangle from (x1, y1) to (x2, y2).
	DrawRect(x1, y1, x2, y2 int, color Color)

	// Cursor returns the mouse position in screen coordinates.
	Cursor() (x, y int)
}

// Textf formats text for drawing.
func Textf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
