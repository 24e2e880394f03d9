package render

import (
	"fmt"

	"github.com/playmatatu/pinball/internal/game"
)

const (
	ButtonWidth  = 240
	ButtonHeight = 60
)

// Rect is an axis-aligned rectangle in surface coordinates.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

func (r Rect) Width() float64  { return r.X2 - r.X1 }
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// OverlayLayout positions the start/game-over overlay on a surface.
type OverlayLayout struct {
	TitleX, TitleY               float64
	InstructionsX, InstructionsY float64
	Button                       Rect
}

// LayoutOverlay centres the overlay on a w×h surface. The button is a fixed
// size in surface units, just below the centre line.
func LayoutOverlay(w, h float64) OverlayLayout {
	return LayoutOverlayScaled(w, h, ButtonWidth, ButtonHeight, 80, 35, 20)
}

// LayoutOverlayScaled is LayoutOverlay with explicit sizes, for surfaces
// measured in something other than pixels.
func LayoutOverlayScaled(w, h, bw, bh, titleUp, textUp, buttonDown float64) OverlayLayout {
	cx, cy := w/2, h/2
	return OverlayLayout{
		TitleX:        cx,
		TitleY:        cy - titleUp,
		InstructionsX: cx,
		InstructionsY: cy - textUp,
		Button: Rect{
			X1: cx - bw/2,
			Y1: cy + buttonDown,
			X2: cx + bw/2,
			Y2: cy + buttonDown + bh,
		},
	}
}

// HUD returns the score and lives lines drawn at the top of the table.
func HUD(s game.Snapshot) (score, balls string) {
	return fmt.Sprintf("%d", s.Score), fmt.Sprintf("BALLS: %d", s.Lives)
}
