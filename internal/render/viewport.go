package render

import "github.com/playmatatu/pinball/internal/game"

// Viewport maps logical table units onto a surface, preserving the table's
// aspect ratio and centring it (letterboxing).
type Viewport struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64
}

// Fit letterboxes a logicalW×logicalH table into a surfaceW×surfaceH pixel
// surface.
func Fit(surfaceW, surfaceH, logicalW, logicalH float64) Viewport {
	return FitCells(surfaceW, surfaceH, logicalW, logicalH, 1)
}

// FitCells is Fit for surfaces whose cells are cellAspect times taller than
// they are wide, like a terminal grid.
func FitCells(surfaceW, surfaceH, logicalW, logicalH, cellAspect float64) Viewport {
	if surfaceW < 1 {
		surfaceW = 1
	}
	if surfaceH < 1 {
		surfaceH = 1
	}
	if cellAspect <= 0 {
		cellAspect = 1
	}
	scale := min(surfaceW/logicalW, surfaceH*cellAspect/logicalH)
	v := Viewport{ScaleX: scale, ScaleY: scale / cellAspect}
	v.OffsetX = (surfaceW - logicalW*v.ScaleX) / 2
	v.OffsetY = (surfaceH - logicalH*v.ScaleY) / 2
	return v
}

// ToScreen converts a logical point, shifted by the shake offset, into
// surface coordinates.
func (v Viewport) ToScreen(p, shake game.Vec2) (float64, float64) {
	return v.OffsetX + p.X*v.ScaleX + shake.X, v.OffsetY + p.Y*v.ScaleY + shake.Y
}

// ToLogical is the inverse of ToScreen without shake.
func (v Viewport) ToLogical(x, y float64) game.Vec2 {
	return game.Vec2{X: (x - v.OffsetX) / v.ScaleX, Y: (y - v.OffsetY) / v.ScaleY}
}

// Width scales a logical length horizontally.
func (v Viewport) Width(w float64) float64 {
	return w * v.ScaleX
}

// Line is a pair of logical points.
type Line struct {
	From, To game.Vec2
}

// GridLines returns the backdrop grid of the table, every step units.
func GridLines(width, height, step float64) []Line {
	if step <= 0 {
		return nil
	}
	var lines []Line
	for x := 0.0; x <= width; x += step {
		lines = append(lines, Line{From: game.Vec2{X: x}, To: game.Vec2{X: x, Y: height}})
	}
	for y := 0.0; y <= height; y += step {
		lines = append(lines, Line{From: game.Vec2{Y: y}, To: game.Vec2{X: width, Y: y}})
	}
	return lines
}

// FlipperQuad returns the four corners of a flipper drawn as a rectangle of
// the given width around pivot→tip.
func FlipperQuad(f game.FlipperView) [4]game.Vec2 {
	axis := f.Tip.Minus(f.Pivot).Normalize()
	perp := axis.LeftNormal().Times(f.Width / 2)
	return [4]game.Vec2{
		f.Pivot.Plus(perp),
		f.Pivot.Minus(perp),
		f.Tip.Minus(perp),
		f.Tip.Plus(perp),
	}
}
