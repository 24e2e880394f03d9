package main

import (
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/render"
)

// overlayIn lays out the overlay in cells.
func overlayIn(w, h int) render.OverlayLayout {
	return render.LayoutOverlayScaled(float64(w), float64(h), 24, 3, 4, 2, 1)
}

// drawFrame paints one snapshot onto c.
func drawFrame(c *canvas, snap game.Snapshot, colors render.Colors) {
	c.shake = game.Vec2{X: snap.Shake.X * c.view.ScaleX, Y: snap.Shake.Y * c.view.ScaleY}
	bg := colors.Background
	c.fill(styleFor(colors.Text, colors.Backdrop))

	table := styleFor(colors.Grid, bg)
	for y := 0.0; y < snap.Height; y += 1 / c.view.ScaleY {
		c.line(game.Vec2{Y: y}, game.Vec2{X: snap.Width, Y: y}, ' ', table)
	}

	for _, seg := range snap.Segments {
		c.line(seg.P1, seg.P2, '#', styleFor(colors.SegmentColor(seg.Kind), bg))
	}
	for _, b := range snap.Bumpers {
		c.disc(b.Position, b.Radius, 'O', styleFor(colors.BumperColor(b), bg))
	}
	for _, f := range snap.Flippers {
		c.line(f.Pivot, f.Tip, '=', styleFor(colors.Flipper, bg))
	}
	if snap.Ball.Active {
		c.disc(snap.Ball.Position, snap.Ball.Radius, '@', styleFor(colors.Ball, bg))
	}

	c.shake = game.Vec2{}
	score, balls := render.HUD(snap)
	hud := styleFor(colors.Accent, bg)
	for _, row := range []struct {
		text string
		y    float64
	}{{score, 40}, {balls, 78}} {
		x, y := c.cellOf(game.Vec2{X: snap.Width / 2, Y: row.y})
		c.text(row.text, x, y, hud)
	}

	if snap.Overlay != nil {
		drawOverlay(c, *snap.Overlay, colors)
	}
}

func drawOverlay(c *canvas, o game.Overlay, colors render.Colors) {
	l := overlayIn(c.w, c.h)
	text := styleFor(colors.Text, colors.Backdrop)
	c.text(o.Title, int(l.TitleX), int(l.TitleY), text.Bold(true))
	c.text(o.Instructions, int(l.InstructionsX), int(l.InstructionsY), text)

	b := l.Button
	button := styleFor(colors.Accent, colors.ButtonFill)
	for y := int(b.Y1); y < int(b.Y2); y++ {
		for x := int(b.X1); x < int(b.X2); x++ {
			c.set(x, y, ' ', button)
		}
	}
	c.text(o.Button, int(b.X1+b.Width()/2), int(b.Y1+b.Height()/2), button.Bold(true))
}
