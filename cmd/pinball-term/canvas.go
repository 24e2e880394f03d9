package main

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/render"
)

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2.0

type cell struct {
	r     rune
	style tcell.Style
}

// canvas is a frame of terminal cells drawn in logical table units.
type canvas struct {
	w, h  int
	cells []cell
	view  render.Viewport
	shake game.Vec2
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	c.view = render.FitCells(float64(w), float64(h), game.TableWidth, game.TableHeight, cellAspect)
	return c
}

func styleFor(fg, bg color.RGBA) tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
		Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
}

func (c *canvas) fill(style tcell.Style) {
	for i := range c.cells {
		c.cells[i] = cell{r: ' ', style: style}
	}
}

func (c *canvas) set(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = cell{r: r, style: style}
}

func (c *canvas) at(x, y int) cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return cell{}
	}
	return c.cells[y*c.w+x]
}

func (c *canvas) cellOf(p game.Vec2) (int, int) {
	x, y := c.view.ToScreen(p, c.shake)
	return int(math.Floor(x)), int(math.Floor(y))
}

// plot marks the cell under a logical point.
func (c *canvas) plot(p game.Vec2, r rune, style tcell.Style) {
	x, y := c.cellOf(p)
	c.set(x, y, r, style)
}

// line samples a logical segment at cell resolution.
func (c *canvas) line(a, b game.Vec2, r rune, style tcell.Style) {
	x1, y1 := c.cellOf(a)
	x2, y2 := c.cellOf(b)
	steps := max(abs(x2-x1), abs(y2-y1), 1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.plot(a.Plus(b.Minus(a).Times(t)), r, style)
	}
}

// disc fills every cell whose centre lies within radius of centre.
func (c *canvas) disc(centre game.Vec2, radius float64, r rune, style tcell.Style) {
	cx, cy := c.cellOf(centre)
	rx := int(math.Ceil(radius*c.view.ScaleX)) + 1
	ry := int(math.Ceil(radius*c.view.ScaleY)) + 1
	hit := false
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			p := c.view.ToLogical(float64(x)+0.5-c.shake.X, float64(y)+0.5-c.shake.Y)
			if p.Minus(centre).Magnitude() <= radius {
				c.set(x, y, r, style)
				hit = true
			}
		}
	}
	// Small discs still show up as one cell.
	if !hit {
		c.set(cx, cy, r, style)
	}
}

// text writes s centred on column x of row y.
func (c *canvas) text(s string, x, y int, style tcell.Style) {
	runes := []rune(s)
	start := x - len(runes)/2
	for i, r := range runes {
		c.set(start+i, y, r, style)
	}
}

func (c *canvas) blit(screen tcell.Screen) {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			cl := c.cells[y*c.w+x]
			screen.SetContent(x, y, cl.r, nil, cl.style)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
