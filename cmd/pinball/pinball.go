package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/render"
)

const (
	gridStep = 40
	// Debug font cell size in pixels.
	glyphW = 6
	glyphH = 16
)

// pinball drives a local session: Update is the frame driver, Draw renders.
type pinball struct {
	session *game.Session
	colors  render.Colors
	grid    []render.Line

	width, height int
	view          render.Viewport
}

func newPinball(layout game.Layout, seed int64) *pinball {
	s := game.NewSession(layout, seed)
	return &pinball{
		session: s,
		colors:  render.ColorsFor(s.Table.Palette),
		grid:    render.GridLines(game.TableWidth, game.TableHeight, gridStep),
	}
}

func (p *pinball) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != p.width || outsideHeight != p.height {
		p.width, p.height = outsideWidth, outsideHeight
		p.view = render.Fit(float64(outsideWidth), float64(outsideHeight), game.TableWidth, game.TableHeight)
	}
	return outsideWidth, outsideHeight
}

func (p *pinball) Update() error {
	s := p.session
	s.SetLeftFlipperPressed(ebiten.IsKeyPressed(ebiten.KeyArrowLeft))
	s.SetRightFlipperPressed(ebiten.IsKeyPressed(ebiten.KeyArrowRight))
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		s.RequestLaunch()
	}

	if _, ok := game.OverlayFor(s.State); ok {
		restart := inpututil.IsKeyJustPressed(ebiten.KeyEnter)
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			x, y := ebiten.CursorPosition()
			o := render.LayoutOverlay(float64(p.width), float64(p.height))
			restart = restart || o.Button.Contains(float64(x), float64(y))
		}
		if restart {
			s.RequestRestart()
		}
	}

	s.AdvanceOneFrame()
	return nil
}

func (p *pinball) Draw(screen *ebiten.Image) {
	snap := p.session.RenderFrame()
	c := p.colors
	v := p.view
	shake := snap.Shake

	screen.Fill(c.Backdrop)
	x0, y0 := v.ToScreen(game.Vec2{}, shake)
	vector.DrawFilledRect(screen, float32(x0), float32(y0),
		float32(v.Width(snap.Width)), float32(snap.Height*v.ScaleY), c.Background, false)

	for _, l := range p.grid {
		p.line(screen, l.From, l.To, shake, 1, c.Grid)
	}

	for _, seg := range snap.Segments {
		stroke := c.SegmentColor(seg.Kind)
		p.line(screen, seg.P1, seg.P2, shake, 9, c.Glow(stroke))
		p.line(screen, seg.P1, seg.P2, shake, 3, stroke)
	}

	for _, b := range snap.Bumpers {
		x, y := v.ToScreen(b.Position, shake)
		r := float32(v.Width(b.Radius))
		vector.DrawFilledCircle(screen, float32(x), float32(y), r, c.BumperColor(b), true)
		vector.StrokeCircle(screen, float32(x), float32(y), r*0.6, 2, c.BumperRing, true)
	}

	for _, f := range snap.Flippers {
		q := render.FlipperQuad(f)
		for i := range q {
			p.line(screen, q[i], q[(i+1)%len(q)], shake, 1, c.Glow(c.Flipper))
		}
		p.line(screen, f.Pivot, f.Tip, shake, float32(v.Width(f.Width)), c.Flipper)
		px, py := v.ToScreen(f.Pivot, shake)
		vector.DrawFilledCircle(screen, float32(px), float32(py), float32(v.Width(f.Width/2)), c.Flipper, true)
	}

	if snap.Ball.Active {
		x, y := v.ToScreen(snap.Ball.Position, shake)
		r := float32(v.Width(snap.Ball.Radius))
		vector.DrawFilledCircle(screen, float32(x), float32(y), r*1.6, c.BallGlow, true)
		vector.DrawFilledCircle(screen, float32(x), float32(y), r, c.Ball, true)
	}

	p.drawHUD(screen, snap)
	if snap.Overlay != nil {
		p.drawOverlay(screen, *snap.Overlay)
	}
}

func (p *pinball) line(dst *ebiten.Image, a, b, shake game.Vec2, width float32, clr color.Color) {
	x1, y1 := p.view.ToScreen(a, shake)
	x2, y2 := p.view.ToScreen(b, shake)
	vector.StrokeLine(dst, float32(x1), float32(y1), float32(x2), float32(y2), width, clr, true)
}

func (p *pinball) drawHUD(screen *ebiten.Image, snap game.Snapshot) {
	score, balls := render.HUD(snap)
	cx := snap.Width / 2
	for _, row := range []struct {
		text string
		y    float64
	}{{score, 40}, {balls, 78}} {
		x, y := p.view.ToScreen(game.Vec2{X: cx, Y: row.y}, game.Vec2{})
		centredText(screen, row.text, x, y)
	}
}

func (p *pinball) drawOverlay(screen *ebiten.Image, o game.Overlay) {
	w, h := float64(p.width), float64(p.height)
	vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), p.colors.Dim, false)

	l := render.LayoutOverlay(w, h)
	centredText(screen, o.Title, l.TitleX, l.TitleY)
	centredText(screen, o.Instructions, l.InstructionsX, l.InstructionsY)

	b := l.Button
	vector.DrawFilledRect(screen, float32(b.X1), float32(b.Y1), float32(b.Width()), float32(b.Height()), p.colors.ButtonFill, false)
	vector.StrokeRect(screen, float32(b.X1), float32(b.Y1), float32(b.Width()), float32(b.Height()), 2, p.colors.Accent, false)
	centredText(screen, o.Button, b.X1+b.Width()/2, b.Y1+b.Height()/2)
}

// centredText prints text with the debug font centred on (x, y).
func centredText(screen *ebiten.Image, text string, x, y float64) {
	ebitenutil.DebugPrintAt(screen, text, int(x)-len(text)*glyphW/2, int(y)-glyphH/2)
}
