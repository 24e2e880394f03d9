package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/playmatatu/pinball/internal/game"
)

// Colors is a palette resolved to concrete RGBA values.
type Colors struct {
	Backdrop   color.RGBA
	Background color.RGBA
	Grid       color.RGBA
	Ball       color.RGBA
	BallGlow   color.RGBA
	Flipper    color.RGBA
	Bumper     color.RGBA
	BumperRing color.RGBA
	Flash      color.RGBA
	Slingshot  color.RGBA
	Wall       color.RGBA
	Accent     color.RGBA
	Text       color.RGBA
	Dim        color.RGBA
	ButtonFill color.RGBA
}

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// ParseColor reads a "#rrggbb" colour.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	return toRGBA(c), nil
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Blend mixes a towards b by t in [0, 1], in Lab space.
func Blend(a, b color.RGBA, t float64) color.RGBA {
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	return toRGBA(ca.BlendLab(cb, t))
}

// ColorsFor resolves a palette. Entries that do not parse fall back to the
// neon palette.
func ColorsFor(p game.Palette) Colors {
	neon := game.NeonPalette()
	pick := func(v, def string) color.RGBA {
		if c, err := ParseColor(v); err == nil {
			return c
		}
		if c, err := ParseColor(def); err == nil {
			return c
		}
		return white
	}

	c := Colors{
		Backdrop:   pick(p.Backdrop, neon.Backdrop),
		Background: pick(p.Background, neon.Background),
		Grid:       pick(p.Grid, neon.Grid),
		Ball:       pick(p.Ball, neon.Ball),
		Flipper:    pick(p.Flipper, neon.Flipper),
		Bumper:     pick(p.Bumper, neon.Bumper),
		Slingshot:  pick(p.Slingshot, neon.Slingshot),
		Wall:       pick(p.Wall, neon.Wall),
		Accent:     pick(p.Accent, neon.Accent),
		Flash:      white,
		Text:       color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff},
		Dim:        color.RGBA{A: 0xc0},
		ButtonFill: color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff},
	}
	c.BallGlow = Blend(c.Ball, c.Background, 0.2)
	c.BumperRing = Blend(c.Bumper, color.RGBA{R: 0x33, B: 0x33, A: 0xff}, 0.8)
	return c
}

// BumperColor is the fill of a bumper this frame.
func (c Colors) BumperColor(b game.BumperView) color.RGBA {
	if b.Flash {
		return c.Flash
	}
	if own, err := ParseColor(b.Color); err == nil {
		return own
	}
	return c.Bumper
}

// SegmentColor is the stroke of a segment by kind.
func (c Colors) SegmentColor(kind string) color.RGBA {
	if kind == game.SegmentSlingshot.String() {
		return c.Slingshot
	}
	return c.Wall
}

// Glow is a darker companion colour drawn under a stroke.
func (c Colors) Glow(base color.RGBA) color.RGBA {
	return Blend(base, c.Background, 0.55)
}
