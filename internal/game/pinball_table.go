package game

import (
	"fmt"
	"math"
	"strings"
)

// SegmentKind selects the collision response and scoring of a segment.
type SegmentKind int

const (
	SegmentWall SegmentKind = iota
	SegmentSlingshot
	SegmentLane
	SegmentRail
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentWall:
		return "wall"
	case SegmentSlingshot:
		return "slingshot"
	case SegmentLane:
		return "lane"
	case SegmentRail:
		return "rail"
	}
	return fmt.Sprintf("SegmentKind(%d)", int(k))
}

// ParseSegmentKind converts a layout name ("wall", "slingshot", "lane",
// "rail") into a SegmentKind.
func ParseSegmentKind(s string) (SegmentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wall":
		return SegmentWall, nil
	case "slingshot":
		return SegmentSlingshot, nil
	case "lane":
		return SegmentLane, nil
	case "rail":
		return SegmentRail, nil
	}
	return 0, fmt.Errorf("%w: unknown segment kind %q", ErrInvalidLayout, s)
}

func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SegmentKind) UnmarshalText(text []byte) error {
	parsed, err := ParseSegmentKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Restitution is the bounce coefficient used when the ball hits this kind.
func (k SegmentKind) Restitution() float64 {
	if k == SegmentSlingshot {
		return SlingshotBounce
	}
	return WallBounce
}

// Segment is an immutable static line of the table.
type Segment struct {
	P1     Vec2        `json:"p1"`
	P2     Vec2        `json:"p2"`
	Kind   SegmentKind `json:"kind"`
	Normal Vec2        `json:"normal"` // unit left-hand normal of P1→P2
}

// NewSegment builds a segment and precomputes its left-hand normal.
// A zero-length segment gets a unit denominator so the normal stays finite.
func NewSegment(p1, p2 Vec2, kind SegmentKind) Segment {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	ln := math.Hypot(dx, dy)
	if ln == 0 {
		ln = 1
	}
	return Segment{
		P1:     p1,
		P2:     p2,
		Kind:   kind,
		Normal: Vec2{X: -dy / ln, Y: dx / ln},
	}
}

func (s Segment) Nearest(p Vec2) Vec2 { return closestPointOnSegment(s.P1, s.P2, p) }

func (s Segment) Thickness() float64 { return 0 }

func (s Segment) FallbackNormal() Vec2 { return s.Normal }

// Bumper is a round kicker with its own flash timer.
type Bumper struct {
	Position    Vec2    `json:"position"`
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	FlashFrames int     `json:"flash_frames"`
}

// Hit restarts the flash timer.
func (b *Bumper) Hit() {
	b.FlashFrames = BumperFlashFrames
}

func (b *Bumper) Nearest(Vec2) Vec2 { return b.Position }

func (b *Bumper) Thickness() float64 { return b.Radius }

func (b *Bumper) FallbackNormal() Vec2 { return Vec2{X: 0, Y: -1} }

// Palette holds the hex colours a renderer uses for each element.
type Palette struct {
	Backdrop   string `json:"backdrop" toml:"backdrop"`
	Background string `json:"background" toml:"background"`
	Grid       string `json:"grid" toml:"grid"`
	Ball       string `json:"ball" toml:"ball"`
	Flipper    string `json:"flipper" toml:"flipper"`
	Bumper     string `json:"bumper" toml:"bumper"`
	Slingshot  string `json:"slingshot" toml:"slingshot"`
	Wall       string `json:"wall" toml:"wall"`
	Accent     string `json:"accent" toml:"accent"`
}

// NeonPalette is the default colour scheme.
func NeonPalette() Palette {
	return Palette{
		Backdrop:   "#05030f",
		Background: "#120a2e",
		Grid:       "#2a1655",
		Ball:       "#ffffff",
		Flipper:    "#00f3ff",
		Bumper:     "#ff00ff",
		Slingshot:  "#ccff00",
		Wall:       "#8a2be2",
		Accent:     "#ffaa00",
	}
}

// Table holds the complete geometry for one game. Segments and bumpers are
// fixed after Build; only bumper flash timers and flipper angles change.
type Table struct {
	Name     string
	Segments []Segment
	Bumpers  []Bumper
	Left     *Flipper
	Right    *Flipper
	Palette  Palette
}

// Flippers returns both flippers, left first.
func (t *Table) Flippers() [2]*Flipper {
	return [2]*Flipper{t.Left, t.Right}
}
