package game

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

var ErrInvalidLayout = errors.New("invalid table layout")

// Point is a plain coordinate pair used by layout files.
type Point struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
}

func (p Point) Vec() Vec2 { return Vec2{X: p.X, Y: p.Y} }

type SegmentSpec struct {
	From Point       `toml:"from" json:"from"`
	To   Point       `toml:"to" json:"to"`
	Kind SegmentKind `toml:"kind" json:"kind"`
}

type BumperSpec struct {
	At     Point   `toml:"at" json:"at"`
	Radius float64 `toml:"radius" json:"radius"`
	Color  string  `toml:"color" json:"color,omitempty"`
}

// FlipperSpec describes both flippers. Angles are in degrees.
type FlipperSpec struct {
	Left      Point   `toml:"left" json:"left"`
	Right     Point   `toml:"right" json:"right"`
	Length    float64 `toml:"length" json:"length"`
	Width     float64 `toml:"width" json:"width"`
	RestAngle float64 `toml:"rest_angle" json:"rest_angle"`
	FlipAngle float64 `toml:"flip_angle" json:"flip_angle"`
}

// Layout is the static description of one table design.
type Layout struct {
	Name     string        `toml:"name" json:"name"`
	Segments []SegmentSpec `toml:"segments" json:"segments"`
	Bumpers  []BumperSpec  `toml:"bumpers" json:"bumpers"`
	Flippers FlipperSpec   `toml:"flippers" json:"flippers"`
	Palette  Palette       `toml:"palette" json:"palette"`
}

func seg(x1, y1, x2, y2 float64, kind SegmentKind) SegmentSpec {
	return SegmentSpec{From: Point{x1, y1}, To: Point{x2, y2}, Kind: kind}
}

// DefaultLayout is the neon table: plunger lane on the right, slingshots
// above each flipper and three bumpers in a triangle near the top.
func DefaultLayout() Layout {
	const (
		w = TableWidth
		h = TableHeight

		drainLeft  = 165.0
		drainRight = 235.0
	)
	palette := NeonPalette()

	segments := []SegmentSpec{
		// Outer boundary. The left wall runs to the bottom so the corner
		// cannot leak.
		seg(0, 0, 0, h, SegmentWall),
		seg(0, 100, 100, 0, SegmentWall),
		seg(100, 0, w-40, 0, SegmentWall),

		// Right edge and plunger lane.
		seg(w, 0, w, h, SegmentWall),
		seg(w-40, 140, w-40, h-40, SegmentLane),
		seg(w-40, h-40, w, h-40, SegmentLane),
		seg(w, 140, w-40, 0, SegmentWall),

		// Drain guides.
		seg(0, h-200, 110, h-60, SegmentWall),
		seg(w-40, h-200, w-150, h-60, SegmentWall),

		// Bottom rails with the drain gap between the flippers.
		seg(0, h, drainLeft, h, SegmentRail),
		seg(drainRight, h, w, h, SegmentRail),

		// Left slingshot.
		seg(40, h-180, 40, h-120, SegmentSlingshot),
		seg(40, h-120, 90, h-150, SegmentSlingshot),
		seg(90, h-150, 40, h-180, SegmentSlingshot),
		// Right slingshot.
		seg(w-80, h-180, w-80, h-120, SegmentSlingshot),
		seg(w-80, h-120, w-130, h-150, SegmentSlingshot),
		seg(w-130, h-150, w-80, h-180, SegmentSlingshot),
	}

	bumpers := []BumperSpec{
		{At: Point{w / 2, 150}, Radius: BumperRadius, Color: palette.Bumper},
		{At: Point{w/2 - 60, 220}, Radius: BumperRadius, Color: palette.Bumper},
		{At: Point{w/2 + 60, 220}, Radius: BumperRadius, Color: palette.Bumper},
	}

	return Layout{
		Name:     "neon",
		Segments: segments,
		Bumpers:  bumpers,
		Flippers: FlipperSpec{
			Left:      Point{110, h - 60},
			Right:     Point{260, h - 60},
			Length:    FlipperLength,
			Width:     FlipperWidth,
			RestAngle: 30,
			FlipAngle: 45,
		},
		Palette: palette,
	}
}

// Validate checks that the layout can be built into a playable table.
func (l Layout) Validate() error {
	if len(l.Segments) == 0 {
		return fmt.Errorf("%w: no segments", ErrInvalidLayout)
	}
	for i, s := range l.Segments {
		if s.Kind < SegmentWall || s.Kind > SegmentRail {
			return fmt.Errorf("%w: segment %d has unknown kind", ErrInvalidLayout, i)
		}
		if !s.From.Vec().IsFinite() || !s.To.Vec().IsFinite() {
			return fmt.Errorf("%w: segment %d has non-finite endpoint", ErrInvalidLayout, i)
		}
	}
	for i, b := range l.Bumpers {
		if !b.At.Vec().IsFinite() {
			return fmt.Errorf("%w: bumper %d has non-finite position", ErrInvalidLayout, i)
		}
		if !(b.Radius > 0) || math.IsInf(b.Radius, 1) {
			return fmt.Errorf("%w: bumper %d radius must be positive", ErrInvalidLayout, i)
		}
	}
	f := l.Flippers
	if !f.Left.Vec().IsFinite() || !f.Right.Vec().IsFinite() {
		return fmt.Errorf("%w: flipper pivot is not finite", ErrInvalidLayout)
	}
	if !(f.Length > 0) || math.IsInf(f.Length, 1) {
		return fmt.Errorf("%w: flipper length must be positive", ErrInvalidLayout)
	}
	if !NewVec2(f.RestAngle, f.FlipAngle).IsFinite() || math.IsInf(f.Width, 1) {
		return fmt.Errorf("%w: flipper angles and width must be finite", ErrInvalidLayout)
	}
	if f.Width < 0 {
		return fmt.Errorf("%w: flipper width must not be negative", ErrInvalidLayout)
	}
	return nil
}

// Build turns the layout into fresh table state with flippers at rest and
// no bumper flashing. Missing palette entries fall back to the neon palette.
func (l Layout) Build() *Table {
	palette := l.Palette.withDefaults(NeonPalette())

	segments := make([]Segment, len(l.Segments))
	for i, s := range l.Segments {
		segments[i] = NewSegment(s.From.Vec(), s.To.Vec(), s.Kind)
	}

	bumpers := make([]Bumper, len(l.Bumpers))
	for i, b := range l.Bumpers {
		color := b.Color
		if color == "" {
			color = palette.Bumper
		}
		bumpers[i] = Bumper{Position: b.At.Vec(), Radius: b.Radius, Color: color}
	}

	f := l.Flippers
	width := f.Width
	if width == 0 {
		width = FlipperWidth
	}
	rest := f.RestAngle * math.Pi / 180
	flip := f.FlipAngle * math.Pi / 180

	return &Table{
		Name:     l.Name,
		Segments: segments,
		Bumpers:  bumpers,
		Left:     NewFlipper(f.Left.Vec(), f.Length, width, SideLeft, rest, flip),
		Right:    NewFlipper(f.Right.Vec(), f.Length, width, SideRight, rest, flip),
		Palette:  palette,
	}
}

func (p Palette) withDefaults(d Palette) Palette {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Palette{
		Backdrop:   pick(p.Backdrop, d.Backdrop),
		Background: pick(p.Background, d.Background),
		Grid:       pick(p.Grid, d.Grid),
		Ball:       pick(p.Ball, d.Ball),
		Flipper:    pick(p.Flipper, d.Flipper),
		Bumper:     pick(p.Bumper, d.Bumper),
		Slingshot:  pick(p.Slingshot, d.Slingshot),
		Wall:       pick(p.Wall, d.Wall),
		Accent:     pick(p.Accent, d.Accent),
	}
}

// DecodeLayout parses a TOML layout document.
func DecodeLayout(data string) (Layout, error) {
	var l Layout
	if _, err := toml.Decode(data, &l); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LoadLayout reads a TOML layout file. An empty path yields DefaultLayout.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	l, err := DecodeLayout(string(data))
	if err != nil {
		return Layout{}, fmt.Errorf("load layout %s: %w", path, err)
	}
	if l.Name == "" {
		l.Name = path
	}
	return l, nil
}
