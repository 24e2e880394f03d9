package game

import (
	"fmt"
	"math"
)

type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Flipper is a segment rotating about a fixed pivot. Angles are mirrored
// between sides: the left flipper rests at +rest and flips to -flip, the
// right one rests at π-rest and flips to π+flip.
type Flipper struct {
	Pivot     Vec2
	Length    float64
	Width     float64
	Side      Side
	RestAngle float64
	FlipAngle float64
	Angle     float64
	Target    float64
}

// NewFlipper creates a flipper at rest. restMag and flipMag are positive
// magnitudes in radians.
func NewFlipper(pivot Vec2, length, width float64, side Side, restMag, flipMag float64) *Flipper {
	f := &Flipper{
		Pivot:  pivot,
		Length: length,
		Width:  width,
		Side:   side,
	}
	if side == SideLeft {
		f.RestAngle = restMag
		f.FlipAngle = -flipMag
	} else {
		f.RestAngle = math.Pi - restMag
		f.FlipAngle = math.Pi + flipMag
	}
	f.Angle = f.RestAngle
	f.Target = f.RestAngle
	return f
}

func (f *Flipper) SetPressed(pressed bool) {
	if pressed {
		f.Target = f.FlipAngle
	} else {
		f.Target = f.RestAngle
	}
}

// Advance moves the angle a fraction of the way towards the target.
func (f *Flipper) Advance(speed float64) {
	f.Angle += (f.Target - f.Angle) * speed
}

// Tip is recomputed from the current angle on every call.
func (f *Flipper) Tip() Vec2 {
	return Vec2{
		X: f.Pivot.X + math.Cos(f.Angle)*f.Length,
		Y: f.Pivot.Y + math.Sin(f.Angle)*f.Length,
	}
}

// Striking reports whether the flipper is swinging towards its flip angle.
func (f *Flipper) Striking() bool {
	switch f.Side {
	case SideLeft:
		return f.Target < f.Angle
	case SideRight:
		return f.Target > f.Angle
	}
	return false
}

// Kick is the extra velocity a striking flipper gives the ball, aimed
// towards the middle of the table.
func (f *Flipper) Kick() Vec2 {
	if f.Side == SideLeft {
		return Vec2{X: FlipperKickX, Y: FlipperKickY}
	}
	return Vec2{X: -FlipperKickX, Y: FlipperKickY}
}

func (f *Flipper) Nearest(p Vec2) Vec2 { return closestPointOnSegment(f.Pivot, f.Tip(), p) }

func (f *Flipper) Thickness() float64 { return FlipperRadius }

func (f *Flipper) FallbackNormal() Vec2 { return Vec2{X: 0, Y: -1} }
