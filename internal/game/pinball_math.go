package game

// Shape is anything the ball can touch. A shape is a core (point or
// segment) inflated by a thickness.
type Shape interface {
	// Nearest returns the point of the shape's core closest to p.
	Nearest(p Vec2) Vec2
	// Thickness is the collision radius around the core.
	Thickness() float64
	// FallbackNormal is used when the ball centre lies exactly on the core.
	FallbackNormal() Vec2
}

// contact describes an overlap between the ball and a shape.
type contact struct {
	normal  Vec2    // unit vector from the shape towards the ball centre
	overlap float64 // penetration depth along normal
}

// touch tests the ball against s and returns the penetration normal and depth.
func touch(ball *Ball, s Shape) (contact, bool) {
	closest := s.Nearest(ball.Position)
	d := ball.Position.Minus(closest)
	dist := d.Magnitude()
	reach := ball.Radius + s.Thickness()
	if !(dist < reach) {
		return contact{}, false
	}
	return contact{normal: contactNormal(d, dist, s.FallbackNormal()), overlap: reach - dist}, true
}

// contactNormal normalizes d, returning fallback when d has zero length.
func contactNormal(d Vec2, dist float64, fallback Vec2) Vec2 {
	if dist == 0 {
		return fallback
	}
	return Vec2{X: d.X / dist, Y: d.Y / dist}
}

// closestPointOnSegment projects p onto a→b, clamped to the segment.
// A zero-length segment uses a unit denominator and returns a.
func closestPointOnSegment(a, b, p Vec2) Vec2 {
	v := b.Minus(a)
	vv := v.Dot(v)
	if vv == 0 {
		vv = 1
	}
	t := clamp(p.Minus(a).Dot(v)/vv, 0, 1)
	return a.Plus(v.Times(t))
}

// reflectVelocity returns v reflected about n with restitution e: v - (1+e)(v·n)n.
func reflectVelocity(v, n Vec2, e float64) Vec2 {
	dot := v.Dot(n)
	return Vec2{
		X: v.X - (1+e)*dot*n.X,
		Y: v.Y - (1+e)*dot*n.Y,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
