package game

import "math"

// Ball is the single dynamic body of a session. It is re-served rather than
// recreated when a life is lost.
type Ball struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Active   bool    `json:"active"`
}

func NewBall() *Ball {
	return &Ball{Radius: BallRadius}
}

// ResetInLane parks the ball at the bottom of the plunger lane.
func (b *Ball) ResetInLane() {
	b.Position = Vec2{X: LaneServeX, Y: LaneServeY}
	b.Velocity = Vec2{}
	b.Active = true
}

// InLane reports whether the ball sits in the plunger lane.
func (b *Ball) InLane() bool {
	return b.Position.X > LaneThreshold
}

// EventKind classifies what the ball touched.
type EventKind int

const (
	EventWall EventKind = iota
	EventSlingshot
	EventBumper
	EventFlipperKick
	EventFlipperRoll
)

func (k EventKind) String() string {
	switch k {
	case EventWall:
		return "wall"
	case EventSlingshot:
		return "slingshot"
	case EventBumper:
		return "bumper"
	case EventFlipperKick:
		return "flipper_kick"
	case EventFlipperRoll:
		return "flipper_roll"
	}
	return "unknown"
}

// CollisionEvent records one resolved contact for scoring and effects.
type CollisionEvent struct {
	Kind   EventKind `json:"kind"`
	Target int       `json:"target"` // segment index, bumper index, or flipper Side
	Speed  float64   `json:"speed"`  // ball speed before the response
}

// PhysicsEngine resolves ball contacts against a table. It never touches
// score or lives; callers consume Events.
type PhysicsEngine struct {
	Ball   *Ball
	Table  *Table
	Events []CollisionEvent
}

func NewPhysicsEngine(ball *Ball, table *Table) *PhysicsEngine {
	return &PhysicsEngine{
		Ball:   ball,
		Table:  table,
		Events: make([]CollisionEvent, 0, 8),
	}
}

// TakeEvents returns the events recorded since the last call and clears them.
func (pe *PhysicsEngine) TakeEvents() []CollisionEvent {
	events := pe.Events
	pe.Events = make([]CollisionEvent, 0, 8)
	return events
}

// Integrate applies damped gravity and moves the ball one tick.
func (pe *PhysicsEngine) Integrate() {
	b := pe.Ball
	b.Velocity = Vec2{
		X: b.Velocity.X * Friction,
		Y: (b.Velocity.Y + Gravity) * Friction,
	}
	b.Position = b.Position.Plus(b.Velocity)
}

// ClampTop keeps the ball below the top clamp line, bouncing it downward.
func (pe *PhysicsEngine) ClampTop() {
	b := pe.Ball
	if b.Position.Y < b.Radius {
		b.Position.Y = b.Radius
		b.Velocity.Y = math.Abs(b.Velocity.Y) * WallBounce
	}
}

// Drained reports whether the ball has fallen through the bottom.
func (pe *PhysicsEngine) Drained() bool {
	return pe.Ball.Position.Y > TableHeight+DrainMargin
}

// ResolveCollisions runs one full pass: segments, bumpers, flippers, then
// the side clamp.
func (pe *PhysicsEngine) ResolveCollisions() {
	for si := range pe.Table.Segments {
		pe.collideSegment(si)
	}
	for bi := range pe.Table.Bumpers {
		pe.collideBumper(bi)
	}
	for _, f := range pe.Table.Flippers() {
		if f != nil {
			pe.collideFlipper(f)
		}
	}
	pe.clampSides()
}

func (pe *PhysicsEngine) collideSegment(si int) {
	seg := &pe.Table.Segments[si]
	ball := pe.Ball

	c, ok := touch(ball, seg)
	if !ok {
		return
	}
	speed := ball.Velocity.Magnitude()
	ball.Position = ball.Position.Plus(c.normal.Times(c.overlap))
	ball.Velocity = reflectVelocity(ball.Velocity, c.normal, seg.Kind.Restitution())

	kind := EventWall
	if seg.Kind == SegmentSlingshot {
		kind = EventSlingshot
	}
	pe.Events = append(pe.Events, CollisionEvent{Kind: kind, Target: si, Speed: speed})
}

func (pe *PhysicsEngine) collideBumper(bi int) {
	bumper := &pe.Table.Bumpers[bi]
	ball := pe.Ball

	c, ok := touch(ball, bumper)
	if !ok {
		return
	}
	speed := ball.Velocity.Magnitude()
	ball.Position = ball.Position.Plus(c.normal.Times(c.overlap))
	// The kick overwrites the incoming velocity.
	ball.Velocity = c.normal.Times(math.Max(BumperMinSpeed, speed) * BumperKickScale)
	bumper.Hit()

	pe.Events = append(pe.Events, CollisionEvent{Kind: EventBumper, Target: bi, Speed: speed})
}

func (pe *PhysicsEngine) collideFlipper(f *Flipper) {
	ball := pe.Ball

	c, ok := touch(ball, f)
	if !ok {
		return
	}
	speed := ball.Velocity.Magnitude()
	ball.Position = ball.Position.Plus(c.normal.Times(c.overlap))
	ball.Velocity = reflectVelocity(ball.Velocity, c.normal, 1)

	kind := EventFlipperRoll
	if f.Striking() {
		ball.Velocity = ball.Velocity.Plus(f.Kick())
		kind = EventFlipperKick
	} else {
		ball.Velocity.X *= FlipperDamping
	}
	pe.Events = append(pe.Events, CollisionEvent{Kind: kind, Target: int(f.Side), Speed: speed})
}

// clampSides is a backstop against leaving through the side walls.
func (pe *PhysicsEngine) clampSides() {
	b := pe.Ball
	if b.Position.X < b.Radius {
		b.Position.X = b.Radius
		b.Velocity.X = -b.Velocity.X * WallBounce
	}
	if b.Position.X > TableWidth-b.Radius {
		b.Position.X = TableWidth - b.Radius
		b.Velocity.X = -b.Velocity.X * WallBounce
	}
}
