package game

// initialWallScoreFrame lets the very first wall contact score.
const initialWallScoreFrame = -999

// Session is one game of pinball: the table, the ball, and the
// start/playing/game-over bookkeeping. A session is owned by a single
// goroutine; it does no locking of its own.
type Session struct {
	Seed               int64
	State              SessionState
	Score              int
	Lives              int
	Frame              int
	LastWallScoreFrame int
	ShakeFrames        int

	Ball  *Ball
	Table *Table

	layout    Layout
	engine    *PhysicsEngine
	leftDown  bool
	rightDown bool
	physics   Random
	cosmetic  Random
}

// FrameResult summarises one call to AdvanceOneFrame.
type FrameResult struct {
	Frame       int              `json:"frame"`
	Events      []CollisionEvent `json:"events,omitempty"`
	ScoreGained int              `json:"score_gained"`
	LifeLost    bool             `json:"life_lost"`
	GameOver    bool             `json:"game_over"`
}

// NewSession creates a session in the Start state. Both random streams are
// derived from seed.
func NewSession(layout Layout, seed int64) *Session {
	return NewSessionWithRandom(layout, seed, physicsRandom(seed), cosmeticRandom(seed))
}

// NewSessionWithRandom is NewSession with caller-supplied random streams.
func NewSessionWithRandom(layout Layout, seed int64, physics, cosmetic Random) *Session {
	s := &Session{
		Seed:               seed,
		State:              StateStart,
		Lives:              StartingLives,
		LastWallScoreFrame: initialWallScoreFrame,
		Ball:               NewBall(),
		layout:             layout,
		physics:            physics,
		cosmetic:           cosmetic,
	}
	s.Table = layout.Build()
	s.engine = NewPhysicsEngine(s.Ball, s.Table)
	return s
}

func (s *Session) Layout() Layout { return s.layout }

// SetLeftFlipperPressed records the left flipper button. Presses are only
// accepted while playing; releases always are.
func (s *Session) SetLeftFlipperPressed(pressed bool) {
	if pressed && s.State != StatePlaying {
		return
	}
	s.leftDown = pressed
}

func (s *Session) SetRightFlipperPressed(pressed bool) {
	if pressed && s.State != StatePlaying {
		return
	}
	s.rightDown = pressed
}

// RequestLaunch fires the plunger. It only acts on an active ball resting in
// the launch lane during play and reports whether it did anything.
func (s *Session) RequestLaunch() bool {
	if s.State != StatePlaying || !s.Ball.Active || !s.Ball.InLane() {
		return false
	}
	s.Ball.Velocity.Y = -LaunchMin - s.physics.Float64()*LaunchSpread
	return true
}

// RequestRestart starts a new game from Start or GameOver. It is ignored
// while playing.
func (s *Session) RequestRestart() bool {
	if s.State == StatePlaying {
		return false
	}
	s.start()
	return true
}

func (s *Session) start() {
	s.State = StatePlaying
	s.Score = 0
	s.Lives = StartingLives
	s.ShakeFrames = 0
	s.leftDown = false
	s.rightDown = false

	s.Table = s.layout.Build()
	s.engine = NewPhysicsEngine(s.Ball, s.Table)
	s.Ball.ResetInLane()
}

// AdvanceOneFrame runs one simulation tick.
func (s *Session) AdvanceOneFrame() FrameResult {
	s.Frame++
	res := FrameResult{Frame: s.Frame}
	if s.State != StatePlaying {
		return res
	}

	left, right := s.Table.Left, s.Table.Right
	left.SetPressed(s.leftDown)
	right.SetPressed(s.rightDown)
	left.Advance(FlipperSpeed)
	right.Advance(FlipperSpeed)

	if !s.Ball.Active {
		return res
	}

	s.engine.Integrate()
	s.engine.ClampTop()
	if s.engine.Drained() {
		s.loseBall(&res)
		return res
	}

	// Two passes cut down on tunnelling; fast balls can still slip through.
	s.engine.ResolveCollisions()
	s.engine.ResolveCollisions()

	res.Events = s.engine.TakeEvents()
	before := s.Score
	for _, ev := range res.Events {
		s.applyEvent(ev)
	}
	res.ScoreGained = s.Score - before
	return res
}

func (s *Session) applyEvent(ev CollisionEvent) {
	switch ev.Kind {
	case EventSlingshot:
		s.addScore(SlingshotPoints)
		s.shake(ShakeSlingshot)
	case EventWall:
		if s.Frame-s.LastWallScoreFrame > WallScoreCooldown {
			s.addScore(WallPoints)
			s.LastWallScoreFrame = s.Frame
		}
	case EventBumper:
		s.addScore(BumperPoints)
		s.shake(ShakeBumper)
	case EventFlipperKick:
		s.shake(ShakeFlipper)
	case EventFlipperRoll:
	}
}

func (s *Session) loseBall(res *FrameResult) {
	s.Lives--
	s.shake(ShakeDrain)
	res.LifeLost = true
	if s.Lives <= 0 {
		s.Lives = 0
		s.State = StateGameOver
		s.Ball.Active = false
		res.GameOver = true
		return
	}
	s.Ball.ResetInLane()
}

func (s *Session) addScore(points int) {
	if s.State != StatePlaying {
		return
	}
	s.Score += points
}

// shake starts a shake pulse; a weaker pulse never shortens a stronger one.
func (s *Session) shake(frames int) {
	if frames > s.ShakeFrames {
		s.ShakeFrames = frames
	}
}

// RenderFrame produces the snapshot for one drawn frame and ages the
// cosmetic timers: the shake pulse (only during play) and bumper flashes.
func (s *Session) RenderFrame() Snapshot {
	var offset Vec2
	if s.State == StatePlaying && s.ShakeFrames > 0 {
		m := float64(s.ShakeFrames) * ShakeAmplitude
		s.ShakeFrames--
		offset = Vec2{X: uniform(s.cosmetic, m), Y: uniform(s.cosmetic, m)}
	}

	snap := s.snapshot(offset)
	for i := range s.Table.Bumpers {
		if s.Table.Bumpers[i].FlashFrames > 0 {
			s.Table.Bumpers[i].FlashFrames--
		}
	}
	return snap
}

// Snapshot returns the current view without aging any timers.
func (s *Session) Snapshot() Snapshot {
	return s.snapshot(Vec2{})
}
