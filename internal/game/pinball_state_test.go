package game

import (
	"math"
	"testing"
)

// scriptedRandom returns its values in order, cycling.
type scriptedRandom struct {
	values []float64
	i      int
}

func (r *scriptedRandom) Float64() float64 {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

func playingSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(DefaultLayout(), 42)
	if !s.RequestRestart() {
		t.Fatal("restart from Start should begin play")
	}
	return s
}

func TestNewSessionStartsIdle(t *testing.T) {
	s := NewSession(DefaultLayout(), 1)
	if s.State != StateStart || s.Score != 0 || s.Lives != StartingLives {
		t.Fatalf("new session state=%s score=%d lives=%d", s.State, s.Score, s.Lives)
	}
	if s.Ball.Active {
		t.Error("ball should not be active before play")
	}
	pos := s.Ball.Position
	s.AdvanceOneFrame()
	if s.Frame != 1 {
		t.Errorf("frame counter = %d, want 1", s.Frame)
	}
	if s.Ball.Position != pos {
		t.Error("ball moved outside of play")
	}
	snap := s.Snapshot()
	if snap.Overlay == nil || snap.Overlay.Title != "SPACE PINBALL" || snap.Overlay.Button != "PLAY" {
		t.Errorf("start overlay = %+v", snap.Overlay)
	}
}

func TestRestartResetsSession(t *testing.T) {
	s := NewSession(DefaultLayout(), 7)
	s.State = StateGameOver
	s.Score = 530
	s.Lives = 0
	s.ShakeFrames = 9
	s.leftDown = true
	s.Table.Left.Angle = s.Table.Left.FlipAngle

	if !s.RequestRestart() {
		t.Fatal("restart from GameOver should begin play")
	}
	if s.State != StatePlaying || s.Score != 0 || s.Lives != StartingLives || s.ShakeFrames != 0 {
		t.Errorf("after restart state=%s score=%d lives=%d shake=%d", s.State, s.Score, s.Lives, s.ShakeFrames)
	}
	if s.leftDown || s.rightDown {
		t.Error("input state should be cleared")
	}
	if s.Table.Left.Angle != s.Table.Left.RestAngle {
		t.Error("table should be rebuilt with flippers at rest")
	}
	if !s.Ball.Active || s.Ball.Position != (Vec2{X: LaneServeX, Y: LaneServeY}) || !s.Ball.Velocity.IsZero() {
		t.Errorf("ball not re-served: %+v", s.Ball)
	}
	if s.RequestRestart() {
		t.Error("restart while playing should be ignored")
	}
}

func TestFlipperPressIgnoredOutsidePlay(t *testing.T) {
	s := NewSession(DefaultLayout(), 1)
	s.SetLeftFlipperPressed(true)
	s.SetRightFlipperPressed(true)
	if s.leftDown || s.rightDown {
		t.Error("presses before play should be ignored")
	}

	s.RequestRestart()
	s.SetLeftFlipperPressed(true)
	s.AdvanceOneFrame()
	if s.Table.Left.Target != s.Table.Left.FlipAngle {
		t.Error("pressed left flipper should target its flip angle")
	}
	if s.Table.Right.Target != s.Table.Right.RestAngle {
		t.Error("right flipper should stay at rest")
	}
}

func TestLaunchLaneGating(t *testing.T) {
	s := playingSession(t)
	s.physics = &scriptedRandom{values: []float64{0.5}}

	s.Ball.Position = NewVec2(TableWidth/2, 300)
	s.Ball.Velocity = NewVec2(1, 2)
	if s.RequestLaunch() {
		t.Error("launch outside the lane should be ignored")
	}
	if s.Ball.Velocity != NewVec2(1, 2) {
		t.Errorf("velocity changed by ignored launch: %+v", s.Ball.Velocity)
	}

	s.Ball.Position = NewVec2(TableWidth-10, 600)
	if !s.RequestLaunch() {
		t.Fatal("launch inside the lane should fire")
	}
	if vy := s.Ball.Velocity.Y; vy < -25 || vy > -20 {
		t.Errorf("launch vy = %.4f, want within [-25, -20]", vy)
	}
	if !near(s.Ball.Velocity.Y, -22.5) || s.Ball.Velocity.X != 1 {
		t.Errorf("launch velocity = %+v, want (1, -22.5)", s.Ball.Velocity)
	}
}

func TestLaunchRangeWithSeededRandom(t *testing.T) {
	s := playingSession(t)
	for i := 0; i < 200; i++ {
		s.Ball.ResetInLane()
		s.RequestLaunch()
		if vy := s.Ball.Velocity.Y; vy < -25 || vy > -20 {
			t.Fatalf("launch %d: vy = %.4f out of range", i, vy)
		}
	}
}

func TestLaunchIgnoredWhenInactiveOrIdle(t *testing.T) {
	s := NewSession(DefaultLayout(), 3)
	s.Ball.ResetInLane()
	if s.RequestLaunch() {
		t.Error("launch before play should be ignored")
	}

	s = playingSession(t)
	s.Ball.Active = false
	if s.RequestLaunch() {
		t.Error("launch with inactive ball should be ignored")
	}
}

func TestDrainOnLastLifeEndsGame(t *testing.T) {
	s := playingSession(t)
	s.Lives = 1
	s.Ball.Position = NewVec2(200, TableHeight+60)
	s.Ball.Velocity = Vec2{}

	res := s.AdvanceOneFrame()
	if !res.LifeLost || !res.GameOver {
		t.Errorf("frame result = %+v, want life lost and game over", res)
	}
	if s.State != StateGameOver || s.Lives != 0 {
		t.Errorf("state=%s lives=%d, want GAME_OVER with 0 lives", s.State, s.Lives)
	}
	if s.ShakeFrames != ShakeDrain {
		t.Errorf("shake = %d, want %d", s.ShakeFrames, ShakeDrain)
	}
	snap := s.Snapshot()
	if snap.Overlay == nil || snap.Overlay.Title != "GAME OVER" || snap.Overlay.Button != "PLAY AGAIN" {
		t.Errorf("game over overlay = %+v", snap.Overlay)
	}

	s.AdvanceOneFrame()
	if s.Lives != 0 {
		t.Errorf("lives went to %d after game over", s.Lives)
	}
}

func TestDrainReservesBall(t *testing.T) {
	s := playingSession(t)
	s.Ball.Position = NewVec2(200, TableHeight+60)
	s.Ball.Velocity = NewVec2(0, 8)

	res := s.AdvanceOneFrame()
	if !res.LifeLost || res.GameOver {
		t.Errorf("frame result = %+v", res)
	}
	if s.State != StatePlaying || s.Lives != StartingLives-1 {
		t.Errorf("state=%s lives=%d", s.State, s.Lives)
	}
	if s.Ball.Position != (Vec2{X: LaneServeX, Y: LaneServeY}) || !s.Ball.Velocity.IsZero() || !s.Ball.Active {
		t.Errorf("ball not back in lane: %+v", s.Ball)
	}
}

// floorLayout is a single horizontal wall with the flippers tucked away.
func floorLayout() Layout {
	return Layout{
		Name:     "floor",
		Segments: []SegmentSpec{seg(100, 500, 300, 500, SegmentWall)},
		Flippers: FlipperSpec{
			Left:      Point{20, 690},
			Right:     Point{380, 690},
			Length:    5,
			RestAngle: 30,
			FlipAngle: 45,
		},
	}
}

func TestWallScoreThrottle(t *testing.T) {
	s := NewSession(floorLayout(), 5)
	s.RequestRestart()
	s.Ball.Position = NewVec2(200, 500-BallRadius)
	s.Ball.Velocity = Vec2{}

	var awards []int
	for i := 0; i < 100; i++ {
		res := s.AdvanceOneFrame()
		walls := 0
		for _, ev := range res.Events {
			if ev.Kind == EventWall {
				walls++
			}
		}
		if walls == 0 {
			t.Fatalf("frame %d: ball lost contact with the floor", res.Frame)
		}
		if res.ScoreGained > 0 {
			awards = append(awards, res.Frame)
		}
	}

	if limit := int(math.Ceil(100.0 / 6)); len(awards) > limit {
		t.Errorf("%d wall awards in 100 frames, want at most %d", len(awards), limit)
	}
	for i := 1; i < len(awards); i++ {
		if awards[i]-awards[i-1] <= WallScoreCooldown {
			t.Errorf("awards at frames %d and %d are too close", awards[i-1], awards[i])
		}
	}
	if s.Score != 150 {
		t.Errorf("score after 100 resting frames = %d, want 150", s.Score)
	}
}

func TestBumperHitScoresAndFlashes(t *testing.T) {
	s := playingSession(t)
	b := s.Table.Bumpers[0]
	s.Ball.Position = b.Position.Plus(NewVec2(0, 36))
	s.Ball.Velocity = NewVec2(0, -3)

	res := s.AdvanceOneFrame()
	if res.ScoreGained != BumperPoints || s.Score != BumperPoints {
		t.Errorf("score gained = %d, total = %d, want %d", res.ScoreGained, s.Score, BumperPoints)
	}
	if s.ShakeFrames != ShakeBumper {
		t.Errorf("shake = %d, want %d", s.ShakeFrames, ShakeBumper)
	}
	if !near(s.Ball.Velocity.Y, BumperMinSpeed*BumperKickScale) {
		t.Errorf("ball velocity after kick = %+v", s.Ball.Velocity)
	}
	snap := s.RenderFrame()
	if !snap.Bumpers[0].Flash || snap.Bumpers[1].Flash {
		t.Errorf("flash flags = %v %v", snap.Bumpers[0].Flash, snap.Bumpers[1].Flash)
	}
	if s.Table.Bumpers[0].FlashFrames != BumperFlashFrames-1 {
		t.Errorf("flash frames after render = %d", s.Table.Bumpers[0].FlashFrames)
	}
}

func TestSlingshotHitShakes(t *testing.T) {
	s := playingSession(t)
	s.ShakeFrames = 0
	// Just left of the vertical face of the left slingshot, moving into it.
	s.Ball.Position = NewVec2(40-BallRadius-1, TableHeight-125)
	s.Ball.Velocity = NewVec2(3, 0)

	res := s.AdvanceOneFrame()
	slings := 0
	for _, ev := range res.Events {
		if ev.Kind == EventSlingshot {
			slings++
		}
	}
	if slings == 0 {
		t.Fatalf("expected a slingshot contact, events=%+v", res.Events)
	}
	if s.Score < SlingshotPoints || s.ShakeFrames < ShakeSlingshot {
		t.Errorf("score=%d shake=%d after slingshot hit", s.Score, s.ShakeFrames)
	}
}

func TestRenderFrameAgesShake(t *testing.T) {
	s := playingSession(t)
	s.cosmetic = &scriptedRandom{values: []float64{1, 0}}
	s.ShakeFrames = 3

	snap := s.RenderFrame()
	if snap.ShakeFrames != 2 || s.ShakeFrames != 2 {
		t.Errorf("shake frames = %d/%d, want 2", snap.ShakeFrames, s.ShakeFrames)
	}
	m := 3 * ShakeAmplitude
	if !near(snap.Shake.X, m) || !near(snap.Shake.Y, -m) {
		t.Errorf("shake offset = %+v, want (%.2f, %.2f)", snap.Shake, m, -m)
	}

	s.RenderFrame()
	s.RenderFrame()
	snap = s.RenderFrame()
	if s.ShakeFrames != 0 || !snap.Shake.IsZero() {
		t.Errorf("shake should have expired: frames=%d offset=%+v", s.ShakeFrames, snap.Shake)
	}
}

func TestShakeHoldsOutsidePlay(t *testing.T) {
	s := NewSession(DefaultLayout(), 1)
	s.ShakeFrames = 5
	snap := s.RenderFrame()
	if s.ShakeFrames != 5 || !snap.Shake.IsZero() {
		t.Errorf("shake changed outside play: frames=%d offset=%+v", s.ShakeFrames, snap.Shake)
	}
}

func TestShakeKeepsStrongestPulse(t *testing.T) {
	s := playingSession(t)
	s.shake(ShakeBumper)
	s.shake(ShakeFlipper)
	if s.ShakeFrames != ShakeBumper {
		t.Errorf("weaker pulse shortened shake to %d", s.ShakeFrames)
	}
}

// autoplay drives a session with a fixed operator pattern and restarts it
// after every game over.
func autoplay(s *Session, frames int, check func(res FrameResult, prevScore int)) {
	prevScore := s.Score
	for s.Frame < frames {
		f := s.Frame
		switch {
		case s.State != StatePlaying:
			s.RequestRestart()
			prevScore = 0
		case f%90 == 10:
			s.RequestLaunch()
		case f%60 == 20:
			s.SetLeftFlipperPressed(true)
		case f%60 == 30:
			s.SetLeftFlipperPressed(false)
			s.SetRightFlipperPressed(true)
		case f%60 == 40:
			s.SetRightFlipperPressed(false)
		}
		res := s.AdvanceOneFrame()
		s.RenderFrame()
		if check != nil {
			check(res, prevScore)
		}
		prevScore = s.Score
	}
}

func TestScoreAndLivesInvariants(t *testing.T) {
	s := NewSession(DefaultLayout(), 2024)
	autoplay(s, 20000, func(res FrameResult, prevScore int) {
		if s.Lives < 0 || s.Lives > StartingLives {
			t.Fatalf("frame %d: lives %d out of range", res.Frame, s.Lives)
		}
		if s.State == StatePlaying && s.Score < prevScore {
			t.Fatalf("frame %d: score dropped from %d to %d", res.Frame, prevScore, s.Score)
		}
		if res.LifeLost && s.Lives == 0 && s.State != StateGameOver {
			t.Fatalf("frame %d: lives hit zero without game over", res.Frame)
		}
		if s.State == StateGameOver && s.Lives != 0 {
			t.Fatalf("frame %d: game over with %d lives", res.Frame, s.Lives)
		}
		if !s.Ball.Position.IsFinite() || !s.Ball.Velocity.IsFinite() {
			t.Fatalf("frame %d: ball state not finite: %+v", res.Frame, s.Ball)
		}
	})
}

func TestSameSeedSameTrajectory(t *testing.T) {
	a := NewSession(DefaultLayout(), 99)
	b := NewSession(DefaultLayout(), 99)
	autoplay(a, 3000, nil)
	autoplay(b, 3000, nil)

	if a.Ball.Position != b.Ball.Position || a.Ball.Velocity != b.Ball.Velocity {
		t.Errorf("ball diverged: %+v vs %+v", a.Ball, b.Ball)
	}
	if a.Score != b.Score || a.Lives != b.Lives || a.State != b.State {
		t.Errorf("bookkeeping diverged: %d/%d/%s vs %d/%d/%s", a.Score, a.Lives, a.State, b.Score, b.Lives, b.State)
	}
}

func TestRenderRateDoesNotChangeTrajectory(t *testing.T) {
	a := NewSession(DefaultLayout(), 11)
	b := NewSession(DefaultLayout(), 11)
	a.RequestRestart()
	b.RequestRestart()
	a.RequestLaunch()
	b.RequestLaunch()
	for i := 0; i < 600; i++ {
		a.AdvanceOneFrame()
		b.AdvanceOneFrame()
		b.RenderFrame()
		b.RenderFrame()
	}
	if a.Ball.Position != b.Ball.Position || a.Score != b.Score {
		t.Errorf("extra renders changed the game: %+v/%d vs %+v/%d", a.Ball.Position, a.Score, b.Ball.Position, b.Score)
	}
}
