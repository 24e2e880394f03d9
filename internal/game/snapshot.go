package game

// Snapshot is the read-only view of a session handed to renderers.
type Snapshot struct {
	Frame       int            `json:"frame"`
	State       string         `json:"state"`
	Score       int            `json:"score"`
	Lives       int            `json:"lives"`
	Ball        BallView       `json:"ball"`
	Segments    []SegmentView  `json:"segments"`
	Bumpers     []BumperView   `json:"bumpers"`
	Flippers    [2]FlipperView `json:"flippers"`
	Shake       Vec2           `json:"shake"`
	ShakeFrames int            `json:"shake_frames"`
	Palette     Palette        `json:"palette"`
	Overlay     *Overlay       `json:"overlay,omitempty"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
}

type BallView struct {
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
	Active   bool    `json:"active"`
}

type SegmentView struct {
	P1   Vec2   `json:"p1"`
	P2   Vec2   `json:"p2"`
	Kind string `json:"kind"`
}

type BumperView struct {
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
	Color    string  `json:"color"`
	Flash    bool    `json:"flash"`
}

type FlipperView struct {
	Side   string  `json:"side"`
	Pivot  Vec2    `json:"pivot"`
	Tip    Vec2    `json:"tip"`
	Angle  float64 `json:"angle"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

func (s *Session) snapshot(shake Vec2) Snapshot {
	t := s.Table
	snap := Snapshot{
		Frame: s.Frame,
		State: s.State.String(),
		Score: s.Score,
		Lives: s.Lives,
		Ball: BallView{
			Position: s.Ball.Position,
			Radius:   s.Ball.Radius,
			Active:   s.Ball.Active,
		},
		Segments:    make([]SegmentView, len(t.Segments)),
		Bumpers:     make([]BumperView, len(t.Bumpers)),
		Shake:       shake,
		ShakeFrames: s.ShakeFrames,
		Palette:     t.Palette,
		Width:       TableWidth,
		Height:      TableHeight,
	}
	for i, seg := range t.Segments {
		snap.Segments[i] = SegmentView{P1: seg.P1, P2: seg.P2, Kind: seg.Kind.String()}
	}
	for i, b := range t.Bumpers {
		snap.Bumpers[i] = BumperView{Position: b.Position, Radius: b.Radius, Color: b.Color, Flash: b.FlashFrames > 0}
	}
	for i, f := range t.Flippers() {
		snap.Flippers[i] = FlipperView{
			Side:   f.Side.String(),
			Pivot:  f.Pivot,
			Tip:    f.Tip(),
			Angle:  f.Angle,
			Length: f.Length,
			Width:  f.Width,
		}
	}
	if o, ok := OverlayFor(s.State); ok {
		snap.Overlay = &o
	}
	return snap
}
