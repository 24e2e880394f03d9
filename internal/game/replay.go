package game

import (
	"fmt"
	"sort"
)

// InputKind names an operator action.
type InputKind string

const (
	InputLeftFlipper  InputKind = "left"
	InputRightFlipper InputKind = "right"
	InputLaunch       InputKind = "launch"
	InputRestart      InputKind = "restart"
)

// InputEvent is an operator action stamped with the frame it arrived after.
type InputEvent struct {
	Frame   int       `json:"frame" db:"frame"`
	Kind    InputKind `json:"kind" db:"kind"`
	Pressed bool      `json:"pressed" db:"pressed"`
}

// Apply feeds one input into the session. Unknown kinds are rejected.
func (s *Session) Apply(ev InputEvent) error {
	switch ev.Kind {
	case InputLeftFlipper:
		s.SetLeftFlipperPressed(ev.Pressed)
	case InputRightFlipper:
		s.SetRightFlipperPressed(ev.Pressed)
	case InputLaunch:
		s.RequestLaunch()
	case InputRestart:
		s.RequestRestart()
	default:
		return fmt.Errorf("unknown input kind %q", ev.Kind)
	}
	return nil
}

// Replay rebuilds a session from its seed and recorded inputs, advancing it
// until it reaches frame. Each tick is followed by a render, like a live
// table. Events stamped with frame f are applied before the tick to f+1.
func Replay(layout Layout, seed int64, events []InputEvent, frame int) *Session {
	ordered := make([]InputEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Frame < ordered[j].Frame })

	s := NewSession(layout, seed)
	next := 0
	applyDue := func() {
		for next < len(ordered) && ordered[next].Frame <= s.Frame {
			_ = s.Apply(ordered[next])
			next++
		}
	}
	for s.Frame < frame {
		applyDue()
		s.AdvanceOneFrame()
		s.RenderFrame()
	}
	applyDue()
	return s
}
