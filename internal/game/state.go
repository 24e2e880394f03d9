package game

import "fmt"

// SessionState is the top-level game mode of a session.
type SessionState int

const (
	StateStart SessionState = iota
	StatePlaying
	StateGameOver
)

func (s SessionState) String() string {
	switch s {
	case StateStart:
		return "START"
	case StatePlaying:
		return "PLAYING"
	case StateGameOver:
		return "GAME_OVER"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Overlay is the text shown over the table outside of play.
type Overlay struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	Button       string `json:"button"`
}

const instructions = "Left/Right arrows = flippers   Space/Down = launch"

// OverlayFor returns the overlay for s, or false while playing.
func OverlayFor(s SessionState) (Overlay, bool) {
	switch s {
	case StateStart:
		return Overlay{Title: "SPACE PINBALL", Instructions: instructions, Button: "PLAY"}, true
	case StateGameOver:
		return Overlay{Title: "GAME OVER", Instructions: instructions, Button: "PLAY AGAIN"}, true
	}
	return Overlay{}, false
}
