package main

import "time"

// holdWindow is how long a flipper stays up after a key event. Terminals
// report key repeats but no releases.
const holdWindow = 150 * time.Millisecond

// holdKey turns key events into a pressed state that decays.
type holdKey struct {
	until time.Time
}

func (k *holdKey) hit(now time.Time) { k.until = now.Add(holdWindow) }

func (k *holdKey) pressed(now time.Time) bool { return now.Before(k.until) }
