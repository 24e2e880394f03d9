package game

import "golang.org/x/exp/rand"

// Random is the source of all randomness in a session.
type Random interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// NewRandom returns a seeded generator.
func NewRandom(seed int64) Random {
	return rand.New(rand.NewSource(uint64(seed)))
}

// Two independent streams per session: physics draws (launch impulse) and
// cosmetic draws (shake jitter). Rendering more or less often must never
// change a trajectory.
const cosmeticSeedSalt = 0x5deece66d

func physicsRandom(seed int64) Random  { return NewRandom(seed) }
func cosmeticRandom(seed int64) Random { return NewRandom(seed ^ cosmeticSeedSalt) }

// uniform returns a value in [-m, m).
func uniform(r Random, m float64) float64 {
	return (r.Float64()*2 - 1) * m
}
