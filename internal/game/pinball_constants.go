package game

import "math"

// Per-tick physics constants. The feel of the table is defined by these
// values together with the ~60 Hz tick; they are not scaled by elapsed time.
const (
	TableWidth  = 400.0
	TableHeight = 700.0

	Gravity         = 0.25
	Friction        = 0.99
	WallBounce      = 0.6
	FlipperSpeed    = 0.25
	SlingshotBounce = 1.5

	BallRadius      = 10.0
	FlipperRadius   = 5.0
	FlipperLength   = 70.0
	FlipperWidth    = 10.0
	FlipperRestMag  = math.Pi / 6
	FlipperFlipMag  = math.Pi / 4
	FlipperKickX    = 5.0
	FlipperKickY    = -10.0
	FlipperDamping  = 0.95
	BumperRadius    = 25.0
	BumperMinSpeed  = 5.0
	BumperKickScale = 1.2

	DrainMargin   = 50.0
	LaneThreshold = TableWidth - 60
	LaneServeX    = TableWidth - 20
	LaneServeY    = TableHeight - 100
	LaunchMin     = 20.0
	LaunchSpread  = 5.0

	StartingLives = 3

	SlingshotPoints = 10
	WallPoints      = 10
	BumperPoints    = 100

	// WallScoreCooldown is the number of frames that must pass (strictly
	// more than) between two wall/lane/rail score awards.
	WallScoreCooldown = 6

	BumperFlashFrames = 10
	ShakeDrain        = 12
	ShakeBumper       = 8
	ShakeSlingshot    = 4
	ShakeFlipper      = 2
	ShakeAmplitude    = 0.8

	// TickInterval is the nominal frame period in milliseconds.
	TickInterval = 16
)
