package server

import "time"

// Tuning holds every balance constant the simulation uses. A copy is owned
// by the simulator goroutine; admin updates reach it through the game's
// tuning channel, never by direct mutation.
type Tuning struct {
	TickRate     int     // simulation steps per second
	MaxTickDelta float64 // clamp on measured delta time, seconds

	// Play field, pixels. The window is 800x600 with a 50px HUD bar on
	// top and 25px margins elsewhere.
	FieldLeft   float64
	FieldRight  float64
	FieldTop    float64
	FieldBottom float64

	PlayerWidth     float64
	PlayerHeight    float64
	PlayerStartX    float64
	PlayerStartY    float64
	PlayerSpeed     float64 // px/s
	PlayerLives     int
	PlayerFireRate  float64 // shots per second
	PlayerFireBurst int

	PlayerProjectileWidth  float64
	PlayerProjectileHeight float64
	PlayerProjectileSpeed  float64 // px/s, upward

	InvaderProjectileWidth  float64
	InvaderProjectileHeight float64
	InvaderProjectileSpeed  float64 // px/s, downward

	InvaderRows       int
	InvaderCols       int
	InvaderWidth      float64
	InvaderHeight     float64
	InvaderHSpacing   float64
	InvaderVSpacing   float64
	InvaderGridStartY float64

	InvaderBaseSpeed      float64 // px/s at level 1 before bounces
	InvaderSpeedIncrement float64 // added after every drop
	InvaderDropDistance   float64
	InvaderRowSpeedFactor float64 // per-row slowdown: 1 - factor*row
	InvaderLevelSpeedup   float64 // per-level multiplier: 1 + speedup*(level-1)
	InvaderShootPerSecond float64 // fire probability per invader per second

	// Points by spawn row: row 0 scores high, the bottom rows low.
	PointsRowTop    int
	PointsRowMiddle int
	PointsRowBottom int

	BarrierXs            []float64
	BarrierY             float64
	BarrierWidth         float64
	BarrierHeight        float64
	BarrierInitialHealth int

	// Invaders reaching this Y end the game (just above the ships).
	GameOverLineY float64

	// Session-level inbound message limiter.
	SessionMsgRate  float64
	SessionMsgBurst int
}

// DefaultTuning mirrors the original game's balance sheet.
func DefaultTuning() Tuning {
	return Tuning{
		TickRate:     60,
		MaxTickDelta: 0.1,

		FieldLeft:   25,
		FieldRight:  775,
		FieldTop:    50,
		FieldBottom: 575,

		PlayerWidth:     40,
		PlayerHeight:    20,
		PlayerStartX:    380,
		PlayerStartY:    550,
		PlayerSpeed:     200,
		PlayerLives:     3,
		PlayerFireRate:  2,
		PlayerFireBurst: 1,

		PlayerProjectileWidth:  5,
		PlayerProjectileHeight: 15,
		PlayerProjectileSpeed:  300,

		InvaderProjectileWidth:  5,
		InvaderProjectileHeight: 15,
		InvaderProjectileSpeed:  200,

		InvaderRows:       6,
		InvaderCols:       5,
		InvaderWidth:      40,
		InvaderHeight:     20,
		InvaderHSpacing:   20,
		InvaderVSpacing:   20,
		InvaderGridStartY: 100,

		InvaderBaseSpeed:      30,
		InvaderSpeedIncrement: 2,
		InvaderDropDistance:   15,
		InvaderRowSpeedFactor: 0.03,
		InvaderLevelSpeedup:   0.1,
		InvaderShootPerSecond: 0.01,

		PointsRowTop:    30,
		PointsRowMiddle: 20,
		PointsRowBottom: 10,

		BarrierXs:            []float64{125, 275, 425, 575},
		BarrierY:             450,
		BarrierWidth:         80,
		BarrierHeight:        40,
		BarrierInitialHealth: 4,

		GameOverLineY: 530,

		SessionMsgRate:  60,
		SessionMsgBurst: 120,
	}
}

// TickInterval converts the tick rate to the ticker period.
func (t Tuning) TickInterval() time.Duration {
	return time.Second / time.Duration(t.TickRate)
}

// PointsForRow maps a spawn row to its score value.
func (t Tuning) PointsForRow(row int) int {
	switch {
	case row == 0:
		return t.PointsRowTop
	case row <= 2:
		return t.PointsRowMiddle
	default:
		return t.PointsRowBottom
	}
}
