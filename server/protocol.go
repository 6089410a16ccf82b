package server

import (
	"encoding/json"
	"fmt"
)

// ActionType enumerates everything a client may ask the server to do.
type ActionType string

const (
	ActionMoveLeftStart  ActionType = "MOVE_LEFT_START"
	ActionMoveLeftStop   ActionType = "MOVE_LEFT_STOP"
	ActionMoveRightStart ActionType = "MOVE_RIGHT_START"
	ActionMoveRightStop  ActionType = "MOVE_RIGHT_STOP"
	ActionShoot          ActionType = "SHOOT"
	ActionStartGame      ActionType = "START_GAME"
	ActionTogglePause    ActionType = "TOGGLE_PAUSE"
	ActionDisconnect     ActionType = "DISCONNECT"
)

var validActions = map[ActionType]bool{
	ActionMoveLeftStart:  true,
	ActionMoveLeftStop:   true,
	ActionMoveRightStart: true,
	ActionMoveRightStop:  true,
	ActionShoot:          true,
	ActionStartGame:      true,
	ActionTogglePause:    true,
	ActionDisconnect:     true,
}

// PlayerAction is the only client-to-server message.
// Example: {"type":"SHOOT","playerId":0}
type PlayerAction struct {
	Type     ActionType `json:"type"`
	PlayerID int        `json:"playerId"`
}

// ProtocolError marks malformed wire input. It terminates the offending
// session and nothing else.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "protocol: " + e.Reason }

// DecodeAction parses one client frame. Unknown action names and broken
// JSON are protocol errors.
func DecodeAction(payload []byte) (PlayerAction, error) {
	var a PlayerAction
	if err := json.Unmarshal(payload, &a); err != nil {
		return PlayerAction{}, &ProtocolError{Reason: fmt.Sprintf("bad action frame: %v", err)}
	}
	if !validActions[a.Type] {
		return PlayerAction{}, &ProtocolError{Reason: fmt.Sprintf("unknown action %q", a.Type)}
	}
	return a, nil
}

// Position is a bare coordinate pair used for invaders and projectiles.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerState is the externally visible slice of one player.
type PlayerState struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score int     `json:"score"`
	Lives int     `json:"lives"`
	Alive bool    `json:"alive"`
}

// BarrierState carries a barrier's position and remaining health.
type BarrierState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health int     `json:"health"`
}

// WorldSnapshot is the full externally visible world at one tick. Built
// fresh by the simulator each tick and never mutated afterwards.
type WorldSnapshot struct {
	Players            map[int]PlayerState `json:"players"`
	Invaders           []Position          `json:"invaders"`
	PlayerProjectiles  []Position          `json:"playerProjectiles"`
	InvaderProjectiles []Position          `json:"invaderProjectiles"`
	Barriers           []BarrierState      `json:"barriers"`
	CurrentLevel       int                 `json:"currentLevel"`
	IsGameOver         bool                `json:"isGameOver"`
	IsPaused           bool                `json:"isPaused"`
}

type welcomeMessage struct {
	Type     string `json:"type"`
	PlayerID int    `json:"playerId"`
}

type stateMessage struct {
	Type string `json:"type"`
	*WorldSnapshot
}

// EncodeWelcome builds the one-time id handshake, the first frame a client
// ever receives.
func EncodeWelcome(playerID int) ([]byte, error) {
	return json.Marshal(welcomeMessage{Type: "welcome", PlayerID: playerID})
}

// EncodeSnapshot wraps a snapshot in its wire envelope.
func EncodeSnapshot(s *WorldSnapshot) ([]byte, error) {
	return json.Marshal(stateMessage{Type: "state", WorldSnapshot: s})
}
