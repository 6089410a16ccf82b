package server

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeActionValid(t *testing.T) {
	a, err := DecodeAction([]byte(`{"type":"MOVE_LEFT_START","playerId":3}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if a.Type != ActionMoveLeftStart {
		t.Errorf("type = %q, want %q", a.Type, ActionMoveLeftStart)
	}
	if a.PlayerID != 3 {
		t.Errorf("playerId = %d, want 3", a.PlayerID)
	}
}

func TestDecodeActionUnknownType(t *testing.T) {
	_, err := DecodeAction([]byte(`{"type":"TELEPORT","playerId":0}`))
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestDecodeActionBadJSON(t *testing.T) {
	_, err := DecodeAction([]byte(`{"type":`))
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestEncodeWelcome(t *testing.T) {
	b, err := EncodeWelcome(7)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var msg struct {
		Type     string `json:"type"`
		PlayerID int    `json:"playerId"`
	}
	if err := json.Unmarshal(b, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "welcome" || msg.PlayerID != 7 {
		t.Errorf("welcome = %+v, want type=welcome playerId=7", msg)
	}
}

func TestEncodeSnapshotEnvelope(t *testing.T) {
	snap := &WorldSnapshot{
		Players: map[int]PlayerState{
			0: {ID: 0, X: 380, Y: 550, Lives: 3, Alive: true},
		},
		Invaders:     []Position{{X: 260, Y: 100}},
		Barriers:     []BarrierState{{X: 125, Y: 450, Health: 4}},
		CurrentLevel: 1,
	}
	b, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var msg struct {
		Type         string                 `json:"type"`
		Players      map[string]PlayerState `json:"players"`
		Invaders     []Position             `json:"invaders"`
		CurrentLevel int                    `json:"currentLevel"`
		IsGameOver   bool                   `json:"isGameOver"`
	}
	if err := json.Unmarshal(b, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "state" {
		t.Errorf("type = %q, want state", msg.Type)
	}
	if len(msg.Players) != 1 || msg.Players["0"].Lives != 3 {
		t.Errorf("players = %+v, want player 0 with 3 lives", msg.Players)
	}
	if msg.CurrentLevel != 1 || msg.IsGameOver {
		t.Errorf("level=%d gameOver=%v, want level 1 and not over", msg.CurrentLevel, msg.IsGameOver)
	}
}
