package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type welcomeFrame struct {
	Type     string `json:"type"`
	PlayerID int    `json:"playerId"`
}

type stateFrame struct {
	Type         string                 `json:"type"`
	Players      map[string]PlayerState `json:"players"`
	Invaders     []Position             `json:"invaders"`
	CurrentLevel int                    `json:"currentLevel"`
	IsGameOver   bool                   `json:"isGameOver"`
	IsPaused     bool                   `json:"isPaused"`
}

func dialTestServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readWelcome(t *testing.T, conn *websocket.Conn) welcomeFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	var w welcomeFrame
	if err := json.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal welcome: %v", err)
	}
	if w.Type != "welcome" {
		t.Fatalf("first frame type = %q, want welcome", w.Type)
	}
	return w
}

// waitForState reads frames until pred accepts one or the deadline hits.
func waitForState(t *testing.T, conn *websocket.Conn, pred func(stateFrame) bool) stateFrame {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read state: %v", err)
		}
		var s stateFrame
		if err := json.Unmarshal(payload, &s); err != nil {
			t.Fatalf("unmarshal state: %v", err)
		}
		if s.Type == "state" && pred(s) {
			return s
		}
	}
	t.Fatalf("no matching state frame before deadline")
	return stateFrame{}
}

func TestSessionHandshakeAndBroadcast(t *testing.T) {
	g := newTestGame()
	g.Start()
	defer g.Stop()
	srv := httptest.NewServer(http.HandlerFunc(g.HandleWS))
	defer srv.Close()

	a := dialTestServer(t, srv)
	defer a.Close()
	wa := readWelcome(t, a)
	if wa.PlayerID != 0 {
		t.Fatalf("first player id = %d, want 0", wa.PlayerID)
	}

	// Snapshots flow even before the game starts.
	waitForState(t, a, func(s stateFrame) bool {
		_, ok := s.Players["0"]
		return ok && !s.IsGameOver
	})

	b := dialTestServer(t, srv)
	defer b.Close()
	wb := readWelcome(t, b)
	if wb.PlayerID != 1 {
		t.Fatalf("second player id = %d, want 1", wb.PlayerID)
	}

	if err := a.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"START_GAME","playerId":0}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := waitForState(t, a, func(s stateFrame) bool {
		return len(s.Invaders) > 0 && s.CurrentLevel == 1
	})
	if p, ok := s.Players["0"]; !ok || p.Lives != 3 || p.Score != 0 {
		t.Errorf("player 0 after start = %+v, want 3 lives, 0 score", p)
	}
	if len(s.Players) != 2 {
		t.Errorf("players in snapshot = %d, want 2", len(s.Players))
	}
}

func TestProtocolErrorTerminatesOnlyOffendingSession(t *testing.T) {
	g := newTestGame()
	g.Start()
	defer g.Stop()
	srv := httptest.NewServer(http.HandlerFunc(g.HandleWS))
	defer srv.Close()

	a := dialTestServer(t, srv)
	defer a.Close()
	readWelcome(t, a)
	b := dialTestServer(t, srv)
	defer b.Close()
	readWelcome(t, b)

	if err := b.WriteMessage(websocket.TextMessage, []byte(`{"type":"WARP_DRIVE"`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The offender gets cut off...
	_ = b.SetReadDeadline(time.Now().Add(2 * time.Second))
	sawClose := false
	for i := 0; i < 200; i++ {
		if _, _, err := b.ReadMessage(); err != nil {
			sawClose = true
			break
		}
	}
	if !sawClose {
		t.Fatalf("offending session was not terminated")
	}

	// ...while the other session keeps receiving snapshots without them.
	waitForState(t, a, func(s stateFrame) bool {
		_, present := s.Players["1"]
		return !present
	})
}
