package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Session wraps one client connection: a dedicated read pump feeding the
// action queue and a dedicated write pump draining the send queue. It never
// touches the world directly.
type Session struct {
	playerID int
	connID   string
	ws       *websocket.Conn
	send     chan []byte
	game     *Game
	limiter  *rate.Limiter

	closeOnce sync.Once
}

func newSession(g *Game, ws *websocket.Conn, playerID int) *Session {
	cfg := g.TuningView()
	return &Session{
		playerID: playerID,
		connID:   uuid.NewString(),
		ws:       ws,
		send:     make(chan []byte, 64),
		game:     g,
		limiter:  rate.NewLimiter(rate.Limit(cfg.SessionMsgRate), cfg.SessionMsgBurst),
	}
}

// Enqueue offers a frame to the send queue without blocking. A full queue
// means a slow client; the frame is dropped so the tick is never stalled.
func (s *Session) Enqueue(b []byte) bool {
	select {
	case s.send <- b:
		return true
	default:
		return false
	}
}

// Close shuts the connection and ends the write pump. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.send)
		if s.ws != nil {
			_ = s.ws.Close()
		}
	})
}

// writePump serializes all outbound frames for this client.
func (s *Session) writePump() {
	defer s.ws.Close()
	for msg := range s.send {
		_ = s.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := s.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump decodes client actions and feeds the queue. Any read or
// protocol error ends this session only.
func (s *Session) readPump() {
	defer s.ws.Close()
	// Hand removal to the simulator goroutine; world state is its alone.
	defer func() { s.game.ctrl <- leaveEvent{playerID: s.playerID} }()

	s.ws.SetReadLimit(4 << 10)
	_ = s.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, payload, err := s.ws.ReadMessage()
		if err != nil {
			return
		}
		if !s.limiter.Allow() {
			s.game.metrics.IncRateLimited()
			continue
		}
		action, err := DecodeAction(payload)
		if err != nil {
			var perr *ProtocolError
			if errors.As(err, &perr) {
				s.game.metrics.IncProtoErr()
				Log.Warnf("player %d (conn %s): %v, closing session", s.playerID, s.connID, err)
			}
			return
		}
		// The server owns identity: whatever id the client claims, the
		// action is attributed to this session's player.
		action.PlayerID = s.playerID
		s.game.queue.Enqueue(action)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The presentation client is trusted; origin checks are not a
		// concern of this server.
		return true
	},
}

// HandleWS accepts one client: upgrades the connection, assigns the next
// player id, sends the id handshake as the first frame and registers the
// session with the simulator.
func (g *Game) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	playerID := int(g.nextID.Add(1) - 1)
	s := newSession(g, ws, playerID)

	welcome, err := EncodeWelcome(playerID)
	if err != nil {
		Log.Errorf("encode welcome: %v", err)
		_ = ws.Close()
		return
	}
	s.Enqueue(welcome)

	// Register before the read pump can possibly report a leave.
	g.ctrl <- joinEvent{session: s}
	go s.writePump()
	go s.readPump()

	Log.Infof("client %s connected as player %d", s.connID, playerID)
}
