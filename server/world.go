package server

import "golang.org/x/time/rate"

// Phase is the server's high-level game status. All transitions happen on
// the simulator goroutine, in one place (see sim.go).
type Phase int

const (
	PhaseWaiting Phase = iota // no players connected
	PhaseLobby                // players present, game not started
	PhaseRunning
	PhasePaused
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseLobby:
		return "lobby"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Player is the authoritative per-player entity. Movement intent is a pair
// of booleans so repeated START actions stay idempotent.
type Player struct {
	ID          int
	X, Y        float64
	Score       int
	Lives       int
	Alive       bool
	MovingLeft  bool
	MovingRight bool

	fire *rate.Limiter // shot cooldown
}

// Invader marches with the formation. Killed invaders are removed from the
// world, never revived.
type Invader struct {
	X, Y   float64
	Row    int
	Points int
}

// Projectile is short-lived: spawned on fire, culled on impact or when it
// leaves the field. Active flips false on impact so a projectile resolves
// at most one hit per tick.
type Projectile struct {
	X, Y        float64
	PlayerOwned bool
	OwnerID     int // shooting player, -1 for invader shots
	Active      bool
}

// Barrier soaks hits until health reaches zero, after which it is inert.
type Barrier struct {
	X, Y   float64
	Health int
}

func (b *Barrier) alive() bool { return b.Health > 0 }

// World aggregates every simulated entity. It is owned by the simulator
// goroutine; everyone else sees it only through snapshots.
type World struct {
	Players            map[int]*Player
	Invaders           []*Invader
	PlayerProjectiles  []*Projectile
	InvaderProjectiles []*Projectile
	Barriers           []*Barrier

	CurrentLevel int
	Phase        Phase

	invaderSpeedX float64
	invaderDir    float64 // +1 right, -1 left
	pendingDrop   bool
}

func newWorld() *World {
	return &World{
		Players:      make(map[int]*Player),
		CurrentLevel: 1,
		Phase:        PhaseWaiting,
		invaderDir:   1,
	}
}

func (w *World) addPlayer(id int, cfg *Tuning) *Player {
	p := &Player{
		ID:    id,
		X:     cfg.PlayerStartX,
		Y:     cfg.PlayerStartY,
		Lives: cfg.PlayerLives,
		Alive: true,
		fire:  rate.NewLimiter(rate.Limit(cfg.PlayerFireRate), cfg.PlayerFireBurst),
	}
	w.Players[id] = p
	return p
}

func (w *World) removePlayer(id int) {
	delete(w.Players, id)
}

func (w *World) anyPlayerAlive() bool {
	for _, p := range w.Players {
		if p.Alive {
			return true
		}
	}
	return false
}

// setupLevel rebuilds the invader grid and barriers for the given level,
// clears projectiles, and recenters and revives every ship. Scores and
// lives are untouched.
func (w *World) setupLevel(cfg *Tuning, level int) {
	w.CurrentLevel = level
	w.PlayerProjectiles = nil
	w.InvaderProjectiles = nil

	w.invaderSpeedX = cfg.InvaderBaseSpeed * (1 + cfg.InvaderLevelSpeedup*float64(level-1))
	w.invaderDir = 1
	w.pendingDrop = false

	gridWidth := float64(cfg.InvaderCols)*(cfg.InvaderWidth+cfg.InvaderHSpacing) - cfg.InvaderHSpacing
	startX := cfg.FieldLeft + (cfg.FieldRight-cfg.FieldLeft-gridWidth)/2

	w.Invaders = w.Invaders[:0]
	for r := 0; r < cfg.InvaderRows; r++ {
		for c := 0; c < cfg.InvaderCols; c++ {
			w.Invaders = append(w.Invaders, &Invader{
				X:      startX + float64(c)*(cfg.InvaderWidth+cfg.InvaderHSpacing),
				Y:      cfg.InvaderGridStartY + float64(r)*(cfg.InvaderHeight+cfg.InvaderVSpacing),
				Row:    r,
				Points: cfg.PointsForRow(r),
			})
		}
	}

	w.Barriers = w.Barriers[:0]
	for _, x := range cfg.BarrierXs {
		w.Barriers = append(w.Barriers, &Barrier{X: x, Y: cfg.BarrierY, Health: cfg.BarrierInitialHealth})
	}

	for _, p := range w.Players {
		p.X = cfg.PlayerStartX
		p.Y = cfg.PlayerStartY
		p.Alive = true
		p.MovingLeft = false
		p.MovingRight = false
	}
}

// resetForNewGame is the full START_GAME respawn: level 1, zero scores,
// full lives for everyone.
func (w *World) resetForNewGame(cfg *Tuning) {
	for _, p := range w.Players {
		p.Score = 0
		p.Lives = cfg.PlayerLives
	}
	w.setupLevel(cfg, 1)
}

// Snapshot exports the externally visible world. The result shares nothing
// with live state and is safe to hand to any goroutine.
func (w *World) Snapshot() *WorldSnapshot {
	s := &WorldSnapshot{
		Players:            make(map[int]PlayerState, len(w.Players)),
		Invaders:           make([]Position, 0, len(w.Invaders)),
		PlayerProjectiles:  make([]Position, 0, len(w.PlayerProjectiles)),
		InvaderProjectiles: make([]Position, 0, len(w.InvaderProjectiles)),
		Barriers:           make([]BarrierState, 0, len(w.Barriers)),
		CurrentLevel:       w.CurrentLevel,
		IsGameOver:         w.Phase == PhaseGameOver,
		IsPaused:           w.Phase == PhasePaused,
	}
	for id, p := range w.Players {
		s.Players[id] = PlayerState{ID: p.ID, X: p.X, Y: p.Y, Score: p.Score, Lives: p.Lives, Alive: p.Alive}
	}
	for _, inv := range w.Invaders {
		s.Invaders = append(s.Invaders, Position{X: inv.X, Y: inv.Y})
	}
	for _, pr := range w.PlayerProjectiles {
		s.PlayerProjectiles = append(s.PlayerProjectiles, Position{X: pr.X, Y: pr.Y})
	}
	for _, pr := range w.InvaderProjectiles {
		s.InvaderProjectiles = append(s.InvaderProjectiles, Position{X: pr.X, Y: pr.Y})
	}
	for _, b := range w.Barriers {
		if b.alive() {
			s.Barriers = append(s.Barriers, BarrierState{X: b.X, Y: b.Y, Health: b.Health})
		}
	}
	return s
}
