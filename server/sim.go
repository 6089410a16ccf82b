package server

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// Game owns the authoritative world and runs the fixed-step tick loop on a
// single goroutine. Sessions reach it only through the action queue and the
// control channel; the world leaves only as immutable snapshots.
type Game struct {
	cfg     Tuning
	world   *World
	queue   *ActionQueue
	metrics *GameMetrics
	rng     *rand.Rand

	sessions map[int]*Session
	// Lifecycle and tuning events share one ordered channel so a join is
	// always processed before the same session's leave.
	ctrl   chan controlEvent
	stopCh chan struct{}
	done   chan struct{}

	nextID    atomic.Int64
	latest    atomic.Pointer[WorldSnapshot]
	tuningPub atomic.Pointer[Tuning]
}

type controlEvent any

type joinEvent struct{ session *Session }
type leaveEvent struct{ playerID int }
type tuneEvent struct{ apply func(*Tuning) }

func NewGame(cfg Tuning) *Game {
	g := &Game{
		cfg:      cfg,
		world:    newWorld(),
		queue:    NewActionQueue(),
		metrics:  &GameMetrics{},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions: make(map[int]*Session),
		ctrl:     make(chan controlEvent, 128),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	g.publishTuning()
	g.latest.Store(g.world.Snapshot())
	return g
}

// Start launches the tick loop.
func (g *Game) Start() {
	go g.run()
}

// Stop ends the tick loop and tears down every session.
func (g *Game) Stop() {
	close(g.stopCh)
	<-g.done
}

// Metrics exposes the runtime counters.
func (g *Game) Metrics() *GameMetrics { return g.metrics }

// LatestSnapshot returns the most recently published world snapshot.
func (g *Game) LatestSnapshot() *WorldSnapshot { return g.latest.Load() }

// TuningView returns the last published tuning copy (admin reads).
func (g *Game) TuningView() Tuning { return *g.tuningPub.Load() }

// UpdateTuning hands a mutation to the simulator goroutine; it is applied
// between ticks, never concurrently with simulation.
func (g *Game) UpdateTuning(fn func(*Tuning)) {
	select {
	case g.ctrl <- tuneEvent{apply: fn}:
	default:
		Log.Warnf("tuning update dropped: channel full")
	}
}

func (g *Game) publishTuning() {
	cp := g.cfg
	g.tuningPub.Store(&cp)
}

func (g *Game) run() {
	defer close(g.done)
	ticker := time.NewTicker(g.cfg.TickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-g.stopCh:
			for id, s := range g.sessions {
				s.Close()
				delete(g.sessions, id)
			}
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt > g.cfg.MaxTickDelta {
				dt = g.cfg.MaxTickDelta
			}
			start := time.Now()
			g.tick(dt)
			g.metrics.AddTick(time.Since(start).Nanoseconds())
		}
	}
}

// tick is one full simulation step: lifecycle events, queued actions,
// movement, collisions, phase guards, snapshot publication.
func (g *Game) tick(dt float64) {
	g.drainControl()

	for _, a := range g.queue.DrainAll() {
		g.applyAction(a)
	}

	if g.world.Phase == PhaseRunning {
		g.advance(dt)
		resolveCollisions(g.world, &g.cfg)
		g.evaluatePhase()
	}

	snap := g.world.Snapshot()
	g.latest.Store(snap)
	g.broadcast(snap)
}

// drainControl absorbs pending joins, leaves and tuning updates without
// blocking. These are the only world mutations not carried by actions.
func (g *Game) drainControl() {
	for {
		select {
		case ev := <-g.ctrl:
			switch ev := ev.(type) {
			case joinEvent:
				g.handleJoin(ev.session)
			case leaveEvent:
				g.handleLeave(ev.playerID)
			case tuneEvent:
				ev.apply(&g.cfg)
				g.publishTuning()
				Log.Infof("tuning updated")
			}
		default:
			return
		}
	}
}

func (g *Game) handleJoin(s *Session) {
	g.sessions[s.playerID] = s
	g.world.addPlayer(s.playerID, &g.cfg)
	if g.world.Phase == PhaseWaiting {
		g.world.Phase = PhaseLobby
	}
	g.metrics.IncConnects()
	Log.Infof("player %d joined (conn %s), phase=%s", s.playerID, s.connID, g.world.Phase)
}

func (g *Game) handleLeave(id int) {
	s, ok := g.sessions[id]
	if !ok {
		return // already removed, e.g. DISCONNECT action then read error
	}
	delete(g.sessions, id)
	g.world.removePlayer(id)
	s.Close()
	g.metrics.IncDisconnects()

	if len(g.world.Players) == 0 {
		// Last player gone: abandon whatever was in progress.
		g.world.Phase = PhaseWaiting
	} else if g.world.Phase == PhaseRunning && !g.world.anyPlayerAlive() {
		g.world.Phase = PhaseGameOver
	}
	Log.Infof("player %d left, phase=%s", id, g.world.Phase)
}

// applyAction interprets one queued action under the phase guards. All
// phase transitions triggered by clients happen here.
func (g *Game) applyAction(a PlayerAction) {
	w := g.world
	p, ok := w.Players[a.PlayerID]
	if !ok {
		// Player raced a disconnect; not an error.
		g.metrics.IncStale()
		return
	}

	switch a.Type {
	case ActionStartGame:
		if w.Phase != PhaseLobby && w.Phase != PhaseGameOver {
			g.metrics.IncRejected()
			return
		}
		w.resetForNewGame(&g.cfg)
		w.Phase = PhaseRunning
		g.metrics.IncApplied()
		Log.Infof("player %d started the game", a.PlayerID)

	case ActionTogglePause:
		switch w.Phase {
		case PhaseRunning:
			w.Phase = PhasePaused
		case PhasePaused:
			w.Phase = PhaseRunning
		default:
			g.metrics.IncRejected()
			return
		}
		g.metrics.IncApplied()
		Log.Infof("player %d toggled pause, phase=%s", a.PlayerID, w.Phase)

	case ActionDisconnect:
		g.metrics.IncApplied()
		g.handleLeave(a.PlayerID)

	default:
		if w.Phase != PhaseRunning || !p.Alive {
			g.metrics.IncRejected()
			return
		}
		g.applyGameplay(p, a.Type)
	}
}

func (g *Game) applyGameplay(p *Player, t ActionType) {
	switch t {
	case ActionMoveLeftStart:
		p.MovingLeft = true
		p.MovingRight = false
	case ActionMoveLeftStop:
		p.MovingLeft = false
	case ActionMoveRightStart:
		p.MovingRight = true
		p.MovingLeft = false
	case ActionMoveRightStop:
		p.MovingRight = false
	case ActionShoot:
		if !p.fire.Allow() {
			g.metrics.IncRejected()
			return
		}
		g.world.PlayerProjectiles = append(g.world.PlayerProjectiles, &Projectile{
			X:           p.X + g.cfg.PlayerWidth/2 - g.cfg.PlayerProjectileWidth/2,
			Y:           p.Y - g.cfg.PlayerProjectileHeight,
			PlayerOwned: true,
			OwnerID:     p.ID,
			Active:      true,
		})
	}
	g.metrics.IncApplied()
}

// advance integrates one step of movement while RUNNING.
func (g *Game) advance(dt float64) {
	g.advancePlayers(dt)
	g.advanceFormation(dt)
	g.invaderFire(dt)
	g.advanceProjectiles(dt)
}

func (g *Game) advancePlayers(dt float64) {
	cfg := &g.cfg
	for _, p := range g.world.Players {
		if !p.Alive {
			continue
		}
		var dx float64
		if p.MovingLeft {
			dx -= cfg.PlayerSpeed * dt
		}
		if p.MovingRight {
			dx += cfg.PlayerSpeed * dt
		}
		p.X += dx
		if p.X < cfg.FieldLeft {
			p.X = cfg.FieldLeft
		}
		if p.X > cfg.FieldRight-cfg.PlayerWidth {
			p.X = cfg.FieldRight - cfg.PlayerWidth
		}
	}
}

// advanceFormation marches the swarm as a rigid group. Hitting a bound
// clamps the step and flags a drop; the next tick drops the formation,
// reverses direction and bumps the speed.
func (g *Game) advanceFormation(dt float64) {
	w := g.world
	cfg := &g.cfg
	if len(w.Invaders) == 0 {
		return
	}

	if w.pendingDrop {
		for _, inv := range w.Invaders {
			inv.Y += cfg.InvaderDropDistance
		}
		w.invaderDir = -w.invaderDir
		w.invaderSpeedX += cfg.InvaderSpeedIncrement
		w.pendingDrop = false
		return
	}

	dx := w.invaderSpeedX * w.invaderDir * dt
	leftmost, rightmost := w.Invaders[0], w.Invaders[0]
	for _, inv := range w.Invaders {
		if inv.X < leftmost.X {
			leftmost = inv
		}
		if inv.X > rightmost.X {
			rightmost = inv
		}
	}
	if w.invaderDir > 0 {
		if next := rightmost.X + dx + cfg.InvaderWidth; next > cfg.FieldRight {
			dx -= next - cfg.FieldRight
			w.pendingDrop = true
		}
	} else {
		if next := leftmost.X + dx; next < cfg.FieldLeft {
			dx += cfg.FieldLeft - next
			w.pendingDrop = true
		}
	}

	for _, inv := range w.Invaders {
		// Lower rows trail slightly, skewing the formation like the
		// original.
		inv.X += dx * (1 - cfg.InvaderRowSpeedFactor*float64(inv.Row))
	}
}

func (g *Game) invaderFire(dt float64) {
	cfg := &g.cfg
	chance := cfg.InvaderShootPerSecond * dt
	for _, inv := range g.world.Invaders {
		if g.rng.Float64() < chance {
			g.world.InvaderProjectiles = append(g.world.InvaderProjectiles, &Projectile{
				X:       inv.X + cfg.InvaderWidth/2 - cfg.InvaderProjectileWidth/2,
				Y:       inv.Y + cfg.InvaderHeight,
				OwnerID: -1,
				Active:  true,
			})
		}
	}
}

func (g *Game) advanceProjectiles(dt float64) {
	cfg := &g.cfg
	kept := g.world.PlayerProjectiles[:0]
	for _, pr := range g.world.PlayerProjectiles {
		pr.Y -= cfg.PlayerProjectileSpeed * dt
		if pr.Y+cfg.PlayerProjectileHeight >= cfg.FieldTop {
			kept = append(kept, pr)
		}
	}
	g.world.PlayerProjectiles = kept

	kept = g.world.InvaderProjectiles[:0]
	for _, pr := range g.world.InvaderProjectiles {
		pr.Y += cfg.InvaderProjectileSpeed * dt
		if pr.Y <= cfg.FieldBottom {
			kept = append(kept, pr)
		}
	}
	g.world.InvaderProjectiles = kept
}

// evaluatePhase applies the level-clear and game-over guards after
// collisions.
func (g *Game) evaluatePhase() {
	w := g.world
	cfg := &g.cfg

	if len(w.Invaders) == 0 {
		next := w.CurrentLevel + 1
		w.setupLevel(cfg, next)
		Log.Infof("level %d cleared, advancing to %d", next-1, next)
		return
	}

	for _, inv := range w.Invaders {
		if inv.Y+cfg.InvaderHeight >= cfg.GameOverLineY {
			w.Phase = PhaseGameOver
			Log.Infof("game over: invaders reached the line")
			return
		}
	}

	if len(w.Players) > 0 && !w.anyPlayerAlive() {
		w.Phase = PhaseGameOver
		Log.Infof("game over: all players defeated")
	}
}

// broadcast encodes the snapshot once and enqueues it to every session.
// Delivery is best effort per client; a stuffed or broken client never
// stalls the tick.
func (g *Game) broadcast(snap *WorldSnapshot) {
	if len(g.sessions) == 0 {
		return
	}
	payload, err := EncodeSnapshot(snap)
	if err != nil {
		Log.Errorf("encode snapshot: %v", err)
		return
	}
	for _, s := range g.sessions {
		if s.Enqueue(payload) {
			g.metrics.IncSent()
		} else {
			g.metrics.IncSendDropped()
		}
	}
}
