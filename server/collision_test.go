package server

import "testing"

func collisionWorld() (*World, *Tuning) {
	cfg := DefaultTuning()
	w := newWorld()
	return w, &cfg
}

func TestProjectileResolvesAgainstInvaderBeforeBarrier(t *testing.T) {
	w, cfg := collisionWorld()
	shooter := w.addPlayer(0, cfg)
	inv := &Invader{X: 100, Y: 100, Row: 0, Points: 30}
	w.Invaders = append(w.Invaders, inv)
	// Barrier overlapping the same spot as the invader.
	bar := &Barrier{X: 90, Y: 95, Health: 4}
	w.Barriers = append(w.Barriers, bar)
	w.PlayerProjectiles = append(w.PlayerProjectiles, &Projectile{
		X: 110, Y: 105, PlayerOwned: true, OwnerID: 0, Active: true,
	})

	resolveCollisions(w, cfg)

	if len(w.Invaders) != 0 {
		t.Fatalf("invader survived, want it killed")
	}
	if bar.Health != 4 {
		t.Errorf("barrier health = %d, want 4 (invader takes the hit)", bar.Health)
	}
	if shooter.Score != 30 {
		t.Errorf("shooter score = %d, want 30", shooter.Score)
	}
	if len(w.PlayerProjectiles) != 0 {
		t.Errorf("projectile still live after impact")
	}
}

func TestProjectileKillsAtMostOneInvader(t *testing.T) {
	w, cfg := collisionWorld()
	w.addPlayer(0, cfg)
	w.Invaders = append(w.Invaders,
		&Invader{X: 100, Y: 100, Points: 10},
		&Invader{X: 110, Y: 100, Points: 10},
	)
	w.PlayerProjectiles = append(w.PlayerProjectiles, &Projectile{
		X: 112, Y: 105, PlayerOwned: true, OwnerID: 0, Active: true,
	})

	resolveCollisions(w, cfg)

	if len(w.Invaders) != 1 {
		t.Fatalf("invaders left = %d, want 1", len(w.Invaders))
	}
}

func TestPlayerProjectileDamagesBarrier(t *testing.T) {
	w, cfg := collisionWorld()
	w.addPlayer(0, cfg)
	bar := &Barrier{X: 100, Y: 100, Health: 4}
	w.Barriers = append(w.Barriers, bar)
	w.PlayerProjectiles = append(w.PlayerProjectiles, &Projectile{
		X: 120, Y: 110, PlayerOwned: true, OwnerID: 0, Active: true,
	})

	resolveCollisions(w, cfg)

	if bar.Health != 3 {
		t.Errorf("barrier health = %d, want 3", bar.Health)
	}
	if len(w.PlayerProjectiles) != 0 {
		t.Errorf("projectile should be consumed by the barrier")
	}
}

func TestInvaderProjectileHitsPlayer(t *testing.T) {
	w, cfg := collisionWorld()
	p := w.addPlayer(0, cfg)
	p.Lives = 1
	w.InvaderProjectiles = append(w.InvaderProjectiles, &Projectile{
		X: p.X + 10, Y: p.Y + 5, OwnerID: -1, Active: true,
	})

	resolveCollisions(w, cfg)

	if p.Lives != 0 {
		t.Errorf("lives = %d, want 0", p.Lives)
	}
	if p.Alive {
		t.Errorf("player still alive at zero lives")
	}
	if len(w.InvaderProjectiles) != 0 {
		t.Errorf("projectile still live after impact")
	}
}

func TestInvaderProjectileBlockedByBarrier(t *testing.T) {
	w, cfg := collisionWorld()
	p := w.addPlayer(0, cfg)
	bar := &Barrier{X: 100, Y: 100, Health: 2}
	w.Barriers = append(w.Barriers, bar)
	w.InvaderProjectiles = append(w.InvaderProjectiles, &Projectile{
		X: 110, Y: 105, OwnerID: -1, Active: true,
	})

	resolveCollisions(w, cfg)

	if bar.Health != 1 {
		t.Errorf("barrier health = %d, want 1", bar.Health)
	}
	if p.Lives != cfg.PlayerLives {
		t.Errorf("player lost a life behind a barrier")
	}
}

func TestInvaderContactDestroysBarrierOutright(t *testing.T) {
	w, cfg := collisionWorld()
	bar := &Barrier{X: 100, Y: 100, Health: 4}
	w.Barriers = append(w.Barriers, bar)
	w.Invaders = append(w.Invaders, &Invader{X: 110, Y: 90, Points: 10})

	resolveCollisions(w, cfg)

	if bar.Health != 0 {
		t.Errorf("barrier health = %d, want 0 on invader contact", bar.Health)
	}
	if len(w.Invaders) != 1 {
		t.Errorf("invader should survive barrier contact")
	}
}

func TestKillByDepartedPlayerStillRemovesInvader(t *testing.T) {
	w, cfg := collisionWorld()
	w.Invaders = append(w.Invaders, &Invader{X: 100, Y: 100, Points: 30})
	// Owner 99 has disconnected; the kill still lands, the score is lost.
	w.PlayerProjectiles = append(w.PlayerProjectiles, &Projectile{
		X: 105, Y: 105, PlayerOwned: true, OwnerID: 99, Active: true,
	})

	resolveCollisions(w, cfg)

	if len(w.Invaders) != 0 {
		t.Fatalf("invader survived, want it killed")
	}
}
