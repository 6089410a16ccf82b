package server

// Axis-aligned bounding boxes, resolved once per tick after movement. The
// pass order below is the tie-break rule: a projectile overlapping both an
// invader and a barrier always resolves against the invader.

type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x && a.y < b.y+b.h && a.y+a.h > b.y
}

func playerBounds(p *Player, cfg *Tuning) rect {
	return rect{p.X, p.Y, cfg.PlayerWidth, cfg.PlayerHeight}
}

func invaderBounds(inv *Invader, cfg *Tuning) rect {
	return rect{inv.X, inv.Y, cfg.InvaderWidth, cfg.InvaderHeight}
}

func barrierBounds(b *Barrier, cfg *Tuning) rect {
	return rect{b.X, b.Y, cfg.BarrierWidth, cfg.BarrierHeight}
}

func projectileBounds(pr *Projectile, cfg *Tuning) rect {
	if pr.PlayerOwned {
		return rect{pr.X, pr.Y, cfg.PlayerProjectileWidth, cfg.PlayerProjectileHeight}
	}
	return rect{pr.X, pr.Y, cfg.InvaderProjectileWidth, cfg.InvaderProjectileHeight}
}

// resolveCollisions runs the full per-tick pass:
//  1. player projectiles vs invaders (kill, score to the shooter)
//  2. leftover player projectiles vs barriers (one hit point)
//  3. invader projectiles vs players (one life)
//  4. leftover invader projectiles vs barriers
//  5. invaders vs barriers (instant barrier destruction on contact)
//
// Stale references (shooter already gone) are skipped, never an error.
func resolveCollisions(w *World, cfg *Tuning) {
	killed := make(map[*Invader]bool)

	for _, pr := range w.PlayerProjectiles {
		if !pr.Active {
			continue
		}
		pb := projectileBounds(pr, cfg)

		for _, inv := range w.Invaders {
			if killed[inv] {
				continue
			}
			if pb.intersects(invaderBounds(inv, cfg)) {
				killed[inv] = true
				pr.Active = false
				if shooter, ok := w.Players[pr.OwnerID]; ok {
					shooter.Score += inv.Points
				}
				break // one kill per projectile
			}
		}
		if !pr.Active {
			continue
		}

		for _, b := range w.Barriers {
			if b.alive() && pb.intersects(barrierBounds(b, cfg)) {
				b.Health--
				pr.Active = false
				break
			}
		}
	}

	for _, pr := range w.InvaderProjectiles {
		if !pr.Active {
			continue
		}
		pb := projectileBounds(pr, cfg)

		for _, p := range w.Players {
			if !p.Alive {
				continue
			}
			if pb.intersects(playerBounds(p, cfg)) {
				p.Lives--
				pr.Active = false
				if p.Lives <= 0 {
					p.Lives = 0
					p.Alive = false
					Log.Infof("player %d out of lives", p.ID)
				}
				break
			}
		}
		if !pr.Active {
			continue
		}

		for _, b := range w.Barriers {
			if b.alive() && pb.intersects(barrierBounds(b, cfg)) {
				b.Health--
				pr.Active = false
				break
			}
		}
	}

	for _, inv := range w.Invaders {
		if killed[inv] {
			continue
		}
		ib := invaderBounds(inv, cfg)
		for _, b := range w.Barriers {
			if b.alive() && ib.intersects(barrierBounds(b, cfg)) {
				// An invader landing on a barrier wipes it out regardless
				// of remaining health.
				b.Health = 0
			}
		}
	}

	if len(killed) > 0 {
		survivors := w.Invaders[:0]
		for _, inv := range w.Invaders {
			if !killed[inv] {
				survivors = append(survivors, inv)
			}
		}
		w.Invaders = survivors
	}
	w.PlayerProjectiles = cullInactive(w.PlayerProjectiles)
	w.InvaderProjectiles = cullInactive(w.InvaderProjectiles)
}

func cullInactive(list []*Projectile) []*Projectile {
	kept := list[:0]
	for _, pr := range list {
		if pr.Active {
			kept = append(kept, pr)
		}
	}
	return kept
}
