package server

import (
	"encoding/json"
	"net/http"
)

// HandleAdminConfig reads or hot-updates the balance tuning.
// GET  /admin/config  returns the live tuning table
// POST /admin/config  applies a partial JSON update between ticks
func (g *Game) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(g.TuningView())

	case http.MethodPost:
		var body struct {
			PlayerSpeed           *float64 `json:"playerSpeed,omitempty"`
			PlayerFireRate        *float64 `json:"playerFireRate,omitempty"`
			InvaderBaseSpeed      *float64 `json:"invaderBaseSpeed,omitempty"`
			InvaderSpeedIncrement *float64 `json:"invaderSpeedIncrement,omitempty"`
			InvaderShootPerSecond *float64 `json:"invaderShootPerSecond,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		g.UpdateTuning(func(t *Tuning) {
			if body.PlayerSpeed != nil {
				t.PlayerSpeed = *body.PlayerSpeed
			}
			if body.PlayerFireRate != nil {
				t.PlayerFireRate = *body.PlayerFireRate
			}
			if body.InvaderBaseSpeed != nil {
				t.InvaderBaseSpeed = *body.InvaderBaseSpeed
			}
			if body.InvaderSpeedIncrement != nil {
				t.InvaderSpeedIncrement = *body.InvaderSpeedIncrement
			}
			if body.InvaderShootPerSecond != nil {
				t.InvaderShootPerSecond = *body.InvaderShootPerSecond
			}
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics reports the simulator's runtime counters plus a small view
// of the current world.
func (g *Game) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := g.LatestSnapshot()
	payload := map[string]any{
		"players":     len(snap.Players),
		"invaders":    len(snap.Invaders),
		"level":       snap.CurrentLevel,
		"gameOver":    snap.IsGameOver,
		"paused":      snap.IsPaused,
		"queue_depth": g.queue.Len(),
		"metrics":     g.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
