package server

import "sync/atomic"

// GameMetrics tracks the simulator's runtime counters for the /metrics
// endpoint. All fields are updated with atomics; sessions and the simulator
// touch them from different goroutines.
type GameMetrics struct {
	TickCount        int64
	TotalTickNs      int64
	ActionsApplied   int64
	ActionsStale     int64 // actions for players gone by drain time
	ActionsRejected  int64 // wrong phase or dead player
	RateLimited      int64 // inbound frames dropped by the session limiter
	ProtocolErrors   int64
	SnapshotsSent    int64
	SendQueueDropped int64 // snapshots dropped on a full per-client queue
	Connects         int64
	Disconnects      int64
}

func (m *GameMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

func (m *GameMetrics) IncApplied()     { atomic.AddInt64(&m.ActionsApplied, 1) }
func (m *GameMetrics) IncStale()       { atomic.AddInt64(&m.ActionsStale, 1) }
func (m *GameMetrics) IncRejected()    { atomic.AddInt64(&m.ActionsRejected, 1) }
func (m *GameMetrics) IncRateLimited() { atomic.AddInt64(&m.RateLimited, 1) }
func (m *GameMetrics) IncProtoErr()    { atomic.AddInt64(&m.ProtocolErrors, 1) }
func (m *GameMetrics) IncSent()        { atomic.AddInt64(&m.SnapshotsSent, 1) }
func (m *GameMetrics) IncSendDropped() { atomic.AddInt64(&m.SendQueueDropped, 1) }
func (m *GameMetrics) IncConnects()    { atomic.AddInt64(&m.Connects, 1) }
func (m *GameMetrics) IncDisconnects() { atomic.AddInt64(&m.Disconnects, 1) }

// Snapshot returns a read-only copy for HTTP output.
func (m *GameMetrics) Snapshot() map[string]any {
	ticks := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(total) / float64(ticks) / 1e6
	}
	return map[string]any{
		"tick_count":         ticks,
		"avg_tick_ms":        avgMs,
		"actions_applied":    atomic.LoadInt64(&m.ActionsApplied),
		"actions_stale":      atomic.LoadInt64(&m.ActionsStale),
		"actions_rejected":   atomic.LoadInt64(&m.ActionsRejected),
		"rate_limited":       atomic.LoadInt64(&m.RateLimited),
		"protocol_errors":    atomic.LoadInt64(&m.ProtocolErrors),
		"snapshots_sent":     atomic.LoadInt64(&m.SnapshotsSent),
		"send_queue_dropped": atomic.LoadInt64(&m.SendQueueDropped),
		"connects":           atomic.LoadInt64(&m.Connects),
		"disconnects":        atomic.LoadInt64(&m.Disconnects),
	}
}
