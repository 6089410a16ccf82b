package server

import "sync"

// ActionQueue is the lossless multi-producer inbox between session readers
// and the simulator. Enqueue never blocks and never drops; DrainAll hands
// the simulator everything received since the last drain, in arrival order.
type ActionQueue struct {
	mu      sync.Mutex
	pending []PlayerAction
}

func NewActionQueue() *ActionQueue {
	return &ActionQueue{}
}

// Enqueue appends one action. Safe for concurrent use from any session.
func (q *ActionQueue) Enqueue(a PlayerAction) {
	q.mu.Lock()
	q.pending = append(q.pending, a)
	q.mu.Unlock()
}

// DrainAll swaps out the pending batch. Called once per tick by the
// simulator; the returned slice is exclusively the caller's.
func (q *ActionQueue) DrainAll() []PlayerAction {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()
	return batch
}

// Len reports the number of queued actions (metrics only).
func (q *ActionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
