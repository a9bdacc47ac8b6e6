package transport

import (
	"sync"
	"time"

	"github.com/sketchwars/sketchwars-backend/internal"
)

// Queue buffers unicast messages for players inside the reconnection grace
// window. Messages replay in enqueue order; eviction purges the backlog.
type Queue struct {
	mu      sync.Mutex
	pending map[string][]internal.QueuedMessage
}

func NewQueue() *Queue {
	return &Queue{pending: make(map[string][]internal.QueuedMessage)}
}

func (q *Queue) Enqueue(playerID, event string, payload any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[playerID] = append(q.pending[playerID], internal.QueuedMessage{
		PlayerID:   playerID,
		Event:      event,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	})
}

// Requeue puts drained messages back at the head of the backlog, ahead of
// anything enqueued since the drain and with their original timestamps.
func (q *Queue) Requeue(playerID string, msgs []internal.QueuedMessage) {
	if len(msgs) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[playerID] = append(append([]internal.QueuedMessage(nil), msgs...), q.pending[playerID]...)
}

// Drain removes and returns the player's backlog, oldest first.
func (q *Queue) Drain(playerID string) []internal.QueuedMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgs := q.pending[playerID]
	delete(q.pending, playerID)
	return msgs
}

func (q *Queue) Purge(playerID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, playerID)
}

func (q *Queue) Len(playerID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[playerID])
}
