package calendar

import (
	"context"
	"sync"
	"time"
)

// RawRequest is an unresolved event request produced by the capture path.
// It sits on the queue until the single consumer enriches and materializes
// it into an Event.
type RawRequest struct {
	ID              string    `json:"id"`
	AddressFrom     string    `json:"address_from"`
	AddressTo       string    `json:"address_to"`
	EventName       string    `json:"event_name"`
	OriginName      string    `json:"origin_name"`
	DestName        string    `json:"dest_name"`
	Arrival         time.Time `json:"arrival"`
	Mode            string    `json:"mode"`
	DurationSec     int       `json:"duration_sec"`
	ImportanceScale float64   `json:"importance_scale"`
}

// requestQueue is an unbounded FIFO queue with a blocking, cancellable
// dequeue. Producers never block; the single consumer suspends until a
// request arrives or its context is cancelled.
type requestQueue struct {
	mu     sync.Mutex
	items  []RawRequest
	signal chan struct{}
}

func newRequestQueue() *requestQueue {
	return &requestQueue{signal: make(chan struct{}, 1)}
}

func (q *requestQueue) enqueue(r RawRequest) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// dequeue pops the oldest request, blocking until one is available.
// Cancellation of ctx unblocks it with the context's error; that is the
// consumer's shutdown signal, not a failure.
func (q *requestQueue) dequeue(ctx context.Context) (RawRequest, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			r := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return r, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return RawRequest{}, ctx.Err()
		case <-q.signal:
		}
	}
}

func (q *requestQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
