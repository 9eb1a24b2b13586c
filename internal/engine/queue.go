package engine

import (
	"context"
	"sync"
)

// Request is external work run at the current simulation time.
type Request struct {
	Name string
	Do   func(ctx context.Context) error
}

// requestQueue is a thread-safe FIFO queue for requests.
//
// Thread-safety is provided for external enqueuing (e.g., a CLI or a test
// goroutine) while the Engine's Run loop dequeues.
type requestQueue struct {
	mu       sync.Mutex
	requests []Request
	closed   bool
}

// newRequestQueue creates an empty request queue.
func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]Request, 0, 16),
	}
}

// Enqueue adds a request to the back of the queue.
// Returns false if the queue is closed.
func (q *requestQueue) Enqueue(r Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.requests = append(q.requests, r)
	return true
}

// TryDequeue removes and returns the front request without blocking.
// Returns (Request{}, false) if the queue is empty.
func (q *requestQueue) TryDequeue() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return Request{}, false
	}

	r := q.requests[0]

	// Nil out the slot so the closure can be collected.
	q.requests[0] = Request{}

	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}
	return r, true
}

// Len returns the current queue length.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Close rejects further requests. Requests already queued are kept.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// Closed reports whether Close was called.
func (q *requestQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
