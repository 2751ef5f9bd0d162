// Package queue runs pipeline work in the background: an unbounded
// FIFO drained by exactly one consumer, so two work items for the same
// run are naturally serialized.
package queue

import (
	"context"
	"sync"

	"github.com/christophervuu/flow/internal/model"
)

// WorkItem is one queued unit of background work: either "run the
// Clarifier stage and continue if unblocked" (Clarify true) or "resume
// the remaining pipeline from a persisted clarified spec".
type WorkItem struct {
	RunID   string
	RunPath string
	Clarify bool
	Options model.PipelineOptions

	// Answers are present on resume items only.
	Answers map[string]string
}

// Queue is an unbounded FIFO. Enqueue never blocks.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []WorkItem
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a work item. Enqueueing after Close is a no-op.
func (q *Queue) Enqueue(item WorkItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Close stops the consumer once the queue drains.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// dequeue blocks until an item is available or the queue is closed and
// empty.
func (q *Queue) dequeue() (WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return WorkItem{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Drain consumes items serially until the queue is closed and empty or
// ctx is cancelled. Exactly one Drain should run per queue; the single
// consumer is what serializes work items system-wide.
func (q *Queue) Drain(ctx context.Context, handle func(context.Context, WorkItem)) {
	for {
		if ctx.Err() != nil {
			return
		}
		item, ok := q.dequeue()
		if !ok {
			return
		}
		handle(ctx, item)
	}
}
