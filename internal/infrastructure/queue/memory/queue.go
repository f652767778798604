// internal/infrastructure/queue/memory/queue.go
package memory

import (
	"context"
	"time"

	"github.com/your-org/cart-service/internal/domain/cart"
)

// Queue is a channel-backed deletion queue for tests and local
// development.
type Queue struct {
	ch      chan cart.DeferredDeletion
	timeout time.Duration
}

// New creates an in-memory queue with the given buffer size
func New(buffer int, timeout time.Duration) *Queue {
	if buffer <= 0 {
		buffer = 64
	}
	return &Queue{
		ch:      make(chan cart.DeferredDeletion, buffer),
		timeout: timeout,
	}
}

// Enqueue implements cart.DeletionQueue.
func (q *Queue) Enqueue(ctx context.Context, msg cart.DeferredDeletion) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive implements cart.DeletionQueue.
func (q *Queue) Receive(ctx context.Context) (cart.DeferredDeletion, bool, error) {
	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	select {
	case msg := <-q.ch:
		return msg, true, nil
	case <-timer.C:
		return cart.DeferredDeletion{}, false, nil
	case <-ctx.Done():
		return cart.DeferredDeletion{}, false, ctx.Err()
	}
}

// Len reports the number of pending messages.
func (q *Queue) Len() int {
	return len(q.ch)
}
