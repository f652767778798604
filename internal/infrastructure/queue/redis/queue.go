// internal/infrastructure/queue/redis/queue.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/cart-service/internal/domain/cart"
)

// Queue delivers deferred-deletion messages through a Redis list.
// Producers LPUSH, the reaper BRPOPs. Delivery is at-least-once: a
// consumer crash after the pop loses nothing the entry TTL would not
// clean up anyway, and redelivered messages hit an idempotent delete.
type Queue struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewQueue creates a Redis-list-backed deletion queue
func NewQueue(client *redis.Client, key string, timeout time.Duration) *Queue {
	return &Queue{
		client:  client,
		key:     key,
		timeout: timeout,
	}
}

// Enqueue implements cart.DeletionQueue.
func (q *Queue) Enqueue(ctx context.Context, msg cart.DeferredDeletion) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode deletion message: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("failed to enqueue deletion message: %w", err)
	}
	return nil
}

// Receive implements cart.DeletionQueue. It blocks up to the configured
// timeout and reports ok=false when the queue stayed empty.
func (q *Queue) Receive(ctx context.Context) (cart.DeferredDeletion, bool, error) {
	values, err := q.client.BRPop(ctx, q.timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.DeferredDeletion{}, false, nil
		}
		return cart.DeferredDeletion{}, false, fmt.Errorf("failed to receive deletion message: %w", err)
	}

	// BRPOP returns [key, value].
	var msg cart.DeferredDeletion
	if err := json.Unmarshal([]byte(values[1]), &msg); err != nil {
		return cart.DeferredDeletion{}, false, fmt.Errorf("malformed deletion message: %w", err)
	}
	return msg, true, nil
}
