// internal/domain/cart/reaper.go
package cart

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Reaper consumes deferred-deletion messages and removes the referenced
// entries from the store. Deletes are delete-if-exists, so redelivered
// messages are harmless and the consumer can be re-invoked at will.
type Reaper struct {
	store  Store
	queue  DeletionQueue
	logger *logrus.Logger
}

// NewReaper creates a new reaper
func NewReaper(store Store, queue DeletionQueue, logger *logrus.Logger) *Reaper {
	return &Reaper{
		store:  store,
		queue:  queue,
		logger: logger,
	}
}

// Run consumes the deletion queue until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	for {
		msg, ok, err := r.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			r.logger.WithError(err).Error("Failed to receive deletion message")
			continue
		}
		if !ok {
			// Receive timed out with an empty queue; poll again.
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			continue
		}

		if err := r.reap(ctx, msg); err != nil {
			// The message is lost but the entry still carries a TTL, so
			// the store garbage-collects it eventually.
			r.logger.WithFields(logrus.Fields{
				"identity_key": msg.IdentityKey,
				"item_key":     msg.ItemKey,
			}).WithError(err).Error("Failed to delete cart entry")
		}
	}
}

func (r *Reaper) reap(ctx context.Context, msg DeferredDeletion) error {
	if err := r.store.DeleteEntry(ctx, msg.IdentityKey, msg.ItemKey); err != nil {
		return err
	}
	r.logger.WithFields(logrus.Fields{
		"identity_key": msg.IdentityKey,
		"item_key":     msg.ItemKey,
	}).Info("Deleted cart entry")
	return nil
}
