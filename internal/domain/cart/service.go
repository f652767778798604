// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cart-service/internal/config"
	"golang.org/x/sync/errgroup"
)

// Service handles cart business logic
type Service struct {
	store    Store
	queue    DeletionQueue
	products ProductLookup
	ttl      TTLPolicy
	logger   *logrus.Logger

	// Upper bound on concurrent per-item merges during migration.
	migrateConcurrency int
}

// NewService creates a new cart service
func NewService(store Store, queue DeletionQueue, products ProductLookup, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		store:              store,
		queue:              queue,
		products:           products,
		ttl:                NewTTLPolicy(cfg.Cart),
		logger:             logger,
		migrateConcurrency: cfg.Cart.MigrateConcurrency,
	}
}

// AddItem adds the given quantity of a product to the caller's cart.
// Where the item already exists the quantities are summed; a negative
// delta removes quantity and fails with ErrInsufficientQuantity rather
// than taking the stored quantity below zero. The whole update is a
// single conditional mutation in the store, so concurrent callers for
// the same (identity, product) pair serialize there; no read is done
// before the write.
func (s *Service) AddItem(ctx context.Context, id Identity, productID string, delta int64) (*Item, error) {
	snapshot, err := s.products.Lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	regime := RegimeAnonymous
	if id.Authenticated() {
		regime = RegimeAuthenticated
	}

	identityKey := IdentityKey(id)
	expiresAt := s.ttl.ComputeExpiry(regime, ReasonAdd, time.Now().UTC())

	quantity, err := s.store.AddAndSet(ctx, identityKey, ItemKey(productID), delta, snapshot, expiresAt)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"identity_key": identityKey,
		"product_id":   productID,
		"delta":        delta,
		"quantity":     quantity,
		"expires_at":   expiresAt,
	}).Info("Cart updated")

	return &Item{
		ProductID: productID,
		Quantity:  quantity,
		Product:   snapshot,
	}, nil
}

// GetCart returns the caller's cart entries with caller-facing product
// identifiers.
func (s *Service) GetCart(ctx context.Context, id Identity) ([]Item, error) {
	entries, err := s.store.Query(ctx, IdentityKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return toItems(entries), nil
}

// Migrate merges every entry under the caller's anonymous cart into the
// authenticated cart and schedules asynchronous removal of the source
// entries. Per-item merges run in parallel up to the configured cap and
// are joined before anything else happens; a failed merge does not stop
// the others. Deletion is enqueued only for entries whose merge
// succeeded, so a failed item stays under the anonymous key and a retry
// can pick it up. The returned items are a strongly consistent re-read
// of the authenticated cart; results carries the per-item outcomes.
func (s *Service) Migrate(ctx context.Context, id Identity) (items []Item, results []MergeResult, err error) {
	if !id.Authenticated() {
		return nil, nil, ErrUnauthorized
	}

	sourceKey := AnonymousKey(id.CartID)
	targetKey := UserKey(id.UserID)

	source, err := s.store.Query(ctx, sourceKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read anonymous cart: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source_key": sourceKey,
		"target_key": targetKey,
		"items":      len(source),
	}).Info("Migrating anonymous cart")

	expiresAt := s.ttl.ComputeExpiry(RegimeAuthenticated, ReasonMigratedItem, time.Now().UTC())

	// Items are disjoint by product id, so the merges have no write
	// conflicts between them. Each goroutine owns one slot of results;
	// errors are collected there, never propagated through the group,
	// so one failure cannot cancel the rest.
	results = make([]MergeResult, len(source))
	var g errgroup.Group
	g.SetLimit(s.migrateConcurrency)
	for i, entry := range source {
		i, entry := i, entry
		g.Go(func() error {
			quantity, mergeErr := s.store.AddAndSet(ctx, targetKey, entry.ItemKey, entry.Quantity, entry.Product, expiresAt)
			results[i] = MergeResult{ItemKey: entry.ItemKey, Quantity: quantity, Err: mergeErr}
			return nil
		})
	}
	g.Wait()

	for _, res := range results {
		if res.Err != nil {
			s.logger.WithFields(logrus.Fields{
				"target_key": targetKey,
				"item_key":   res.ItemKey,
			}).WithError(res.Err).Error("Failed to merge cart item")
			continue
		}
		// The source row is now redundant. Deleting it inline would
		// couple merge latency to the delete path, so the removal goes
		// through the deferred-deletion queue instead; if the enqueue
		// fails the row simply lives until its TTL expires.
		msg := DeferredDeletion{IdentityKey: sourceKey, ItemKey: res.ItemKey}
		if enqErr := s.queue.Enqueue(ctx, msg); enqErr != nil {
			s.logger.WithFields(logrus.Fields{
				"source_key": sourceKey,
				"item_key":   res.ItemKey,
			}).WithError(enqErr).Warn("Failed to enqueue deferred deletion")
		}
	}

	entries, err := s.store.Query(ctx, targetKey)
	if err != nil {
		return nil, results, fmt.Errorf("failed to read migrated cart: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source_key": sourceKey,
		"target_key": targetKey,
		"items":      len(entries),
	}).Info("Cart migrated")

	return toItems(entries), results, nil
}

// Checkout reads the authenticated cart and clears it, returning the
// pre-deletion entries as the checked-out set. The deletes are batched
// as a transport optimization only; each item's delete is independent
// and a partial failure is not rolled back.
func (s *Service) Checkout(ctx context.Context, id Identity) ([]Item, error) {
	if !id.Authenticated() {
		return nil, ErrUnauthorized
	}

	identityKey := UserKey(id.UserID)

	entries, err := s.store.Query(ctx, identityKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	keys := make([]DeferredDeletion, len(entries))
	for i, entry := range entries {
		keys[i] = DeferredDeletion{IdentityKey: entry.IdentityKey, ItemKey: entry.ItemKey}
	}

	if err := s.store.BatchDelete(ctx, keys); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"identity_key": identityKey,
		"items":        len(entries),
	}).Info("Cart checked out")

	return toItems(entries), nil
}

func toItems(entries []Entry) []Item {
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = Item{
			ProductID: ProductID(entry.ItemKey),
			Quantity:  entry.Quantity,
			Product:   entry.Product,
		}
	}
	return items
}
