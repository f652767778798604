// internal/domain/cart/ports.go
package cart

import (
	"context"
	"time"
)

// Store is the shared key-value store holding cart entries under a
// composite (identityKey, itemKey) key. Implementations must provide an
// atomic conditional add-and-set, idempotent deletes, and lazy
// TTL-based expiry. Reads are strongly consistent: Query reflects every
// AddAndSet that completed before it.
type Store interface {
	// AddAndSet atomically applies quantity += delta, replaces the
	// product snapshot and refreshes expiresAt, as a single mutation.
	// When delta is negative the write is guarded by the precondition
	// current quantity >= |delta|; on violation it fails with
	// ErrInsufficientQuantity and leaves the entry unchanged.
	AddAndSet(ctx context.Context, identityKey, itemKey string, delta int64, snapshot *ProductSnapshot, expiresAt time.Time) (int64, error)

	// Query returns all live entries under an identity key.
	Query(ctx context.Context, identityKey string) ([]Entry, error)

	// DeleteEntry removes one entry. Deleting an entry that is already
	// gone is a no-op, not an error.
	DeleteEntry(ctx context.Context, identityKey, itemKey string) error

	// BatchDelete removes a set of entries. The batch is a transport
	// optimization, not a transaction: each delete is independent and a
	// partial failure is reported without rolling back the rest.
	BatchDelete(ctx context.Context, keys []DeferredDeletion) error
}

// DeletionQueue is the durable deferred-deletion channel between the
// migration coordinator and the reaper. At-least-once delivery; the
// consumer is idempotent.
type DeletionQueue interface {
	Enqueue(ctx context.Context, msg DeferredDeletion) error

	// Receive blocks until a message arrives, the receive timeout
	// elapses (returning ok=false), or the context is cancelled.
	Receive(ctx context.Context) (msg DeferredDeletion, ok bool, err error)
}

// ProductLookup resolves a product id to its current catalog snapshot.
// The catalog is external; NotFound surfaces as ErrProductNotFound.
type ProductLookup interface {
	Lookup(ctx context.Context, productID string) (*ProductSnapshot, error)
}
