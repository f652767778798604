// internal/infrastructure/store/memory/store.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/cart-service/internal/domain/cart"
)

// Store is an in-memory cart store with the same contract as the Redis
// adapter: atomic conditional add-and-set, idempotent deletes, lazy
// expiry. It backs tests and local development.
type Store struct {
	mu sync.Mutex
	m  map[string]map[string]*entry
}

type entry struct {
	quantity  int64
	product   *cart.ProductSnapshot
	expiresAt time.Time
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{m: make(map[string]map[string]*entry)}
}

// AddAndSet implements cart.Store.
func (s *Store) AddAndSet(ctx context.Context, identityKey, itemKey string, delta int64, snapshot *cart.ProductSnapshot, expiresAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.live(identityKey, itemKey)
	if row == nil {
		if delta < 0 {
			return 0, cart.ErrInsufficientQuantity
		}
		if s.m[identityKey] == nil {
			s.m[identityKey] = make(map[string]*entry)
		}
		row = &entry{}
		s.m[identityKey][itemKey] = row
	}

	if delta < 0 && row.quantity+delta < 0 {
		return 0, cart.ErrInsufficientQuantity
	}

	row.quantity += delta
	row.product = snapshot
	row.expiresAt = expiresAt
	return row.quantity, nil
}

// Query implements cart.Store.
func (s *Store) Query(ctx context.Context, identityKey string) ([]cart.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []cart.Entry
	for itemKey := range s.m[identityKey] {
		row := s.live(identityKey, itemKey)
		if row == nil {
			continue
		}
		entries = append(entries, cart.Entry{
			IdentityKey: identityKey,
			ItemKey:     itemKey,
			Quantity:    row.quantity,
			Product:     row.product,
			ExpiresAt:   row.expiresAt,
		})
	}
	return entries, nil
}

// DeleteEntry implements cart.Store.
func (s *Store) DeleteEntry(ctx context.Context, identityKey, itemKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m[identityKey], itemKey)
	return nil
}

// BatchDelete implements cart.Store.
func (s *Store) BatchDelete(ctx context.Context, keys []cart.DeferredDeletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.m[key.IdentityKey], key.ItemKey)
	}
	return nil
}

// live returns the entry if present and not past its expiry, pruning it
// otherwise. Callers hold the lock.
func (s *Store) live(identityKey, itemKey string) *entry {
	row, ok := s.m[identityKey][itemKey]
	if !ok {
		return nil
	}
	if !row.expiresAt.IsZero() && !time.Now().Before(row.expiresAt) {
		delete(s.m[identityKey], itemKey)
		return nil
	}
	return row
}
