// internal/infrastructure/store/redis/store.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/cart-service/internal/domain/cart"
)

// Store keeps one Redis hash per cart entry plus a set of item keys per
// identity for range reads. Expiry rides on Redis's own lazy key TTL,
// so reads must tolerate entries that are already gone. Reads against
// the primary are linearizable, which satisfies the strong-read
// requirement of the cart coordinators.
type Store struct {
	client *redis.Client
}

// NewStore creates a Redis-backed cart store
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

const insufficientQuantityReply = "INSUFFICIENT_QUANTITY"

// addAndSetScript applies the quantity increment, snapshot replacement
// and TTL refresh as one atomic unit, guarding negative deltas with the
// non-negative-quantity precondition. The index set keeps an expiry at
// least as late as its longest-lived entry.
var addAndSetScript = redis.NewScript(`
local delta = tonumber(ARGV[1])
if delta < 0 then
  local current = tonumber(redis.call('HGET', KEYS[1], 'quantity')) or 0
  if current + delta < 0 then
    return redis.error_reply('` + insufficientQuantityReply + `')
  end
end
local quantity = redis.call('HINCRBY', KEYS[1], 'quantity', delta)
redis.call('HSET', KEYS[1], 'product', ARGV[2], 'expiresAt', ARGV[3])
redis.call('PEXPIREAT', KEYS[1], tonumber(ARGV[3]))
redis.call('SADD', KEYS[2], ARGV[4])
if redis.call('PEXPIRETIME', KEYS[2]) < tonumber(ARGV[3]) then
  redis.call('PEXPIREAT', KEYS[2], tonumber(ARGV[3]))
end
return quantity
`)

func entryKey(identityKey, itemKey string) string {
	return fmt.Sprintf("cart:%s:%s", identityKey, itemKey)
}

func indexKey(identityKey string) string {
	return fmt.Sprintf("cartidx:%s", identityKey)
}

// AddAndSet implements cart.Store.
func (s *Store) AddAndSet(ctx context.Context, identityKey, itemKey string, delta int64, snapshot *cart.ProductSnapshot, expiresAt time.Time) (int64, error) {
	product, err := json.Marshal(snapshot)
	if err != nil {
		return 0, fmt.Errorf("failed to encode product snapshot: %w", err)
	}

	keys := []string{entryKey(identityKey, itemKey), indexKey(identityKey)}
	argv := []interface{}{delta, string(product), expiresAt.UnixMilli(), itemKey}

	quantity, err := addAndSetScript.Run(ctx, s.client, keys, argv...).Int64()
	if err != nil {
		if strings.Contains(err.Error(), insufficientQuantityReply) {
			return 0, cart.ErrInsufficientQuantity
		}
		return 0, fmt.Errorf("cart update failed: %w", err)
	}

	return quantity, nil
}

// Query implements cart.Store. Entries whose hash has already expired
// are skipped and pruned from the index.
func (s *Store) Query(ctx context.Context, identityKey string) ([]cart.Entry, error) {
	members, err := s.client.SMembers(ctx, indexKey(identityKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart index: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, itemKey := range members {
		cmds[i] = pipe.HGetAll(ctx, entryKey(identityKey, itemKey))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read cart entries: %w", err)
	}

	var entries []cart.Entry
	var stale []interface{}
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// Expired between index read and entry read.
			stale = append(stale, members[i])
			continue
		}
		entry, err := decodeEntry(identityKey, members[i], fields)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, indexKey(identityKey), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune cart index: %w", err)
		}
	}

	return entries, nil
}

// DeleteEntry implements cart.Store. Deleting a missing entry is a
// no-op.
func (s *Store) DeleteEntry(ctx context.Context, identityKey, itemKey string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, entryKey(identityKey, itemKey))
	pipe.SRem(ctx, indexKey(identityKey), itemKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete cart entry: %w", err)
	}
	return nil
}

// BatchDelete implements cart.Store. The deletes share one pipeline but
// remain independent; every failure is reported, none rolls back the
// rest.
func (s *Store) BatchDelete(ctx context.Context, keys []cart.DeferredDeletion) error {
	if len(keys) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, entryKey(key.IdentityKey, key.ItemKey))
		pipe.SRem(ctx, indexKey(key.IdentityKey), key.ItemKey)
	}
	cmds, _ := pipe.Exec(ctx)

	var errs []error
	for _, cmd := range cmds {
		if err := cmd.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to delete %d cart entries: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

func decodeEntry(identityKey, itemKey string, fields map[string]string) (cart.Entry, error) {
	quantity, err := strconv.ParseInt(fields["quantity"], 10, 64)
	if err != nil {
		return cart.Entry{}, fmt.Errorf("corrupt quantity for %s/%s: %w", identityKey, itemKey, err)
	}

	expiresMilli, err := strconv.ParseInt(fields["expiresAt"], 10, 64)
	if err != nil {
		return cart.Entry{}, fmt.Errorf("corrupt expiry for %s/%s: %w", identityKey, itemKey, err)
	}

	var snapshot *cart.ProductSnapshot
	if raw := fields["product"]; raw != "" && raw != "null" {
		snapshot = &cart.ProductSnapshot{}
		if err := json.Unmarshal([]byte(raw), snapshot); err != nil {
			return cart.Entry{}, fmt.Errorf("corrupt product snapshot for %s/%s: %w", identityKey, itemKey, err)
		}
	}

	return cart.Entry{
		IdentityKey: identityKey,
		ItemKey:     itemKey,
		Quantity:    quantity,
		Product:     snapshot,
		ExpiresAt:   time.UnixMilli(expiresMilli).UTC(),
	}, nil
}
