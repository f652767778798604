// internal/domain/cart/ttl.go
package cart

import (
	"time"

	"github.com/your-org/cart-service/internal/config"
)

// Regime is the identity regime an entry is stored under.
type Regime int

const (
	RegimeAnonymous Regime = iota
	RegimeAuthenticated
)

// Reason is the operation that triggered the TTL refresh.
type Reason int

const (
	ReasonAdd Reason = iota
	ReasonMigratedItem
)

// TTLPolicy computes absolute expiry timestamps for cart entries.
// Authenticated carts persist longer because the identity is durable
// across sessions; migrated items get the longest retention since
// migration is the point a user commits to an account-linked cart.
type TTLPolicy struct {
	anonymous     time.Duration
	authenticated time.Duration
	migrated      time.Duration
}

// NewTTLPolicy builds a policy from the configured durations.
func NewTTLPolicy(cfg config.CartConfig) TTLPolicy {
	return TTLPolicy{
		anonymous:     cfg.AnonymousTTL,
		authenticated: cfg.AuthenticatedTTL,
		migrated:      cfg.MigratedTTL,
	}
}

// ComputeExpiry returns the absolute expiry for an entry written now
// under the given regime and reason. Anonymous carts always get the
// short default regardless of reason; migration only ever writes under
// the authenticated regime.
func (p TTLPolicy) ComputeExpiry(regime Regime, reason Reason, now time.Time) time.Time {
	if regime != RegimeAuthenticated {
		return now.Add(p.anonymous)
	}
	if reason == ReasonMigratedItem {
		return now.Add(p.migrated)
	}
	return now.Add(p.authenticated)
}
