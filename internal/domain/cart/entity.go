// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by the cart service. Handlers map these to
// HTTP statuses with errors.Is.
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity in cart")
	ErrUnauthorized         = errors.New("unauthorized")
)

// Entry is one cart row, keyed by (identity, product). The product
// snapshot is the copy captured at write time; the catalog may change
// afterwards and the snapshot stays authoritative for the cart.
type Entry struct {
	IdentityKey string           `json:"pk"`
	ItemKey     string           `json:"sk"`
	Quantity    int64            `json:"quantity"`
	Product     *ProductSnapshot `json:"productDetail,omitempty"`
	ExpiresAt   time.Time        `json:"expirationTime"`
}

// ProductSnapshot is the denormalized product data stored alongside a
// cart entry.
type ProductSnapshot struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	Price     int64    `json:"price"`
	Pictures  []string `json:"pictures,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// DeferredDeletion is a durable intent to remove one cart entry,
// decoupled in time from the event that produced it. Delivery is
// at-least-once; the consumer must tolerate redelivery.
type DeferredDeletion struct {
	IdentityKey string `json:"pk"`
	ItemKey     string `json:"sk"`
}

// Identity carries whichever identifiers the caller presented. UserID is
// set only when a valid credential was resolved; CartID is the anonymous
// cart cookie value. A session may hold both until migration completes.
type Identity struct {
	UserID string
	CartID string
}

// Authenticated reports whether a user identity was resolved.
func (id Identity) Authenticated() bool {
	return id.UserID != ""
}

// Item is a caller-facing cart line with the product# prefix stripped
// from the item identifier.
type Item struct {
	ProductID string           `json:"productId"`
	Quantity  int64            `json:"quantity"`
	Product   *ProductSnapshot `json:"productDetail,omitempty"`
}

// MergeResult reports the outcome of migrating a single source entry.
type MergeResult struct {
	ItemKey  string
	Quantity int64
	Err      error
}
