// internal/domain/cart/keys.go
package cart

import "strings"

// Key prefixes for the store's composite keys. An entry lives under
// exactly one identity key; item keys are shared across identities so
// migration can re-key an entry without touching the product id.
const (
	anonymousKeyPrefix = "cart#"
	userKeyPrefix      = "user#"
	itemKeyPrefix      = "product#"
)

// AnonymousKey derives the identity key for a client-issued cart id.
func AnonymousKey(cartID string) string {
	return anonymousKeyPrefix + cartID
}

// UserKey derives the identity key for an authenticated user.
func UserKey(userID string) string {
	return userKeyPrefix + userID
}

// ItemKey derives the sort key for a product.
func ItemKey(productID string) string {
	return itemKeyPrefix + productID
}

// ProductID strips the product# prefix from an item key, returning the
// caller-facing product identifier.
func ProductID(itemKey string) string {
	return strings.TrimPrefix(itemKey, itemKeyPrefix)
}

// IdentityKey resolves the store partition key for the caller: the user
// key when a credential was resolved, the anonymous cart key otherwise.
func IdentityKey(id Identity) string {
	if id.Authenticated() {
		return UserKey(id.UserID)
	}
	return AnonymousKey(id.CartID)
}
