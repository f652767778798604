// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/cart-service/internal/config"
	"github.com/your-org/cart-service/internal/domain/cart"
	"github.com/your-org/cart-service/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		config:      cfg,
	}
}

// AddToCartRequest represents the add to cart payload. A missing
// quantity means 1; a negative quantity removes from the cart.
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int64 `json:"quantity"`
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	identity := h.resolveIdentity(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	quantity := int64(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.cartService.AddItem(c.Request.Context(), identity, req.ProductID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errors.Is(err, cart.ErrInsufficientQuantity):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Cannot remove more than the cart holds",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update cart",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Product added to cart",
		"productId": item.ProductID,
		"quantity":  item.Quantity,
	})
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	identity := h.resolveIdentity(c)

	items, err := h.cartService.GetCart(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": items,
	})
}

// Migrate handles POST /cart/migrate. Requires a resolved user; merges
// the anonymous cart into the user's and returns the merged view.
func (h *CartHandler) Migrate(c *gin.Context) {
	identity := h.resolveIdentity(c)

	items, results, err := h.cartService.Migrate(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, cart.ErrUnauthorized) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid user",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to migrate cart",
		})
		return
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}

	response := gin.H{
		"products": items,
	}
	if failed > 0 {
		// Failed items stay in the anonymous cart; retrying the
		// migration re-applies only those.
		response["failed_items"] = failed
	}

	c.JSON(http.StatusOK, response)
}

// Checkout handles POST /cart/checkout. Clears the user's cart and
// returns the cleared entries.
func (h *CartHandler) Checkout(c *gin.Context) {
	identity := h.resolveIdentity(c)

	items, err := h.cartService.Checkout(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, cart.ErrUnauthorized) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid user",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to check out cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": items,
	})
}

// resolveIdentity assembles the caller's identity from the optional
// auth middleware and the cart cookie. The cookie is always (re)issued
// so anonymous carts survive across requests, including the window
// where a logged-in user still has an unmigrated anonymous cart.
func (h *CartHandler) resolveIdentity(c *gin.Context) cart.Identity {
	userID, _ := middleware.GetUserIDFromContext(c)

	cartID, err := c.Cookie("cartId")
	if err != nil || cartID == "" {
		cartID = uuid.New().String()
	}
	maxAge := int(h.config.Cart.AnonymousTTL.Seconds())
	c.SetCookie("cartId", cartID, maxAge, "/", "", h.config.IsProduction(), true)

	return cart.Identity{
		UserID: userID,
		CartID: cartID,
	}
}
