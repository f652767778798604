// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/cart-service/internal/config"
	"github.com/your-org/cart-service/internal/domain/cart"
	"github.com/your-org/cart-service/internal/interfaces/http/handlers"
	"github.com/your-org/cart-service/internal/interfaces/http/middleware"
)

// SetupRoutes wires the cart endpoints. Identity is optional on every
// route; migrate and checkout enforce it in the service layer so the
// error shape stays uniform.
func SetupRoutes(rg *gin.RouterGroup, cartService *cart.Service, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(cartService, cfg)

	carts := rg.Group("/cart")
	carts.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		carts.GET("", cartHandler.GetCart)
		carts.POST("/items", cartHandler.AddToCart)
		carts.POST("/migrate", cartHandler.Migrate)
		carts.POST("/checkout", cartHandler.Checkout)
	}
}
