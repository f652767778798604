// cmd/product-mock/main.go
package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/your-org/cart-service/internal/domain/cart"
)

//go:embed products.json
var productData []byte

// Stand-in for the real catalog. Serves a fixed product list; unknown
// ids answer 200 with a null product, which the cart client maps to
// not-found.
func main() {
	var products []cart.ProductSnapshot
	if err := json.Unmarshal(productData, &products); err != nil {
		log.Fatalf("Failed to load product list: %v", err)
	}

	byID := make(map[string]*cart.ProductSnapshot, len(products))
	for i := range products {
		byID[products[i].ProductID] = &products[i]
	}

	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	router := gin.Default()
	router.GET("/product/:product_id", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Allow-Methods", "OPTIONS,POST,GET")

		product, ok := byID[c.Param("product_id")]
		if !ok {
			c.JSON(http.StatusOK, gin.H{"product": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	})

	port := os.Getenv("PRODUCT_MOCK_PORT")
	if port == "" {
		port = "8081"
	}

	log.Printf("Product mock listening on :%s with %d products", port, len(products))
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Product mock failed: %v", err)
	}
}
