// internal/domain/product/client.go
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/your-org/cart-service/internal/config"
	"github.com/your-org/cart-service/internal/domain/cart"
)

// Client looks up products from the external product service. The
// service answers 200 with {"product": null} for unknown ids, which
// maps to cart.ErrProductNotFound here.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new product service client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.Product.ServiceURL,
		httpClient: &http.Client{
			Timeout: cfg.Product.Timeout,
		},
	}
}

type productEnvelope struct {
	Product *cart.ProductSnapshot `json:"product"`
}

// Lookup fetches the current catalog snapshot for a product id.
func (c *Client) Lookup(ctx context.Context, productID string) (*cart.ProductSnapshot, error) {
	endpoint := fmt.Sprintf("%s/product/%s", c.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build product request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, cart.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product service returned status %d", resp.StatusCode)
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}

	if envelope.Product == nil {
		return nil, cart.ErrProductNotFound
	}

	return envelope.Product, nil
}
