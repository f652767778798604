package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cart-service/internal/config"
	"github.com/your-org/cart-service/internal/domain/cart"
	memqueue "github.com/your-org/cart-service/internal/infrastructure/queue/memory"
	memstore "github.com/your-org/cart-service/internal/infrastructure/store/memory"
	"github.com/your-org/cart-service/internal/interfaces/http/routes"
	"github.com/your-org/cart-service/internal/pkg/auth"
)

type fakeCatalog struct {
	products map[string]*cart.ProductSnapshot
}

func (f *fakeCatalog) Lookup(ctx context.Context, productID string) (*cart.ProductSnapshot, error) {
	if p, ok := f.products[productID]; ok {
		return p, nil
	}
	return nil, cart.ErrProductNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Cart Service", Environment: "test"},
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
		Cart: config.CartConfig{
			AnonymousTTL:       24 * time.Hour,
			AuthenticatedTTL:   7 * 24 * time.Hour,
			MigratedTTL:        30 * 24 * time.Hour,
			MigrateConcurrency: 4,
		},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	store := memstore.New()
	queue := memqueue.New(64, 100*time.Millisecond)
	catalog := &fakeCatalog{products: map[string]*cart.ProductSnapshot{
		"p1": {ProductID: "p1", Name: "Espresso Beans", Price: 1250},
	}}

	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := cart.NewService(store, queue, catalog, cfg, log)

	router := gin.New()
	routes.SetupRoutes(router.Group("/api/v1"), svc, cfg)
	return router, cfg
}

func bearerToken(t *testing.T, cfg *config.Config, userID string) string {
	t.Helper()
	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func cartCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "cartId" {
			return c
		}
	}
	t.Fatal("no cartId cookie in response")
	return nil
}

func TestAddToCartAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		ProductID string `json:"productId"`
		Quantity  int64  `json:"quantity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ProductID != "p1" || resp.Quantity != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Anonymous continuity rides on the cart cookie.
	cookie := cartCookie(t, w)
	if cookie.Value == "" {
		t.Fatal("empty cartId cookie")
	}
}

func TestAddToCartDefaultQuantity(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Quantity int64 `json:"quantity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", resp.Quantity)
	}
}

func TestAddToCartMalformedPayload(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/cart/items", `{"quantity":2}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/cart/items", `{"productId":"nope"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAddToCartInsufficientQuantity(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`, nil)
	cookie := cartCookie(t, w)

	w = doRequest(router, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":-5}`,
		map[string]string{"Cookie": cookie.Name + "=" + cookie.Value})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestMigrateRequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/cart/migrate", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCheckoutRequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/cart/checkout", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestMigrateThenCheckoutFlow(t *testing.T) {
	router, cfg := newTestRouter(t)

	// Build an anonymous cart.
	w := doRequest(router, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","quantity":2}`, nil)
	cookie := cartCookie(t, w)
	cookieHeader := cookie.Name + "=" + cookie.Value

	// Log in and migrate it.
	token := bearerToken(t, cfg, "u1")
	w = doRequest(router, http.MethodPost, "/api/v1/cart/migrate", "",
		map[string]string{"Cookie": cookieHeader, "Authorization": token})
	if w.Code != http.StatusOK {
		t.Fatalf("migrate status = %d, body = %s", w.Code, w.Body.String())
	}

	var migrated struct {
		Products []cart.Item `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &migrated); err != nil {
		t.Fatalf("decode migrate response: %v", err)
	}
	if len(migrated.Products) != 1 || migrated.Products[0].ProductID != "p1" || migrated.Products[0].Quantity != 2 {
		t.Fatalf("unexpected migrated products: %+v", migrated.Products)
	}

	// Checkout clears the user cart and returns the cleared set.
	w = doRequest(router, http.MethodPost, "/api/v1/cart/checkout", "",
		map[string]string{"Authorization": token})
	if w.Code != http.StatusOK {
		t.Fatalf("checkout status = %d", w.Code)
	}

	var checkedOut struct {
		Products []cart.Item `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &checkedOut); err != nil {
		t.Fatalf("decode checkout response: %v", err)
	}
	if len(checkedOut.Products) != 1 {
		t.Fatalf("expected 1 checked-out product, got %d", len(checkedOut.Products))
	}

	// A second checkout finds nothing.
	w = doRequest(router, http.MethodPost, "/api/v1/cart/checkout", "",
		map[string]string{"Authorization": token})
	if w.Code != http.StatusOK {
		t.Fatalf("second checkout status = %d", w.Code)
	}
	checkedOut.Products = nil
	if err := json.Unmarshal(w.Body.Bytes(), &checkedOut); err != nil {
		t.Fatalf("decode second checkout response: %v", err)
	}
	if len(checkedOut.Products) != 0 {
		t.Fatalf("expected empty cart, got %+v", checkedOut.Products)
	}
}
