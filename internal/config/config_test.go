package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Redis:  RedisConfig{Host: "localhost"},
		JWT:    JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Cart: CartConfig{
			AnonymousTTL:       24 * time.Hour,
			AuthenticatedTTL:   7 * 24 * time.Hour,
			MigratedTTL:        30 * 24 * time.Hour,
			MigrateConcurrency: 8,
		},
		Queue: QueueConfig{DeletionQueueKey: "cart:deletions"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.Secret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short JWT secret")
	}
}

func TestValidateRejectsBadCartSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Cart.MigratedTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero migrated TTL")
	}

	cfg = validConfig()
	cfg.Cart.MigrateConcurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero migrate concurrency")
	}
}

func TestLoadUsesEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CART_ANONYMOUS_TTL", "1h")
	t.Setenv("CART_MIGRATE_CONCURRENCY", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cart.AnonymousTTL != time.Hour {
		t.Fatalf("expected 1h anonymous TTL, got %v", cfg.Cart.AnonymousTTL)
	}
	if cfg.Cart.MigrateConcurrency != 2 {
		t.Fatalf("expected concurrency 2, got %d", cfg.Cart.MigrateConcurrency)
	}
	if cfg.Cart.AuthenticatedTTL != 7*24*time.Hour {
		t.Fatalf("expected default authenticated TTL, got %v", cfg.Cart.AuthenticatedTTL)
	}
}
