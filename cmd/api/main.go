// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/cart-service/internal/config"
	"github.com/your-org/cart-service/internal/domain/cart"
	"github.com/your-org/cart-service/internal/domain/product"
	"github.com/your-org/cart-service/internal/infrastructure/database/redis"
	redisqueue "github.com/your-org/cart-service/internal/infrastructure/queue/redis"
	redisstore "github.com/your-org/cart-service/internal/infrastructure/store/redis"
	"github.com/your-org/cart-service/internal/interfaces/http"
	"github.com/your-org/cart-service/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.Infof("Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	if err := redisClient.Health(); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}

	// Wire the cart service: Redis store + deletion queue + product
	// service client, constructed once and shared by every request.
	store := redisstore.NewStore(redisClient.GetClient())
	queue := redisqueue.NewQueue(redisClient.GetClient(), cfg.Queue.DeletionQueueKey, cfg.Queue.ReceiveTimeout)
	products := product.NewClient(cfg)
	cartService := cart.NewService(store, queue, products, cfg, appLogger)

	// Create and start HTTP server
	server := http.NewServer(cfg, cartService, redisClient.GetClient(), appLogger)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
}
