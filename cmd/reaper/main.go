// cmd/reaper/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/your-org/cart-service/internal/config"
	"github.com/your-org/cart-service/internal/domain/cart"
	"github.com/your-org/cart-service/internal/infrastructure/database/redis"
	redisqueue "github.com/your-org/cart-service/internal/infrastructure/queue/redis"
	redisstore "github.com/your-org/cart-service/internal/infrastructure/store/redis"
	"github.com/your-org/cart-service/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.Infof("Starting cart reaper v%s", cfg.App.Version)

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	store := redisstore.NewStore(redisClient.GetClient())
	queue := redisqueue.NewQueue(redisClient.GetClient(), cfg.Queue.DeletionQueueKey, cfg.Queue.ReceiveTimeout)
	reaper := cart.NewReaper(store, queue, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := reaper.Run(ctx); err != nil {
		log.Fatalf("Reaper stopped with error: %v", err)
	}

	appLogger.Info("Reaper shut down")
}
