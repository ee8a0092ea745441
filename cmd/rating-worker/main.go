package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/northernchefs/storefront/internal/config"
	"github.com/northernchefs/storefront/internal/delivery/events"
	"github.com/northernchefs/storefront/internal/pkg/database"
	"github.com/northernchefs/storefront/internal/pkg/logger"
	"github.com/northernchefs/storefront/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel).Named("rating-worker")
	appLogger.Info("Starting rating worker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.WaitForDB(ctx, cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	ratingWorker := worker.NewRatingWorker(worker.NewCalculator(db, appLogger), appLogger)

	nc, err := events.Connect(cfg.NATS.URL, "rating-worker", appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		appLogger.Fatal("Failed to create JetStream context", err)
	}

	streams := events.NewStreams(js, appLogger)
	if err := streams.EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure stream", err)
	}
	if err := streams.EnsureRatingConsumer(); err != nil {
		appLogger.Fatal("Failed to ensure consumer", err)
	}

	consumer, err := events.NewPullConsumer(js, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to subscribe to review events", err)
	}
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx, ratingWorker.HandleEvent)
	}()

	<-ctx.Done()
	appLogger.Info("Received shutdown signal")
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ratingWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Rating worker stopped")
}
