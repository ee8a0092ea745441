package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/northernchefs/storefront/internal/config"
	"github.com/northernchefs/storefront/internal/delivery/events"
	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel).Named("notifier")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer, err := events.NewConsumer(cfg.NATS.URL, "notifier", appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	// plain subscriptions observe stream traffic without taking messages from the rating worker
	subscriptions := map[string]events.Handler{
		domain.SubjectReviewEvents: events.ReviewEventLogger(appLogger),
		domain.SubjectRevalidate:   events.RevalidateLogger(appLogger),
	}
	for subject, handle := range subscriptions {
		if err := consumer.Subscribe(subject, handle); err != nil {
			appLogger.Fatal("Failed to subscribe", err)
		}
	}

	appLogger.Infof("Notifier listening on %d subjects", len(subscriptions))

	<-ctx.Done()
	appLogger.Info("Notifier shutting down")
}
