package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/northernchefs/storefront/internal/auth"
	"github.com/northernchefs/storefront/internal/config"
	"github.com/northernchefs/storefront/internal/delivery/events"
	httpDelivery "github.com/northernchefs/storefront/internal/delivery/http"
	"github.com/northernchefs/storefront/internal/delivery/http/handler"
	"github.com/northernchefs/storefront/internal/pkg/cache"
	"github.com/northernchefs/storefront/internal/pkg/database"
	"github.com/northernchefs/storefront/internal/pkg/logger"
	cacheRepo "github.com/northernchefs/storefront/internal/repository/cache"
	"github.com/northernchefs/storefront/internal/repository/postgres"
	"github.com/northernchefs/storefront/internal/usecase/product"
	"github.com/northernchefs/storefront/internal/usecase/review"
)

// @title Northern Chefs Storefront API
// @version 1.0
// @description Product catalogue and customer reviews: submission, helpfulness votes, replies, flags and moderation.

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Products
// @tag.description Read-only catalogue

// @tag.name Reviews
// @tag.description Customer reviews

// @tag.name Admin
// @tag.description Moderation

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel)
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting storefront API...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(ctx, cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	applied, err := database.RunMigrations(db, cfg.Database.MigrationsDir)
	if err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}
	appLogger.With("applied", applied).Info("Database schema is up to date")

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(ctx, cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	publisher, err := events.NewPublisher(cfg.NATS.URL, appLogger.Named("events"))
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	if err := events.NewStreams(publisher.JetStream(), appLogger).EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure review event stream", err)
	}

	userCache, err := cacheRepo.NewUserCache(cfg.Cache.UserCacheSize, cfg.Cache.UserTTL)
	if err != nil {
		appLogger.Fatal("Failed to create user cache", err)
	}
	defer userCache.Close()

	productRepo := postgres.NewProductRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	replyRepo := postgres.NewReplyRepository(db)
	flagRepo := postgres.NewFlagRepository(db)
	userRepo := postgres.NewUserRepository(db)
	reviewCache := cacheRepo.NewReviewCache(redisClient, cfg.Cache.ReviewsListTTL, cfg.Cache.RatingStatsTTL)

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	sessions := auth.NewService(userRepo, userCache, appLogger.Named("auth"))

	productService := product.NewService(productRepo, appLogger)
	reviewService := review.NewService(
		reviewRepo,
		voteRepo,
		replyRepo,
		flagRepo,
		sessions,
		reviewCache,
		publisher,
		appLogger.Named("reviews"),
		review.Options{AutoApprove: cfg.Reviews.AutoApprove},
	)

	productHandler := handler.NewProductHandler(productService, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewService, appLogger)
	adminHandler := handler.NewAdminHandler(reviewService, appLogger)

	router := httpDelivery.NewRouter(productHandler, reviewHandler, adminHandler, tokens, cfg, appLogger.Named("http"))
	httpHandler, err := router.Setup()
	if err != nil {
		appLogger.Fatal("Failed to configure router", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.WithFields(map[string]interface{}{
			"port":         cfg.Server.Port,
			"auto_approve": cfg.Reviews.AutoApprove,
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}

	if err := reviewService.Wait(shutdownCtx); err != nil {
		appLogger.Error("Review events still publishing at shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
