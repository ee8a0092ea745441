package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/northernchefs/storefront/internal/config"
	"github.com/northernchefs/storefront/internal/delivery/http/handler"
	"github.com/northernchefs/storefront/internal/delivery/http/middleware"
	"github.com/northernchefs/storefront/internal/delivery/http/response"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// Router holds HTTP handlers and router configuration
type Router struct {
	productHandler *handler.ProductHandler
	reviewHandler  *handler.ReviewHandler
	adminHandler   *handler.AdminHandler
	tokens         middleware.TokenParser
	logger         *logger.Logger
	cfg            *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	productHandler *handler.ProductHandler,
	reviewHandler *handler.ReviewHandler,
	adminHandler *handler.AdminHandler,
	tokens middleware.TokenParser,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		productHandler: productHandler,
		reviewHandler:  reviewHandler,
		adminHandler:   adminHandler,
		tokens:         tokens,
		logger:         log,
		cfg:            cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() (http.Handler, error) {
	limitMutations, err := middleware.RateLimit(rt.cfg.RateLimit.Mutations, rt.cfg.Server.TrustProxyHeaders, rt.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if rt.cfg.Server.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(chimw.Timeout(rt.cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.tokens, rt.logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.productHandler.List)
			r.Get("/{id}", rt.productHandler.GetByID)
			r.Get("/{id}/reviews", rt.reviewHandler.ListByProduct)
			r.Get("/{id}/rating", rt.reviewHandler.RatingStats)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Use(limitMutations)

			r.Post("/", rt.reviewHandler.Create)
			r.Delete("/{id}", rt.reviewHandler.Delete)
			r.Post("/{id}/helpful", rt.reviewHandler.MarkHelpful)
			r.Post("/{id}/replies", rt.reviewHandler.AddReply)
			r.Post("/{id}/flags", rt.reviewHandler.Flag)
			r.Put("/{id}/moderation", rt.adminHandler.Moderate)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireSession)

			r.Get("/reviews", rt.adminHandler.ListReviews)
			r.Get("/flags", rt.adminHandler.ListFlags)
		})
	})

	return r, nil
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
