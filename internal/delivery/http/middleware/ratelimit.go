package middleware

import (
	"fmt"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/northernchefs/storefront/internal/delivery/http/response"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// RateLimit limits requests per client IP. rate uses the limiter format, e.g. "30-M".
// Forwarding headers only identify the client when trustForwardHeader is set.
func RateLimit(rate string, trustForwardHeader bool, log *logger.Logger) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit %q: %w", rate, err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, parsed, limiter.WithTrustForwardHeader(trustForwardHeader))

	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			log.WithFields(map[string]interface{}{
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			}).Warn("Rate limit reached")
			response.Error(w, http.StatusTooManyRequests, "Too many requests, please slow down")
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("Rate limiter failure", err)
			response.Error(w, http.StatusInternalServerError, "Internal server error")
		}),
	)

	return mw.Handler, nil
}
