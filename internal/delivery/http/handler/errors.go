package handler

import (
	"errors"
	"net/http"

	"github.com/northernchefs/storefront/internal/delivery/http/response"
	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// writeError maps service errors onto HTTP responses. Store error text never
// reaches the client.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		response.Error(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrBusinessReplyForbidden):
		response.Error(w, http.StatusForbidden, "Only administrators can add business replies")
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, "You are not allowed to perform this action")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateReview):
		response.Error(w, http.StatusConflict, "You have already reviewed this product")
	case errors.Is(err, domain.ErrDuplicateFlag):
		response.Error(w, http.StatusConflict, "You have already flagged this review")
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, "Request conflicts with a concurrent change, please retry")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Review or product not found")
	default:
		log.Error("Internal error in handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
