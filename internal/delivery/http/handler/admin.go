package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/northernchefs/storefront/internal/delivery/http/request"
	"github.com/northernchefs/storefront/internal/delivery/http/response"
	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// AdminService is the moderation side of the review workflow
type AdminService interface {
	Moderate(ctx context.Context, reviewID uuid.UUID, status domain.ReviewStatus) (*domain.Review, error)
	ListForAdmin(ctx context.Context, status domain.ReviewStatus, limit, offset int) ([]*domain.AdminReview, error)
	ListFlags(ctx context.Context, status domain.FlagStatus, limit, offset int) ([]*domain.ReviewFlag, error)
}

// AdminHandler handles moderation requests
type AdminHandler struct {
	service AdminService
	logger  *logger.Logger
}

// NewAdminHandler creates a new moderation handler
func NewAdminHandler(service AdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  log,
	}
}

// ModerateRequest represents a moderation decision
type ModerateRequest struct {
	Status string `json:"status"`
}

// Moderate handles PUT /api/v1/reviews/:id/moderation
// @Summary Approve or reject a review
// @Description Pending flags are resolved on rejection and dismissed on approval.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Param decision body ModerateRequest true "approved or rejected"
// @Success 200 {object} map[string]interface{} "Moderated review"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Administrators only"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id}/moderation [put]
func (h *AdminHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	id, err := request.UUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req ModerateRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	moderated, err := h.service.Moderate(r.Context(), id, domain.ReviewStatus(req.Status))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, moderated)
}

// ListReviews handles GET /api/v1/admin/reviews
// @Summary Moderation queue
// @Description Reviews across products, most-flagged first, optionally filtered by status.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param limit query int false "Number of items per page (max 200)" default(50)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Reviews"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Administrators only"
// @Router /admin/reviews [get]
func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	status := domain.ReviewStatus(r.URL.Query().Get("status"))
	q := request.PageQuery(r, 50, 200)

	reviews, err := h.service.ListForAdmin(r.Context(), status, q.Limit, q.Offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, reviews)
}

// ListFlags handles GET /api/v1/admin/flags
// @Summary List review flags
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending (default), resolved or dismissed"
// @Param limit query int false "Number of items per page (max 200)" default(50)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Flags"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Administrators only"
// @Router /admin/flags [get]
func (h *AdminHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	status := domain.FlagStatus(r.URL.Query().Get("status"))
	q := request.PageQuery(r, 50, 200)

	flags, err := h.service.ListFlags(r.Context(), status, q.Limit, q.Offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, flags)
}
