package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/northernchefs/storefront/internal/delivery/http/request"
	"github.com/northernchefs/storefront/internal/delivery/http/response"
	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
	"github.com/northernchefs/storefront/internal/usecase/review"
)

// ReviewService is the review workflow as seen by the storefront
type ReviewService interface {
	Create(ctx context.Context, in review.CreateInput) (*domain.ReviewDetails, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ReviewDetails, error)
	RatingStats(ctx context.Context, productID uuid.UUID) (*domain.RatingStats, error)
	Delete(ctx context.Context, reviewID uuid.UUID) error
	MarkHelpful(ctx context.Context, reviewID uuid.UUID, isHelpful bool) (*domain.VoteResult, error)
	AddReply(ctx context.Context, in review.ReplyInput) (*domain.ReplyDetails, error)
	Flag(ctx context.Context, in review.FlagInput) (*domain.ReviewFlag, error)
}

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service ReviewService
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// CreateReviewRequest represents the request body for submitting a review
type CreateReviewRequest struct {
	ProductID string   `json:"product_id"`
	Rating    float64  `json:"rating"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Images    []string `json:"images"`
}

// HelpfulRequest represents a helpfulness vote
type HelpfulRequest struct {
	IsHelpful *bool `json:"is_helpful"`
}

// ReplyRequest represents the request body for replying to a review
type ReplyRequest struct {
	Content         string `json:"content"`
	IsBusinessReply bool   `json:"is_business_reply"`
}

// FlagRequest represents the request body for flagging a review
type FlagRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/reviews
// @Summary Submit a review
// @Description Submit a review for a product with up to 10 already-hosted image URLs. One review per user and product.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param review body CreateReviewRequest true "Review details"
// @Success 201 {object} map[string]interface{} "Review created successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "Already reviewed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	created, err := h.service.Create(r.Context(), review.CreateInput{
		ProductID: productID,
		Rating:    req.Rating,
		Title:     req.Title,
		Content:   req.Content,
		Images:    req.Images,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, created)
}

// ListByProduct handles GET /api/v1/products/:id/reviews
// @Summary Get approved reviews for a product
// @Description Approved reviews, newest first, with author, images and replies. Never fails: an empty list is returned when reviews cannot be loaded.
// @Tags Reviews
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "List of reviews"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Router /products/{id}/reviews [get]
func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := request.UUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	// The service already logged the failure and handed back an empty list
	reviews, _ := h.service.ListByProduct(r.Context(), productID)
	if reviews == nil {
		reviews = []*domain.ReviewDetails{}
	}

	response.Success(w, reviews)
}

// RatingStats handles GET /api/v1/products/:id/rating
// @Summary Get rating statistics for a product
// @Description Average (one decimal), total and per-star distribution over approved reviews. Zeroed when unavailable.
// @Tags Reviews
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Rating statistics"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Router /products/{id}/rating [get]
func (h *ReviewHandler) RatingStats(w http.ResponseWriter, r *http.Request) {
	productID, err := request.UUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	stats, _ := h.service.RatingStats(r.Context(), productID)
	if stats == nil {
		stats = domain.EmptyRatingStats()
	}

	response.Success(w, stats)
}

// Delete handles DELETE /api/v1/reviews/:id
// @Summary Delete a review
// @Description Delete a review with its images, replies, flags and votes. Author or admin only.
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Success 200 {object} map[string]bool "Review deleted"
// @Failure 400 {object} map[string]string "Invalid review ID"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.UUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.OK(w)
}

// MarkHelpful handles POST /api/v1/reviews/:id/helpful
// @Summary Vote on a review's helpfulness
// @Description Casting the same vote twice withdraws it.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Param vote body HelpfulRequest true "Vote"
// @Success 200 {object} map[string]interface{} "Updated helpful count"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id}/helpful [post]
func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	id, err := request.UUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req HelpfulRequest
	if err := request.DecodeJSON(r, &req); err != nil || req.IsHelpful == nil {
		response.Error(w, http.StatusBadRequest, "is_helpful is required")
		return
	}

	result, err := h.service.MarkHelpful(r.Context(), id, *req.IsHelpful)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, result)
}

// AddReply handles POST /api/v1/reviews/:id/replies
// @Summary Reply to a review
// @Description Business replies are reserved to administrators.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Param reply body ReplyRequest true "Reply"
// @Success 201 {object} map[string]interface{} "Reply created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Only administrators can add business replies"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id}/replies [post]
func (h *ReviewHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	id, err := request.UUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req ReplyRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.service.AddReply(r.Context(), review.ReplyInput{
		ReviewID:        id,
		Content:         req.Content,
		IsBusinessReply: req.IsBusinessReply,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, reply)
}

// Flag handles POST /api/v1/reviews/:id/flags
// @Summary Flag a review for moderation
// @Description Reason is one of spam, inappropriate, offensive, fake, other. One flag per user and review.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID (UUID)"
// @Param flag body FlagRequest true "Flag"
// @Success 201 {object} map[string]interface{} "Flag created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 409 {object} map[string]string "Already flagged"
// @Router /reviews/{id}/flags [post]
func (h *ReviewHandler) Flag(w http.ResponseWriter, r *http.Request) {
	id, err := request.UUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req FlagRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flag, err := h.service.Flag(r.Context(), review.FlagInput{
		ReviewID:    id,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, flag)
}
