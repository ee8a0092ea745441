package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/northernchefs/storefront/internal/delivery/http/request"
	"github.com/northernchefs/storefront/internal/delivery/http/response"
	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
	"github.com/northernchefs/storefront/internal/usecase/product"
)

// ProductService is the read-only catalogue
type ProductService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) (*product.Page, error)
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service ProductService
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// GetByID handles GET /api/v1/products/:id
// @Summary Get a product by ID
// @Description Get a product including its average rating and review count
// @Tags Products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.UUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, p)
}

// List handles GET /api/v1/products
// @Summary List products
// @Description Get a paginated list of products, newest first
// @Tags Products
// @Produce json
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := request.PageQuery(r, 20, 100)

	page, err := h.service.List(r.Context(), q.Limit, q.Offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Paginated(w, page.Products, page.Total, page.Limit, page.Offset)
}
