package product

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is one page of the catalogue
type Page struct {
	Products []*domain.Product
	Total    int
	Limit    int
	Offset   int
}

// Service serves the read-only product catalogue. Ratings on products are
// maintained by the rating worker.
type Service struct {
	repo   domain.ProductRepository
	logger *logger.Logger
}

// NewService creates a new product service
func NewService(repo domain.ProductRepository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

// GetByID retrieves a product by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %s", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	return product, nil
}

// List returns a page of products, newest first
func (s *Service) List(ctx context.Context, limit, offset int) (*Page, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count products", err)
		return nil, err
	}

	return &Page{Products: products, Total: total, Limit: limit, Offset: offset}, nil
}
