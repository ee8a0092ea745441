package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the storefront catalogue
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Price         float64   `json:"price" db:"price"`
	ImageURL      *string   `json:"image_url,omitempty" db:"image_url"`
	AverageRating float64   `json:"average_rating" db:"average_rating"`
	ReviewCount   int       `json:"review_count" db:"review_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List retrieves a paginated list of products, newest first
	List(ctx context.Context, limit, offset int) ([]*Product, error)

	// Count returns the total number of products
	Count(ctx context.Context) (int, error)
}
