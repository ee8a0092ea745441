package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestService_GetByID_Success(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewService(repo, logger.New("test"))

	product := &domain.Product{ID: uuid.New(), Name: "Maple Butter Tart", Price: 4.5, AverageRating: 4.7, ReviewCount: 3}
	repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	got, err := svc.GetByID(context.Background(), product.ID)

	require.NoError(t, err)
	assert.Equal(t, product, got)
	repo.AssertExpectations(t)
}

func TestService_GetByID_NotFound(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewService(repo, logger.New("test"))

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := svc.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_List_ClampsPagination(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		wantLimit     int
		wantOffset    int
	}{
		{"defaults", 0, 0, defaultPageSize, 0},
		{"too large", 500, 10, defaultPageSize, 10},
		{"negative offset", 5, -3, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			svc := NewService(repo, logger.New("test"))

			products := []*domain.Product{{ID: uuid.New(), Name: "Tourtière"}}
			repo.On("List", mock.Anything, tt.wantLimit, tt.wantOffset).Return(products, nil)
			repo.On("Count", mock.Anything).Return(12, nil)

			page, err := svc.List(context.Background(), tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Equal(t, products, page.Products)
			assert.Equal(t, 12, page.Total)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.Equal(t, tt.wantOffset, page.Offset)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_List_CountFailure(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewService(repo, logger.New("test"))

	repo.On("List", mock.Anything, defaultPageSize, 0).Return([]*domain.Product{}, nil)
	repo.On("Count", mock.Anything).Return(0, assert.AnError)

	_, err := svc.List(context.Background(), 0, 0)

	assert.ErrorIs(t, err, assert.AnError)
}
