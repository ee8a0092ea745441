package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/northernchefs/storefront/internal/domain"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// MockAdminService is a mock implementation of AdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Moderate(ctx context.Context, reviewID uuid.UUID, status domain.ReviewStatus) (*domain.Review, error) {
	args := m.Called(ctx, reviewID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockAdminService) ListForAdmin(ctx context.Context, status domain.ReviewStatus, limit, offset int) ([]*domain.AdminReview, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AdminReview), args.Error(1)
}

func (m *MockAdminService) ListFlags(ctx context.Context, status domain.FlagStatus, limit, offset int) ([]*domain.ReviewFlag, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewFlag), args.Error(1)
}

func TestAdminHandler_Moderate(t *testing.T) {
	svc := new(MockAdminService)
	handler := NewAdminHandler(svc, logger.New("test"))

	id := uuid.New()
	svc.On("Moderate", mock.Anything, id, domain.ReviewRejected).
		Return(&domain.Review{ID: id, Status: domain.ReviewRejected}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"status":"rejected"}`)), "id", id.String())
	w := httptest.NewRecorder()

	handler.Moderate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "rejected", data["status"])
}

func TestAdminHandler_Moderate_Forbidden(t *testing.T) {
	svc := new(MockAdminService)
	handler := NewAdminHandler(svc, logger.New("test"))

	id := uuid.New()
	svc.On("Moderate", mock.Anything, id, domain.ReviewApproved).Return(nil, domain.ErrForbidden)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"status":"approved"}`)), "id", id.String())
	w := httptest.NewRecorder()

	handler.Moderate(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminHandler_ListReviews_PassesFilter(t *testing.T) {
	svc := new(MockAdminService)
	handler := NewAdminHandler(svc, logger.New("test"))

	svc.On("ListForAdmin", mock.Anything, domain.ReviewPending, 25, 50).
		Return([]*domain.AdminReview{{ProductName: "Tourtière", PendingFlags: 3}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reviews?status=pending&limit=25&offset=50", nil)
	w := httptest.NewRecorder()

	handler.ListReviews(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 1)
	svc.AssertExpectations(t)
}

func TestAdminHandler_ListFlags_Unauthenticated(t *testing.T) {
	svc := new(MockAdminService)
	handler := NewAdminHandler(svc, logger.New("test"))

	svc.On("ListFlags", mock.Anything, domain.FlagStatus(""), 50, 0).Return(nil, domain.ErrUnauthenticated)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/flags", nil)
	w := httptest.NewRecorder()

	handler.ListFlags(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
