package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northernchefs/storefront/internal/auth"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

func sessionEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := auth.UserIDFromContext(r.Context()); ok {
			w.Header().Set("X-User", id.String())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSession(t *testing.T) {
	tokens := auth.NewTokens("test-secret", "storefront")
	userID := uuid.New()
	valid, err := tokens.Issue(userID, "marie@example.com", time.Hour)
	require.NoError(t, err)

	bodyRead := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bodyRead = true
		w.WriteHeader(http.StatusCreated)
	})
	handler := Authenticate(tokens, logger.New("test"))(RequireSession(next))

	t.Run("anonymous with a bad body", func(t *testing.T) {
		bodyRead = false
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader("{}"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())
		assert.False(t, bodyRead)
	})

	t.Run("signed in", func(t *testing.T) {
		bodyRead = false
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader("{}"))
		req.Header.Set("Authorization", "Bearer "+valid)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, bodyRead)
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokens("test-secret", "storefront")
	userID := uuid.New()
	valid, err := tokens.Issue(userID, "marie@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := tokens.Issue(userID, "marie@example.com", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid token", "Bearer " + valid, http.StatusOK, userID.String()},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, userID.String()},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, ""},
		{"missing token", "Bearer", http.StatusUnauthorized, ""},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, ""},
	}

	handler := Authenticate(tokens, logger.New("test"))(sessionEcho())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantUser, w.Header().Get("X-User"))
		})
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limit, err := RateLimit("2-M", false, logger.New("test"))
	require.NoError(t, err)

	handler := limit(sessionEcho())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", nil)
		req.RemoteAddr = ip + ":51234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimit_ForwardedFor(t *testing.T) {
	send := func(handler http.Handler, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", nil)
		req.RemoteAddr = "10.0.0.9:51234"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("ignored without a trusted proxy", func(t *testing.T) {
		limit, err := RateLimit("2-M", false, logger.New("test"))
		require.NoError(t, err)
		handler := limit(sessionEcho())

		assert.Equal(t, http.StatusOK, send(handler, "203.0.113.1"))
		assert.Equal(t, http.StatusOK, send(handler, "203.0.113.2"))
		assert.Equal(t, http.StatusTooManyRequests, send(handler, "203.0.113.3"))
	})

	t.Run("identifies clients behind a trusted proxy", func(t *testing.T) {
		limit, err := RateLimit("2-M", true, logger.New("test"))
		require.NoError(t, err)
		handler := limit(sessionEcho())

		assert.Equal(t, http.StatusOK, send(handler, "203.0.113.1"))
		assert.Equal(t, http.StatusOK, send(handler, "203.0.113.1"))
		assert.Equal(t, http.StatusTooManyRequests, send(handler, "203.0.113.1"))
		assert.Equal(t, http.StatusOK, send(handler, "203.0.113.2"))
	})
}

func TestRateLimit_InvalidFormat(t *testing.T) {
	_, err := RateLimit("lots", false, logger.New("test"))
	assert.Error(t, err)
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.New("test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestLogger_PassesThrough(t *testing.T) {
	handler := Logger(logger.New("test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
