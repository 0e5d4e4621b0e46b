package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/infrastructure/auth"
	"github.com/gym/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

// stubAuthenticator accepts "good-token" and fails everything else with err
type stubAuthenticator struct {
	claims *auth.Claims
	err    error
	calls  int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	s.calls++
	if token == "good-token" {
		return s.claims, nil
	}
	return nil, s.err
}

func staffClaims(role identity.Role) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"},
		UserID:           42,
		Email:            "anna@gym.local",
		Role:             role,
	}
}

func newJWTRouter(a Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(nil))
	cfg := DefaultJWTConfig(a)
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetJWTUserID(c),
			"email":   GetJWTEmail(c),
			"role":    GetJWTRole(c),
		})
	}
	router.GET("/api/v1/reports/types", handler)
	router.GET("/health", handler)
	router.GET("/swagger/index.html", handler)
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	a := &stubAuthenticator{claims: staffClaims(identity.RoleEmployee)}
	router := newJWTRouter(a)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/types", nil)
	req.Header.Set(AuthHeaderKey, "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42,"email":"anna@gym.local","role":"employee"}`, w.Body.String())
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		err      error
		wantCode string
	}{
		{"missing header", "", nil, dto.ErrCodeTokenInvalid},
		{"wrong scheme", "Basic abc", nil, dto.ErrCodeTokenInvalid},
		{"empty token", "Bearer   ", nil, dto.ErrCodeTokenInvalid},
		{"expired", "Bearer old", auth.ErrExpiredToken, dto.ErrCodeTokenExpired},
		{"revoked", "Bearer gone", auth.ErrTokenRevoked, dto.ErrCodeTokenRevoked},
		{"bad signature", "Bearer forged", auth.ErrInvalidToken, dto.ErrCodeTokenInvalid},
		{"blacklist down", "Bearer any", assert.AnError, dto.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newJWTRouter(&stubAuthenticator{err: tt.err})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/types", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	a := &stubAuthenticator{err: auth.ErrInvalidToken}
	router := newJWTRouter(a)

	for _, path := range []string{"/health", "/swagger/index.html"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Zero(t, a.calls)
}

func TestJWTAuthMiddleware_Logger(t *testing.T) {
	a := &stubAuthenticator{err: auth.ErrInvalidToken}
	router := gin.New()
	cfg := DefaultJWTConfig(a)
	cfg.Logger = zaptest.NewLogger(t)
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/private", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(AuthHeaderKey, "Bearer bad")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetters_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Zero(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTEmail(c))
	assert.Empty(t, GetJWTRole(c))
}
