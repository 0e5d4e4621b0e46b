package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func serveWithRole(t *testing.T, role identity.Role, guard gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Use(JWTAuthMiddleware(&stubAuthenticator{claims: staffClaims(role)}))
	router.GET("/reports", guard, func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set(AuthHeaderKey, "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireReportAccess(t *testing.T) {
	tests := []struct {
		role identity.Role
		want int
	}{
		{identity.RoleAdmin, http.StatusOK},
		{identity.RoleEmployee, http.StatusOK},
		{identity.RoleTrainer, http.StatusForbidden},
		{identity.RoleClient, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			w := serveWithRole(t, tt.role, RequireReportAccess())
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, decodeResponse(t, w).Error.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusOK, serveWithRole(t, identity.RoleAdmin, RequireRole(identity.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, serveWithRole(t, identity.RoleEmployee, RequireRole(identity.RoleAdmin)).Code)
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	router := gin.New()
	router.GET("/reports", RequireReportAccess(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
}
