package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/interfaces/http/dto"
)

// RequireRole lets the request through only for the listed roles.
// It must run after the JWT middleware.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return requireRole(func(r identity.Role) bool {
		return slices.Contains(roles, r)
	})
}

// RequireReportAccess admits staff allowed to generate and download reports
func RequireReportAccess() gin.HandlerFunc {
	return requireRole(identity.Role.CanGenerateReports)
}

func requireRole(allowed func(identity.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTClaims(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !allowed(GetJWTRole(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient role for this operation", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
