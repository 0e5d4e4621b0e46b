package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gym/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func serveSwagger(cfg SwaggerConfig, remoteAddr string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) { c.String(http.StatusOK, "docs") })

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		w := serveSwagger(SwaggerConfig{Enabled: false}, "10.0.0.1:1234")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("open without whitelist", func(t *testing.T) {
		w := serveSwagger(SwaggerConfig{Enabled: true}, "203.0.113.9:1234")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8", "not-an-ip"}}

	t.Run("exact IP", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serveSwagger(cfg, "127.0.0.1:5000").Code)
	})

	t.Run("CIDR", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serveSwagger(cfg, "10.20.30.40:5000").Code)
	})

	t.Run("outside whitelist", func(t *testing.T) {
		w := serveSwagger(cfg, "192.168.1.10:5000")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeResponse(t, w).Error.Code)
	})
}

func TestIsIPAllowed(t *testing.T) {
	ips, nets := parseAllowList([]string{" 192.168.0.1 ", "2001:db8::/32", "10.0.0.0/33"})
	assert.Len(t, ips, 1)
	assert.Len(t, nets, 1)

	assert.True(t, isIPAllowed(net.ParseIP("192.168.0.1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("2001:db8::1"), ips, nets))
	assert.False(t, isIPAllowed(net.ParseIP("10.0.0.1"), ips, nets))
	assert.False(t, isIPAllowed(nil, ips, nets))
}
