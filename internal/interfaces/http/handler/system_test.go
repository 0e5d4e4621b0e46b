package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveSystem(h *SystemHandler, path string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/system/info", h.GetSystemInfo)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("gym-reports", "1.2.0", nil)

	w := serveSystem(h, "/system/info")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "gym-reports", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		h := NewSystemHandler("gym-reports", "dev", pingerFunc(func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil
		}))
		w := serveSystem(h, "/health")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decodeResponse(t, w).Data.(map[string]any)["database"])
	})

	t.Run("database down", func(t *testing.T) {
		h := NewSystemHandler("gym-reports", "dev", pingerFunc(func(context.Context) error { return assert.AnError }))
		w := serveSystem(h, "/health")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "degraded", data["status"])
		assert.Equal(t, "unavailable", data["database"])
	})

	t.Run("no database", func(t *testing.T) {
		w := serveSystem(NewSystemHandler("gym-reports", "dev", nil), "/health")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "disabled", decodeResponse(t, w).Data.(map[string]any)["database"])
	})
}
