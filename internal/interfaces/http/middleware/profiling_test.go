package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_LabelsRequestContext(t *testing.T) {
	var route, method string
	router := gin.New()
	router.Use(Profiling(true))
	router.GET("/api/v1/reports/files/:name", func(c *gin.Context) {
		route, _ = pprof.Label(c.Request.Context(), ProfilingLabelRoute)
		method, _ = pprof.Label(c.Request.Context(), ProfilingLabelMethod)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/files/raport.pdf", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/reports/files/:name", route)
	assert.Equal(t, http.MethodGet, method)
}

func TestProfiling_Disabled(t *testing.T) {
	var labelled bool
	router := gin.New()
	router.Use(Profiling(false))
	router.GET("/health", func(c *gin.Context) {
		_, labelled = pprof.Label(c.Request.Context(), ProfilingLabelRoute)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, labelled)
}

func TestProfiling_UnmatchedRoute(t *testing.T) {
	router := gin.New()
	router.Use(Profiling(true))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
