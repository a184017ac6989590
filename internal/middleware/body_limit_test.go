package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smartkanban/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupLimitedRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.BodyLimit(limit))
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": middleware.BodyTooLargeMessage})
			return
		}
		c.String(http.StatusOK, "%d", len(body))
	})
	return r
}

func TestBodyLimit_AllowsSmallBodies(t *testing.T) {
	router := setupLimitedRouter(16)
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hello"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "5", resp.Body.String())
}

func TestBodyLimit_RejectsDeclaredLength(t *testing.T) {
	router := setupLimitedRouter(16)
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 17)))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Request body too large")
}

func TestBodyLimit_CapsChunkedBodies(t *testing.T) {
	router := setupLimitedRouter(16)
	req := httptest.NewRequest(http.MethodPost, "/echo", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
	req.ContentLength = -1

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Request body too large")
}
