package handler_test

import (
	"net/http"
	"testing"
	"time"

	"smartkanban/internal/auth"
	"smartkanban/internal/handler"
	"smartkanban/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupShared(t *testing.T) *gin.Engine {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	shared := auth.NewSharedSecret("team", string(hash), auth.NewTokenIssuer("test-secret", time.Hour))

	r := gin.New()
	r.POST("/login", handler.NewSharedLoginHandler(shared, logging.Discard()).Login)
	return r
}

func TestSharedLogin(t *testing.T) {
	router := setupShared(t)

	ok := performRequest(router, http.MethodPost, "/login", handler.SharedLoginRequest{Username: "team", Password: "hunter22"}, nil)
	bad := performRequest(router, http.MethodPost, "/login", handler.SharedLoginRequest{Username: "team", Password: "nope"}, nil)
	missing := performRequest(router, http.MethodPost, "/login", map[string]string{"username": "team"}, nil)

	require.Equal(t, http.StatusOK, ok.Code)
	assert.NotEmpty(t, decode[handler.TokenResponse](t, ok).Token)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, "Invalid credentials", errorOf(t, bad))
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "Username and password required", errorOf(t, missing))
}
