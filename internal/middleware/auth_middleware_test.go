package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartkanban/internal/auth"
	"smartkanban/internal/middleware"
	"smartkanban/internal/repository"
	"smartkanban/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

const jwtSecret = "test-secret-key"

func setupRouter(strategy auth.Strategy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Protected route
	protected := r.Group("/protected")
	protected.Use(middleware.AuthMiddleware(strategy))

	protected.GET("/resource", func(c *gin.Context) {
		userID, exists := c.Get(middleware.UserIDKey)
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Access granted",
			"user_id": userID,
			"owner":   middleware.ScopeFrom(c).OwnerID,
		})
	})

	return r
}

func accountStrategy() *auth.Account {
	store := repository.NewStore(storage.NewMemory(), nil)
	users := repository.NewUserRepository(storage.NewMemory(), nil)
	return auth.NewAccount(users, store, auth.NewTokenIssuer(jwtSecret, time.Hour), time.Hour, nil)
}

func generateTestToken(userID uuid.UUID, secret string) string {
	token, _ := auth.NewTokenIssuer(secret, time.Hour).WithAudience(auth.AudienceAccount).GenerateToken(userID.String(), "user@example.com")
	return token
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	// Arrange
	router := setupRouter(accountStrategy())
	userID := uuid.New()
	token := generateTestToken(userID, jwtSecret)

	req, _ := http.NewRequest("GET", "/protected/resource", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Access granted")
	assert.Contains(t, resp.Body.String(), `"owner":"`+userID.String()+`"`)
}

func TestAuthMiddleware_NoAuthHeader(t *testing.T) {
	// Arrange
	router := setupRouter(accountStrategy())
	req, _ := http.NewRequest("GET", "/protected/resource", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Authorization header is required")
}

func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	// Arrange
	router := setupRouter(accountStrategy())
	req, _ := http.NewRequest("GET", "/protected/resource", nil)
	req.Header.Set("Authorization", "InvalidFormat token123")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Authorization header format must be Bearer {token}")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	// Arrange
	router := setupRouter(accountStrategy())
	req, _ := http.NewRequest("GET", "/protected/resource", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid or expired token")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	// Arrange
	router := setupRouter(accountStrategy())
	claims := jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(jwtSecret))

	req, _ := http.NewRequest("GET", "/protected/resource", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid or expired token")
}

func TestAuthMiddleware_SharedSecretAltHeader(t *testing.T) {
	// Arrange
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	shared := auth.NewSharedSecret("team", string(hash), auth.NewTokenIssuer(jwtSecret, time.Hour))
	token, err := shared.Login("team", "hunter22")
	assert.NoError(t, err)
	router := setupRouter(shared)

	req, _ := http.NewRequest("GET", "/protected/resource", nil)
	req.Header.Set(auth.AltTokenHeader, token)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"owner":""`)
}

func TestAuthMiddleware_OpenModeNeedsNoHeader(t *testing.T) {
	router := setupRouter(auth.Open{})
	req, _ := http.NewRequest("GET", "/protected/resource", nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAuthMiddleware_AccountRejectsSharedToken(t *testing.T) {
	// Arrange
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	shared := auth.NewSharedSecret("team", string(hash), auth.NewTokenIssuer(jwtSecret, time.Hour))
	token, err := shared.Login("team", "hunter22")
	assert.NoError(t, err)
	router := setupRouter(accountStrategy())

	req, _ := http.NewRequest("GET", "/protected/resource", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
