package middleware

import (
	"errors"
	"net/http"

	"smartkanban/internal/auth"
	"smartkanban/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	// IdentityKey holds the auth.Identity of the caller.
	IdentityKey = "identity"
	// UserIDKey holds the caller's user id, empty outside account mode.
	UserIDKey = "userID"
	// ScopeKey holds the repository.Scope the caller may see.
	ScopeKey = "scope"
)

// AuthMiddleware authenticates the request with the configured strategy and
// stores the caller's identity and scope on the context.
func AuthMiddleware(strategy auth.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strategy.Authenticate(c.Request)
		if err != nil {
			msg := "Invalid or expired token"
			var repoErr *repository.Error
			if errors.As(err, &repoErr) {
				msg = repoErr.Message
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(IdentityKey, id)
		c.Set(UserIDKey, id.UserID)
		c.Set(ScopeKey, strategy.Scope(id))
		c.Next()
	}
}

// ScopeFrom returns the scope set by AuthMiddleware, or the global scope
// when the route is not behind it.
func ScopeFrom(c *gin.Context) repository.Scope {
	if v, ok := c.Get(ScopeKey); ok {
		if scope, ok := v.(repository.Scope); ok {
			return scope
		}
	}
	return repository.Scope{}
}

func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
