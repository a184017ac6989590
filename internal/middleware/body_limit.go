package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit is the largest request body the API accepts.
const DefaultBodyLimit int64 = 50 << 10

// BodyTooLargeMessage is the error reported for oversized request bodies.
const BodyTooLargeMessage = "Request body too large"

// BodyLimit rejects bodies that declare a length over limit and caps the
// rest, so a handler reading past limit gets an *http.MaxBytesError.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": BodyTooLargeMessage})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
