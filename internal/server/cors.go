package server

import (
	"net/http"

	"smartkanban/internal/auth"

	"github.com/gorilla/handlers"
)

// newCORS allows credentialed requests from the configured origins. With no
// origins configured every origin is reflected back.
func newCORS(allowed []string) func(http.Handler) http.Handler {
	opts := []handlers.CORSOption{
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", auth.AltTokenHeader}),
		handlers.AllowCredentials(),
	}
	if len(allowed) > 0 {
		opts = append(opts, handlers.AllowedOrigins(allowed))
	} else {
		opts = append(opts, handlers.AllowedOriginValidator(func(string) bool { return true }))
	}
	return handlers.CORS(opts...)
}
