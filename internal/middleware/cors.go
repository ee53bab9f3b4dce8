package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// AllowedHeaders is the header set browsers may send to the functions
var AllowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// CORS answers preflight requests with an open-origin policy
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: AllowedHeaders,
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	})
}
