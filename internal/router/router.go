package router

import (
	"net/http"

	"github.com/hadirot/functions/internal/handler"
	"github.com/hadirot/functions/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	// Health check (no auth required)
	mux.HandleFunc("GET /health", h.Health)

	// Functions check the method themselves so OPTIONS and 405 bodies
	// match what browser clients expect.
	mux.HandleFunc("/functions/v1/delete-user", h.DeleteUser)
	mux.HandleFunc("/functions/v1/send-email", h.SendEmail)

	// Apply middleware stack
	var handler http.Handler = mux

	// CORS (any origin)
	handler = mw.CORS()(handler)

	// Request logging
	handler = mw.Logger(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
