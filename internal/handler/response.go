package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hadirot/functions/internal/logger"
	"github.com/hadirot/functions/internal/middleware"
)

// errorResponse is the JSON body of every failed call
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// preflight answers OPTIONS with a plain "ok" and rejects anything that is
// not a POST. It reports whether the handler should continue.
func preflight(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodPost:
		return true
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(middleware.AllowedHeaders, ", "))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
	return false
}

// requestLog returns a logger tagged with the request ID
func (h *Handler) requestLog(r *http.Request) *logger.Logger {
	if id := middleware.GetRequestID(r.Context()); id != "" {
		return h.log.WithRequestID(id)
	}
	return h.log
}
