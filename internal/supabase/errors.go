package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Sentinel errors returned by the identity clients.
var (
	// ErrInvalidToken is returned when the provider rejects a session token.
	ErrInvalidToken = errors.New("supabase: token is invalid or expired")

	// ErrMissingActionLink is returned when generate_link succeeds without
	// returning a link.
	ErrMissingActionLink = errors.New("supabase: response did not include an action link")

	// ErrNotConfigured is returned by constructors when a URL or key is empty.
	ErrNotConfigured = errors.New("supabase: client is not configured")
)

// rateLimitPattern matches GoTrue's cooldown message, e.g.
// "For security purposes, you can only request this after 42 seconds."
var rateLimitPattern = regexp.MustCompile(`(?i)request (this|again) after`)

// APIError represents a non-2xx response from the identity provider.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: API error %d [%s]: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: API error %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the provider refused the call because of a
// rate limit, either by status code or by its cooldown message.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || rateLimitPattern.MatchString(e.Message)
}

// AsRateLimit returns the provider message when err is a rate-limit APIError.
func AsRateLimit(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RateLimited() {
		return apiErr.Message, true
	}
	return "", false
}

// errorBody covers the envelopes GoTrue and PostgREST use. "code" is left
// out because GoTrue sends a number and PostgREST a string.
type errorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
}

func parseAPIError(statusCode int, body []byte) *APIError {
	var eb errorBody
	// Partial decodes are fine: a type mismatch on one field still fills the others.
	_ = json.Unmarshal(body, &eb)

	msg := firstNonEmpty(eb.Msg, eb.Message, eb.ErrorDescription, eb.Error)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}

	code := eb.ErrorCode
	if code == "" && eb.Error != "" && eb.Error != msg {
		code = eb.Error
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    msg,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
