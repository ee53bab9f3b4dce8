package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirot/functions/internal/auth"
)

func newSession(t *testing.T, url string) *SessionClient {
	t.Helper()
	c, err := NewSessionClient(url, "anon-key", "", nil)
	require.NoError(t, err)
	return c
}

func newAdmin(t *testing.T, url string) *AdminClient {
	t.Helper()
	c, err := NewAdminClient(url, "service-key", nil)
	require.NoError(t, err)
	return c
}

func TestNewClientsRequireConfig(t *testing.T) {
	_, err := NewSessionClient("", "anon", "", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewAdminClient("https://x.supabase.co", "", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGetUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "a@x.com"})
	}))
	defer server.Close()

	user, err := newSession(t, server.URL).GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestGetUserRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":401,"error_code":"bad_jwt","msg":"invalid JWT"}`))
	}))
	defer server.Close()

	_, err := newSession(t, server.URL).GetUser(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserExpiredJWTSkipsNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newSession(t, server.URL).GetUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, called)
}

func TestGetUserUpstreamFailureIsNotInvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad request"}`))
	}))
	defer server.Close()

	_, err := newSession(t, server.URL).GetUser(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidToken))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "admin", body: `[{"id":"u1","is_admin":true}]`, want: true},
		{name: "not admin", body: `[{"id":"u1","is_admin":false}]`, want: false},
		{name: "null flag", body: `[{"id":"u1","is_admin":null}]`, want: false},
		{name: "no profile", body: `[]`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
				assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
				assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
				assert.Equal(t, "anon-key", r.Header.Get("apikey"))
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			got, err := newSession(t, server.URL).IsAdmin(context.Background(), "user-token", "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeleteUser(t *testing.T) {
	var gotPath, gotAuth, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	require.NoError(t, newAdmin(t, server.URL).DeleteUser(context.Background(), "u2"))
	assert.Equal(t, "/auth/v1/admin/users/u2", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "service-key", gotKey)
}

func TestDeleteUserFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":404,"error_code":"user_not_found","msg":"User not found"}`))
	}))
	defer server.Close()

	err := newAdmin(t, server.URL).DeleteUser(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "user_not_found", apiErr.Code)
	assert.Equal(t, "User not found", apiErr.Message)
}

func TestGenerateRecoveryLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/generate_link", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		var req generateLinkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, LinkTypeRecovery, req.Type)
		assert.Equal(t, "a@x.com", req.Email)
		assert.Equal(t, "https://hadirot.com/auth", req.RedirectTo)

		w.Write([]byte(`{"id":"u1","action_link":"https://x.supabase.co/auth/v1/verify?token=abc&type=recovery"}`))
	}))
	defer server.Close()

	link, err := newAdmin(t, server.URL).GenerateRecoveryLink(context.Background(), "a@x.com", "https://hadirot.com/auth")
	require.NoError(t, err)
	assert.Equal(t, "https://x.supabase.co/auth/v1/verify?token=abc&type=recovery", link)
}

func TestGenerateRecoveryLinkNestedProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties":{"action_link":"https://link"}}`))
	}))
	defer server.Close()

	link, err := newAdmin(t, server.URL).GenerateRecoveryLink(context.Background(), "a@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, "https://link", link)
}

func TestGenerateRecoveryLinkMissingLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u1"}`))
	}))
	defer server.Close()

	_, err := newAdmin(t, server.URL).GenerateRecoveryLink(context.Background(), "a@x.com", "")
	assert.ErrorIs(t, err, ErrMissingActionLink)
}

func TestGenerateRecoveryLinkRateLimited(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		msg    string
	}{
		{
			name:   "429 status",
			status: http.StatusTooManyRequests,
			body:   `{"code":429,"error_code":"over_email_send_rate_limit","msg":"email rate limit exceeded"}`,
			msg:    "email rate limit exceeded",
		},
		{
			name:   "cooldown message",
			status: http.StatusBadRequest,
			body:   `{"msg":"For security purposes, you can only request this after 51 seconds."}`,
			msg:    "For security purposes, you can only request this after 51 seconds.",
		},
		{
			name:   "request again after",
			status: http.StatusBadRequest,
			body:   `{"error":"invalid_request","error_description":"Please request again after 60 seconds"}`,
			msg:    "Please request again after 60 seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newAdmin(t, server.URL).GenerateRecoveryLink(context.Background(), "a@x.com", "")
			msg, ok := AsRateLimit(err)
			assert.True(t, ok)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestParseAPIErrorFallbacks(t *testing.T) {
	e := parseAPIError(http.StatusBadGateway, []byte("upstream down"))
	assert.Equal(t, "upstream down", e.Message)
	assert.False(t, e.RateLimited())

	e = parseAPIError(http.StatusInternalServerError, nil)
	assert.Equal(t, "Internal Server Error", e.Message)

	e = parseAPIError(http.StatusBadRequest, []byte(`{"code":"PGRST100","message":"bad filter"}`))
	assert.Equal(t, "bad filter", e.Message)
}
