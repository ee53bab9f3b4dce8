package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hadirot/functions/internal/auth"
	"github.com/hadirot/functions/internal/pkg/httpretry"
)

// SessionClient verifies caller sessions using the public anon key.
// Every call carries the caller's own token, so data API reads are subject
// to row level security exactly as they would be from the browser.
type SessionClient struct {
	t            transport
	profileTable string
	now          func() time.Time
}

// NewSessionClient creates a SessionClient.
func NewSessionClient(baseURL, anonKey, profileTable string, httpClient httpretry.HTTPDoer) (*SessionClient, error) {
	t, err := newTransport(baseURL, anonKey, httpClient)
	if err != nil {
		return nil, err
	}
	if profileTable == "" {
		profileTable = "profiles"
	}
	return &SessionClient{t: t, profileTable: profileTable, now: time.Now}, nil
}

// GetUser resolves the account behind an access token.
// Tokens the provider refuses, and JWTs whose exp has passed, yield
// ErrInvalidToken.
func (c *SessionClient) GetUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if err := auth.CheckExpiry(token, c.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	body, err := c.t.do(ctx, http.MethodGet, "/auth/v1/user", token, nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, apiErr)
		}
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("supabase: failed to parse user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}

	return &user, nil
}

// IsAdmin reads the is_admin flag of userID's profile with the caller's
// token. A missing profile row reads as false.
func (c *SessionClient) IsAdmin(ctx context.Context, token, userID string) (bool, error) {
	q := url.Values{}
	q.Set("select", "id,is_admin")
	q.Set("id", "eq."+userID)
	q.Set("limit", "1")

	body, err := c.t.do(ctx, http.MethodGet, "/rest/v1/"+url.PathEscape(c.profileTable)+"?"+q.Encode(), token, nil, nil)
	if err != nil {
		return false, fmt.Errorf("failed to load profile: %w", err)
	}

	var rows []Profile
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("supabase: failed to parse profile: %w", err)
	}
	if len(rows) == 0 {
		return false, nil
	}

	return rows[0].IsAdmin, nil
}
