package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hadirot/functions/internal/pkg/httpretry"
)

// AdminClient performs privileged user operations with the service-role
// key. It has no way to act on behalf of a caller token.
type AdminClient struct {
	t transport
}

// NewAdminClient creates an AdminClient.
func NewAdminClient(baseURL, serviceRoleKey string, httpClient httpretry.HTTPDoer) (*AdminClient, error) {
	t, err := newTransport(baseURL, serviceRoleKey, httpClient)
	if err != nil {
		return nil, err
	}
	return &AdminClient{t: t}, nil
}

// DeleteUser permanently removes an account. Dependent rows are removed by
// the provider's own cascade rules.
func (c *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("supabase: user ID is required")
	}
	if _, err := c.t.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(userID), c.t.apiKey, nil, nil); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	return nil
}

// GenerateRecoveryLink returns a password recovery link for email.
// generate_link only mints the link; unlike /recover it never sends the
// provider's own email, so the caller's branded message is the only one
// the user receives.
func (c *AdminClient) GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	req := generateLinkRequest{
		Type:       LinkTypeRecovery,
		Email:      email,
		RedirectTo: redirectTo,
	}

	body, err := c.t.do(ctx, http.MethodPost, "/auth/v1/admin/generate_link", c.t.apiKey, req, nil)
	if err != nil {
		return "", err
	}

	var resp generateLinkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("supabase: failed to parse generate_link response: %w", err)
	}

	link := resp.link()
	if link == "" {
		return "", ErrMissingActionLink
	}
	return link, nil
}
