// Package supabase talks to the identity provider's Auth (GoTrue) and data
// (PostgREST) APIs through two separately scoped handles: SessionClient,
// which only ever pairs the public anon key with a caller's own token, and
// AdminClient, which holds the service-role key for privileged operations.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hadirot/functions/internal/pkg/httpretry"
)

// transport holds what both handles share: base URL, api key and the
// outbound HTTP client. It is never exported so neither handle can borrow
// the other's key.
type transport struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

func newTransport(baseURL, apiKey string, httpClient httpretry.HTTPDoer) (transport, error) {
	if baseURL == "" || apiKey == "" {
		return transport{}, ErrNotConfigured
	}
	if httpClient == nil {
		httpClient = httpretry.NewRetryClient(nil, 0)
	}
	return transport{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

// do sends a request and returns the body of a 2xx response.
// Non-2xx responses are returned as *APIError.
func (t transport) do(ctx context.Context, method, path, bearer string, payload interface{}, header http.Header) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("supabase: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("supabase: failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", t.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	return body, nil
}
