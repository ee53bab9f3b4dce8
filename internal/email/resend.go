package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hadirot/functions/internal/pkg/httpretry"
)

// ErrMissingAPIKey is returned when the Resend API key is not configured.
var ErrMissingAPIKey = errors.New("resend: API key is required")

// ResendSender implements Sender using the Resend HTTP API.
type ResendSender struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewResendSender creates a new ResendSender.
func NewResendSender(baseURL, apiKey string, httpClient httpretry.HTTPDoer) (*ResendSender, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	if httpClient == nil {
		httpClient = httpretry.NewRetryClient(nil, 0)
	}
	return &ResendSender{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// Send posts the message to /emails. Each call carries its own
// Idempotency-Key so retried attempts cannot deliver twice.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	data, err := json.Marshal(resendPayload{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("resend: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("resend: failed to read response: %w", err)
	}

	var out resendResponse
	_ = json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := out.Message
		if message == "" {
			message = strings.TrimSpace(string(body))
		}
		return "", &ProviderError{
			Provider:   "resend",
			StatusCode: resp.StatusCode,
			Invalid:    resp.StatusCode == http.StatusUnprocessableEntity,
			Message:    message,
		}
	}

	if out.ID == "" {
		return "", fmt.Errorf("resend: response did not include a message id")
	}

	return out.ID, nil
}
