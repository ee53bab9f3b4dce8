package email

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GmailConfig holds the configuration for the Gmail email sender.
type GmailConfig struct {
	// CredentialsJSON is a service account credentials JSON with
	// domain-wide delegation for SenderAddress.
	CredentialsJSON string
	// SenderAddress is the mailbox emails are sent from.
	SenderAddress string
}

// GmailSender implements Sender using the Gmail API.
type GmailSender struct {
	service *gmail.Service
}

// NewGmailSender creates a GmailSender from service account credentials,
// impersonating the sender mailbox.
func NewGmailSender(ctx context.Context, cfg GmailConfig) (*GmailSender, error) {
	if cfg.CredentialsJSON == "" {
		return nil, fmt.Errorf("gmail: credentials JSON is required")
	}
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("gmail: sender address is required")
	}

	jwtConfig, err := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to parse credentials: %w", err)
	}
	jwtConfig.Subject = cfg.SenderAddress

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSender{service: svc}, nil
}

// NewGmailSenderWithToken creates a GmailSender using OAuth2 client
// credentials and a refresh token for the sender mailbox.
func NewGmailSenderWithToken(ctx context.Context, clientID, clientSecret, refreshToken string) (*GmailSender, error) {
	if clientID == "" || refreshToken == "" {
		return nil, fmt.Errorf("gmail: client ID and refresh token are required")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	client := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSender{service: svc}, nil
}

// NewGmailSenderWithService wraps an existing Gmail service, e.g. one
// pointed at a test endpoint.
func NewGmailSenderWithService(svc *gmail.Service) *GmailSender {
	return &GmailSender{service: svc}
}

// Send sends an email via the Gmail API. Gmail only honours msg.From when it
// is the mailbox itself or one of its verified aliases.
func (g *GmailSender) Send(ctx context.Context, msg Message) (string, error) {
	raw := buildMIME(msg)

	sent, err := g.service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}).Context(ctx).Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			return "", &ProviderError{
				Provider:   "gmail",
				StatusCode: gErr.Code,
				Invalid:    gErr.Code == http.StatusBadRequest,
				Message:    gErr.Message,
			}
		}
		return "", fmt.Errorf("gmail: failed to send email: %w", err)
	}

	return sent.Id, nil
}

func buildMIME(msg Message) string {
	return strings.Join([]string{
		"From: " + msg.From,
		"To: " + strings.Join(msg.To, ", "),
		"Subject: " + mime.QEncoding.Encode("UTF-8", msg.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		msg.HTML,
	}, "\r\n")
}
