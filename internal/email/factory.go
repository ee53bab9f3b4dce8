package email

import (
	"context"
	"fmt"

	"github.com/hadirot/functions/internal/config"
	"github.com/hadirot/functions/internal/pkg/httpretry"
)

// NewSender builds the Sender selected by cfg.Provider. httpClient is used
// by providers that speak plain HTTP; the SDK-backed providers bring their
// own transport.
func NewSender(ctx context.Context, cfg config.EmailConfig, httpClient httpretry.HTTPDoer) (Sender, error) {
	switch cfg.Provider {
	case "", "resend":
		return NewResendSender(cfg.Resend.BaseURL, cfg.Resend.APIKey, httpClient)
	case "gmail":
		if cfg.Gmail.CredentialsJSON != "" {
			return NewGmailSender(ctx, GmailConfig{
				CredentialsJSON: cfg.Gmail.CredentialsJSON,
				SenderAddress:   cfg.Gmail.SenderAddress,
			})
		}
		return NewGmailSenderWithToken(ctx, cfg.Gmail.ClientID, cfg.Gmail.ClientSecret, cfg.Gmail.RefreshToken)
	case "ses":
		return NewSESSender(ctx, SESConfig{
			Region:    cfg.SES.Region,
			AccessKey: cfg.SES.AccessKey,
			SecretKey: cfg.SES.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unsupported email provider: %q", cfg.Provider)
	}
}
