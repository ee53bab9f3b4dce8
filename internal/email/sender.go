package email

import (
	"context"
	"fmt"
)

// Sender is the interface that all email providers must implement.
type Sender interface {
	// Send delivers msg and returns the provider's message identifier.
	Send(ctx context.Context, msg Message) (string, error)
}

// Message represents an email message to be sent.
type Message struct {
	From    string   // "Name <address>" or bare address
	To      []string // one or more recipients
	Subject string
	HTML    string
}

// ProviderError is returned when the provider refuses a message.
type ProviderError struct {
	Provider   string
	StatusCode int
	// Invalid is set when the provider rejected the message content itself
	// (Resend answers 422) rather than failing to process it.
	Invalid bool
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider returned %d: %s", e.Provider, e.StatusCode, e.Message)
}
