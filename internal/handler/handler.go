package handler

import (
	"context"

	"github.com/hadirot/functions/internal/config"
	"github.com/hadirot/functions/internal/email"
	"github.com/hadirot/functions/internal/logger"
	"github.com/hadirot/functions/internal/supabase"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// SessionVerifier resolves the account behind a caller's access token
type SessionVerifier interface {
	GetUser(ctx context.Context, token string) (*supabase.User, error)
}

// AdminChecker reports whether a user carries the admin flag
type AdminChecker interface {
	IsAdmin(ctx context.Context, token, userID string) (bool, error)
}

// UserAdmin performs privileged account operations
type UserAdmin interface {
	DeleteUser(ctx context.Context, userID string) error
	GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error)
}

// HealthChecker is a dependency the health endpoint can probe
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	cfg      *config.Config
	log      *logger.Logger
	sessions SessionVerifier
	profiles AdminChecker
	admin    UserAdmin
	sender   email.Sender
	checks   map[string]HealthChecker
}

// Deps are the collaborators a Handler is built from. Sender may be nil,
// in which case the email function answers "Email service not configured".
type Deps struct {
	Sessions SessionVerifier
	Profiles AdminChecker
	Admin    UserAdmin
	Sender   email.Sender
	Checks   map[string]HealthChecker
}

// New creates a new Handler instance
func New(cfg *config.Config, log *logger.Logger, deps Deps) *Handler {
	return &Handler{
		cfg:      cfg,
		log:      log.WithComponent("handler"),
		sessions: deps.Sessions,
		profiles: deps.Profiles,
		admin:    deps.Admin,
		sender:   deps.Sender,
		checks:   deps.Checks,
	}
}
