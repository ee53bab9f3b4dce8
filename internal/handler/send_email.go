package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hadirot/functions/internal/config"
	"github.com/hadirot/functions/internal/email"
	"github.com/hadirot/functions/internal/logger"
	"github.com/hadirot/functions/internal/middleware"
	"github.com/hadirot/functions/internal/supabase"
)

// Email request types
const (
	EmailTypePasswordReset = "password_reset"
	EmailTypeGeneral       = "general"
)

// Recipients accepts either a single address or a list of addresses
type Recipients []string

// UnmarshalJSON implements json.Unmarshaler
func (r *Recipients) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Recipients{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*r = list
	return nil
}

// clean drops blank entries
func (r Recipients) clean() []string {
	out := make([]string, 0, len(r))
	for _, addr := range r {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// SendEmailRequest is the body of the send-email function
type SendEmailRequest struct {
	To      Recipients `json:"to"`
	Subject string     `json:"subject"`
	HTML    string     `json:"html"`
	From    string     `json:"from"`
	Type    string     `json:"type"`
}

// SendEmailResponse reports the provider's message ID
type SendEmailResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// SendEmail delivers a transactional email. Password reset requests skip
// authorization and have their body and sender replaced by the branded
// reset template; every other request requires a valid session.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r) {
		return
	}
	ctx := r.Context()
	log := h.requestLog(r)

	if h.sender == nil {
		log.Error().Msg("email sender is not configured")
		writeError(w, http.StatusInternalServerError, "Email service not configured")
		return
	}

	var req SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	isReset := req.Type == EmailTypePasswordReset

	if !isReset {
		token := middleware.BearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}
		user, err := h.sessions.GetUser(ctx, token)
		if err != nil {
			if !errors.Is(err, supabase.ErrInvalidToken) {
				log.Error().Err(err).Msg("failed to verify caller session")
			}
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		log = log.WithUserID(user.ID)
	}

	to := req.To.clean()
	if len(to) == 0 || strings.TrimSpace(req.Subject) == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: to, subject")
		return
	}

	msg := email.Message{
		From:    h.defaultFrom(),
		To:      to,
		Subject: req.Subject,
		HTML:    req.HTML,
	}
	if req.From != "" {
		msg.From = req.From
	}

	if isReset {
		if !h.preparePasswordReset(w, r, log, &msg) {
			return
		}
	} else if req.HTML == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: html")
		return
	}

	id, err := h.sender.Send(ctx, msg)
	if err != nil {
		h.writeSendError(w, log, err)
		return
	}

	log.Info().
		Str("email_id", id).
		Strs("to", logger.RedactEmails(msg.To)).
		Bool("password_reset", isReset).
		Msg("email sent")

	writeJSON(w, http.StatusOK, SendEmailResponse{Success: true, ID: id})
}

// preparePasswordReset mints a recovery link for the first recipient and
// rewrites msg into the branded reset email. It writes the error response
// itself and returns false when the link cannot be produced.
func (h *Handler) preparePasswordReset(w http.ResponseWriter, r *http.Request, log *logger.Logger, msg *email.Message) bool {
	recipient := msg.To[0]

	link, err := h.admin.GenerateRecoveryLink(r.Context(), recipient, h.cfg.Site.ResetRedirectURL())
	if err != nil {
		if message, ok := supabase.AsRateLimit(err); ok {
			log.Warn().Str("email", logger.RedactEmail(recipient)).Msg("password reset rate limited")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error: message,
				Code:  "rate_limit_exceeded",
			})
			return false
		}
		log.Error().Err(err).Str("email", logger.RedactEmail(recipient)).Msg("failed to generate password reset link")
		writeError(w, http.StatusInternalServerError, "Failed to generate password reset link")
		return false
	}

	msg.To = []string{recipient}
	msg.HTML = email.PasswordResetEmailHTML(link, h.appName())
	msg.From = h.resetFrom()
	return true
}

func (h *Handler) writeSendError(w http.ResponseWriter, log *logger.Logger, err error) {
	resp := errorResponse{
		Error:   "Failed to send email",
		Details: "Email service error",
	}

	var pErr *email.ProviderError
	if errors.As(err, &pErr) {
		resp.Status = pErr.StatusCode
		if pErr.Invalid {
			resp.Details = "Invalid email data"
		}
	}

	log.Error().Err(err).Int("provider_status", resp.Status).Msg("failed to send email")
	writeJSON(w, http.StatusInternalServerError, resp)
}

func (h *Handler) defaultFrom() string {
	if h.cfg.Email.DefaultFrom != "" {
		return h.cfg.Email.DefaultFrom
	}
	return config.DefaultSender
}

func (h *Handler) resetFrom() string {
	if h.cfg.Email.ResetFrom != "" {
		return h.cfg.Email.ResetFrom
	}
	return config.DefaultSender
}

func (h *Handler) appName() string {
	if h.cfg.Email.AppName != "" {
		return h.cfg.Email.AppName
	}
	return "HaDirot"
}
