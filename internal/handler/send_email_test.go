package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirot/functions/internal/config"
	"github.com/hadirot/functions/internal/email"
	"github.com/hadirot/functions/internal/supabase"
)

func TestSendEmailGeneral(t *testing.T) {
	f := newFixture()

	rec, body := call(t, f.handler().SendEmail, http.MethodPost, "user-token",
		`{"to":"a@x.com","subject":"Hi","html":"<p>hi</p>"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "4ef9a417-02e9-4d39-ad75-9611e0fcc33c", body["id"])

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, email.Message{
		From:    "HaDirot <noreply@hadirot.com>",
		To:      []string{"a@x.com"},
		Subject: "Hi",
		HTML:    "<p>hi</p>",
	}, f.sender.sent[0])
	assert.Empty(t, f.admin.linkCalls)
}

func TestSendEmailSenderOverrideAndRecipientList(t *testing.T) {
	f := newFixture()

	rec, _ := call(t, f.handler().SendEmail, http.MethodPost, "user-token",
		`{"to":["a@x.com","b@x.com"],"subject":"Hi","html":"<p>hi</p>","from":"Listings <listings@hadirot.com>","type":"general"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "Listings <listings@hadirot.com>", f.sender.sent[0].From)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, f.sender.sent[0].To)
}

func TestSendEmailRejections(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		token   string
		body    string
		noSend  bool
		status  int
		message string
	}{
		{
			name:    "wrong method",
			method:  http.MethodPut,
			token:   "user-token",
			status:  http.StatusMethodNotAllowed,
			message: "Method not allowed",
		},
		{
			name:    "sender not configured",
			method:  http.MethodPost,
			token:   "user-token",
			body:    `{"to":"a@x.com","subject":"Hi","html":"<p>hi</p>"}`,
			noSend:  true,
			status:  http.StatusInternalServerError,
			message: "Email service not configured",
		},
		{
			name:    "malformed json",
			method:  http.MethodPost,
			token:   "user-token",
			body:    `{"to":`,
			status:  http.StatusBadRequest,
			message: "Invalid JSON in request body",
		},
		{
			name:    "general without token",
			method:  http.MethodPost,
			body:    `{"to":"a@x.com","subject":"Hi","html":"<p>hi</p>"}`,
			status:  http.StatusUnauthorized,
			message: "Missing authorization header",
		},
		{
			name:    "explicit general type without token",
			method:  http.MethodPost,
			body:    `{"to":"a@x.com","subject":"Hi","html":"<p>hi</p>","type":"general"}`,
			status:  http.StatusUnauthorized,
			message: "Missing authorization header",
		},
		{
			name:    "invalid token",
			method:  http.MethodPost,
			token:   "bogus",
			body:    `{"to":"a@x.com","subject":"Hi","html":"<p>hi</p>"}`,
			status:  http.StatusUnauthorized,
			message: "Invalid or expired token",
		},
		{
			name:    "missing recipient",
			method:  http.MethodPost,
			token:   "user-token",
			body:    `{"subject":"Hi","html":"<p>hi</p>"}`,
			status:  http.StatusBadRequest,
			message: "Missing required fields: to, subject",
		},
		{
			name:    "empty recipient list",
			method:  http.MethodPost,
			token:   "user-token",
			body:    `{"to":[],"subject":"Hi","html":"<p>hi</p>"}`,
			status:  http.StatusBadRequest,
			message: "Missing required fields: to, subject",
		},
		{
			name:    "missing subject",
			method:  http.MethodPost,
			token:   "user-token",
			body:    `{"to":"a@x.com","html":"<p>hi</p>"}`,
			status:  http.StatusBadRequest,
			message: "Missing required fields: to, subject",
		},
		{
			name:    "missing html",
			method:  http.MethodPost,
			token:   "user-token",
			body:    `{"to":"a@x.com","subject":"Hi"}`,
			status:  http.StatusBadRequest,
			message: "Missing required field: html",
		},
		{
			name:    "password reset without recipient",
			method:  http.MethodPost,
			body:    `{"subject":"Reset","type":"password_reset"}`,
			status:  http.StatusBadRequest,
			message: "Missing required fields: to, subject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.noSend {
				f.sender = nil
			}

			rec, body := call(t, f.handler().SendEmail, tt.method, tt.token, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, body["error"])
			if f.sender != nil {
				assert.Empty(t, f.sender.sent, "no email may be sent")
			}
			assert.Empty(t, f.admin.linkCalls, "no reset link may be generated")
		})
	}
}

func TestSendEmailWithoutTokenNeverReachesProviders(t *testing.T) {
	f := newFixture()

	rec, _ := call(t, f.handler().SendEmail, http.MethodPost, "", `{"to":"a@x.com","subject":"Hi","html":"<p>hi</p>"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.sessions.calls)
	assert.Empty(t, f.sender.sent)
}

func TestSendEmailPasswordReset(t *testing.T) {
	for _, token := range []string{"", "user-token", "bogus"} {
		t.Run("token="+token, func(t *testing.T) {
			f := newFixture()

			rec, body := call(t, f.handler().SendEmail, http.MethodPost, token,
				`{"to":["a@x.com","b@x.com"],"subject":"Reset","type":"password_reset","from":"Evil <evil@x.com>","html":"<p>ignored</p>"}`)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, true, body["success"])
			assert.Zero(t, f.sessions.calls, "reset must not depend on the session")

			assert.Equal(t, []string{"a@x.com"}, f.admin.linkCalls)
			assert.Equal(t, "https://hadirot.com/auth", f.admin.redirectTo)

			require.Len(t, f.sender.sent, 1)
			msg := f.sender.sent[0]
			assert.Equal(t, config.DefaultSender, msg.From)
			assert.Equal(t, []string{"a@x.com"}, msg.To)
			assert.Equal(t, "Reset", msg.Subject)
			assert.Contains(t, msg.HTML, "https://x.supabase.co/auth/v1/verify?token=abc&amp;type=recovery")
			assert.Contains(t, msg.HTML, "This link expires in 1 hour")
			assert.NotContains(t, msg.HTML, "ignored")
		})
	}
}

func TestSendEmailPasswordResetRedirectFallback(t *testing.T) {
	f := newFixture()
	f.cfg.Site.URL = ""

	rec, _ := call(t, f.handler().SendEmail, http.MethodPost, "", `{"to":"a@x.com","subject":"Reset","type":"password_reset"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173/auth", f.admin.redirectTo)
}

func TestSendEmailPasswordResetRateLimited(t *testing.T) {
	const cooldown = "For security purposes, you can only request this after 42 seconds."
	f := newFixture()
	h := f.handler()
	reset := `{"to":"a@x.com","subject":"Reset","type":"password_reset"}`

	rec, _ := call(t, h.SendEmail, http.MethodPost, "", reset)
	require.Equal(t, http.StatusOK, rec.Code)

	f.admin.linkErr = &supabase.APIError{StatusCode: http.StatusTooManyRequests, Code: "over_email_send_rate_limit", Message: cooldown}
	rec, body := call(t, h.SendEmail, http.MethodPost, "", reset)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, cooldown, body["error"])
	assert.Equal(t, "rate_limit_exceeded", body["code"])
	assert.Len(t, f.sender.sent, 1, "only the first reset is delivered")
}

func TestSendEmailPasswordResetRateLimitedByMessage(t *testing.T) {
	f := newFixture()
	f.admin.linkErr = &supabase.APIError{StatusCode: http.StatusBadRequest, Message: "You can request again after 60 seconds"}

	rec, body := call(t, f.handler().SendEmail, http.MethodPost, "", `{"to":"a@x.com","subject":"Reset","type":"password_reset"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limit_exceeded", body["code"])
}

func TestSendEmailPasswordResetLinkFailures(t *testing.T) {
	for name, err := range map[string]error{
		"provider error":      &supabase.APIError{StatusCode: http.StatusInternalServerError, Message: "Database error finding user"},
		"missing action link": supabase.ErrMissingActionLink,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.admin.linkErr = err

			rec, body := call(t, f.handler().SendEmail, http.MethodPost, "", `{"to":"a@x.com","subject":"Reset","type":"password_reset"}`)

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "Failed to generate password reset link", body["error"])
			assert.Nil(t, body["code"])
			assert.Empty(t, f.sender.sent)
		})
	}
}

func TestSendEmailProviderFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		details string
		status  float64
	}{
		{
			name:    "invalid data",
			err:     &email.ProviderError{Provider: "resend", StatusCode: 422, Invalid: true, Message: "Invalid 'to' field."},
			details: "Invalid email data",
			status:  422,
		},
		{
			name:    "service error",
			err:     &email.ProviderError{Provider: "resend", StatusCode: 403, Message: "API key is invalid"},
			details: "Email service error",
			status:  403,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.sender.err = tt.err

			rec, body := call(t, f.handler().SendEmail, http.MethodPost, "user-token",
				`{"to":"a@x.com","subject":"Hi","html":"<p>hi</p>"}`)

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "Failed to send email", body["error"])
			assert.Equal(t, tt.details, body["details"])
			assert.Equal(t, tt.status, body["status"])
			assert.NotContains(t, rec.Body.String(), "API key")
		})
	}
}

func TestSendEmailOptions(t *testing.T) {
	f := newFixture()

	rec, _ := call(t, f.handler().SendEmail, http.MethodOptions, "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
