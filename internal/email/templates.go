package email

import (
	"fmt"
	"html"
)

// PasswordResetEmailHTML returns the branded HTML body for a password reset
// email. resetLink is HTML-escaped before it is embedded.
func PasswordResetEmailHTML(resetLink string, appName string) string {
	link := html.EscapeString(resetLink)
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Reset your password</title>
</head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;background-color:#f4f5f7;">
<table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f4f5f7;padding:40px 0;">
<tr><td align="center">
<table width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;box-shadow:0 2px 8px rgba(0,0,0,0.08);">
  <tr><td style="padding:32px 40px 16px;text-align:center;background-color:#1e4a76;">
    <h1 style="margin:0;font-size:26px;color:#ffffff;">%s</h1>
  </td></tr>
  <tr><td style="padding:32px 40px 0;">
    <h2 style="margin:0 0 16px;font-size:20px;color:#1a1a2e;">Reset your password</h2>
    <p style="margin:0 0 24px;font-size:15px;color:#4a4a68;line-height:1.6;">
      We received a request to reset the password for your %s account. Click the button below to choose a new password.
    </p>
  </td></tr>
  <tr><td style="padding:0 40px 24px;text-align:center;">
    <a href="%s" style="display:inline-block;background-color:#1e4a76;color:#ffffff;text-decoration:none;font-weight:bold;font-size:15px;padding:14px 32px;border-radius:6px;">Reset Password</a>
  </td></tr>
  <tr><td style="padding:0 40px 24px;">
    <p style="margin:0 0 8px;font-size:13px;color:#8888a0;line-height:1.5;">If the button doesn't work, copy and paste this link into your browser:</p>
    <p style="margin:0;font-size:13px;color:#1e4a76;word-break:break-all;">%s</p>
  </td></tr>
  <tr><td style="padding:0 40px 32px;">
    <div style="background-color:#fff8e6;border-left:4px solid #f0ad4e;padding:12px 16px;border-radius:4px;">
      <p style="margin:0;font-size:13px;color:#6b5a2e;line-height:1.5;">
        <strong>Security note:</strong> This link expires in 1 hour. If you didn't request a password reset, you can safely ignore this email; your password will not change.
      </p>
    </div>
  </td></tr>
  <tr><td style="padding:16px 40px;background-color:#f9f9fc;border-top:1px solid #eeeef2;">
    <p style="margin:0;font-size:12px;color:#aaaabc;text-align:center;">
      &copy; %s &mdash; This is an automated message, please do not reply.
    </p>
  </td></tr>
</table>
</td></tr>
</table>
</body>
</html>`, appName, appName, link, link, appName)
}
