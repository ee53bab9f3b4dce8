package supabase

// User is the identity provider's view of an account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Profile is a row of the application's profiles table.
type Profile struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
}

// LinkType enumerates generate_link types.
type LinkType string

const (
	LinkTypeRecovery LinkType = "recovery"
)

type generateLinkRequest struct {
	Type       LinkType `json:"type"`
	Email      string   `json:"email"`
	RedirectTo string   `json:"redirect_to,omitempty"`
}

// generateLinkResponse accepts both the flat GoTrue shape and the nested
// properties shape some gateway versions return.
type generateLinkResponse struct {
	ActionLink string `json:"action_link"`
	Properties *struct {
		ActionLink string `json:"action_link"`
	} `json:"properties,omitempty"`
}

func (r generateLinkResponse) link() string {
	if r.ActionLink != "" {
		return r.ActionLink
	}
	if r.Properties != nil {
		return r.Properties.ActionLink
	}
	return ""
}
