package models

// RoleAdmin is the only role with client-visible semantics: it shows the
// create, edit and delete controls. The backend remains the authority.
const RoleAdmin = "admin"

// Session is the authentication state of one browser. Token and Role are set
// and cleared together.
type Session struct {
	Token string `json:"-"`
	Role  string `json:"role,omitempty"`
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// IsAdmin reports whether the admin controls should be displayed.
func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.Role == RoleAdmin
}
