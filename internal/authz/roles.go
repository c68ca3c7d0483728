package authz

import "strings"

const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleViewer = "viewer"
)

// Session is the caller identity resolved from the access token.
type Session struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s Session) IsAdmin() bool {
	return strings.EqualFold(s.Role, RoleAdmin)
}

// CanSee reports whether a row owned by assignee is visible to the session.
// Admins see everything; everybody else only their own rows.
func (s Session) CanSee(assignee string) bool {
	if s.IsAdmin() {
		return true
	}
	return s.Username != "" && strings.EqualFold(strings.TrimSpace(assignee), strings.TrimSpace(s.Username))
}

func IsKnownRole(role string) bool {
	switch strings.ToLower(role) {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}

func IsReadOnly(role string) bool {
	return strings.EqualFold(role, RoleViewer)
}
