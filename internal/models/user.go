package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// Valid reports whether the role is one of the closed set.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Credential is a read-only record from the external credential store.
// Usernames are unique and case-sensitive.
type Credential struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"password_hash"`
	Role         UserRole `json:"role"`
}

// Principal is the authenticated identity passed explicitly into every
// service call. There is no ambient session state.
type Principal struct {
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
