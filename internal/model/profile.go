package model

import "time"

// Profile roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile mirrors an auth user. ID equals the auth provider's user id.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile may run admin actions.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
