package domain

import "time"

// User is an account that can sign in
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleNames returns the roles as plain strings
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = string(r)
	}
	return names
}

// ResolveSignupRoles maps requested role names to granted roles.
// Unknown or missing names grant the user role.
func ResolveSignupRoles(requested []string) []Role {
	if len(requested) == 0 {
		return []Role{RoleUser}
	}
	seen := make(map[Role]bool)
	var roles []Role
	for _, name := range requested {
		r := ParseRole(name)
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	return roles
}
