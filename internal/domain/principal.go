package domain

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a requested role name onto a known role, defaulting to user
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleOrganizer:
		return RoleOrganizer
	default:
		return RoleUser
	}
}

// Principal is the authenticated caller
type Principal struct {
	UserID string
	Email  string
	Roles  []Role
}

func NewPrincipal(userID, email string, roles []string) *Principal {
	p := &Principal{UserID: userID, Email: email}
	for _, r := range roles {
		p.Roles = append(p.Roles, Role(r))
	}
	return p
}

// IsOwner reports whether p is the user identified by ownerID
func (p *Principal) IsOwner(ownerID string) bool {
	return p != nil && p.UserID != "" && p.UserID == ownerID
}

// HasRole reports whether p holds role
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff is organizer or admin
func (p *Principal) IsStaff() bool {
	return p.HasRole(RoleOrganizer) || p.HasRole(RoleAdmin)
}

// RequireStaff fails unless p is an organizer or admin
func RequireStaff(p *Principal) error {
	if p == nil {
		return ErrNoPrincipal
	}
	if !p.IsStaff() {
		return ErrForbidden
	}
	return nil
}

// RequireRole fails unless p holds role
func RequireRole(p *Principal, role Role) error {
	if p == nil {
		return ErrNoPrincipal
	}
	if !p.HasRole(role) {
		return ErrForbidden
	}
	return nil
}

// RequireOwnerOrStaff fails unless p owns the resource or is staff
func RequireOwnerOrStaff(p *Principal, ownerID string) error {
	if p == nil {
		return ErrNoPrincipal
	}
	if !p.IsOwner(ownerID) && !p.IsStaff() {
		return ErrForbidden
	}
	return nil
}
