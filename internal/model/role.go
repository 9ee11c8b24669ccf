package model

import (
	"fmt"
	"strings"
)

// Role is the closed set of user roles recognised by the API.  The
// value is embedded in the JWT "role" claim and checked by the
// RequireRole middleware before any handler runs.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAssistant Role = "ASSISTANT"
	RoleClient    Role = "CLIENT"
)

// Roles returns all valid roles in declaration order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleAssistant, RoleClient}
}

// ParseRole converts a string into a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleAssistant, RoleClient:
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Principal identifies the authenticated actor on whose behalf an
// operation runs.  It is threaded explicitly into every service call;
// nothing in the core consults ambient request state.
type Principal struct {
	UserID uint64
	Role   Role
}

// CanSeeAllReservations reports whether the principal may list and
// inspect reservations belonging to other users.  Assistants and
// clients only ever see their own.
func (p Principal) CanSeeAllReservations() bool {
	return p.Role == RoleAdmin
}
