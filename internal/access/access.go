// Package access centralizes the ownership rule applied before every mutation:
// a resource may be changed by its owner or by an administrator.
package access

import (
	"fmt"
	"strings"

	"github.com/Prabisha01/de/internal/apperrors"
)

// Role enumerates account roles.
type Role string

const (
	// RoleUser is the default role for registered accounts.
	RoleUser Role = "user"
	// RoleAdmin grants access to administrative operations and to every board.
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role value. Empty input yields RoleUser.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, raw)
	}
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AuthorizeMutation returns nil when the actor may mutate a resource owned by ownerID.
func AuthorizeMutation(actor Actor, ownerID string) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return apperrors.ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return nil
	}
	if ownerID == "" || actor.UserID != ownerID {
		return fmt.Errorf("%w: not authorized to modify this resource", apperrors.ErrForbidden)
	}
	return nil
}

// AuthorizeRoles returns nil when the actor's role is one of allowed.
func AuthorizeRoles(actor Actor, allowed ...Role) error {
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return fmt.Errorf("%w: user role %s is not authorized to access this route", apperrors.ErrForbidden, actor.Role)
}
