// Package authz centralizes actor checks for marketplace resources. Admins
// bypass ownership checks; everyone else must own the resource they touch.
// Denials are opaque on purpose: callers get the same Forbidden regardless of
// whether the resource exists under someone else's account.
package authz

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
)

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// ErrForbidden is the uniform denial returned by every guard.
func ErrForbidden() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
}

// RequireOwner passes when the actor owns the resource or is an admin.
func RequireOwner(actor Actor, ownerID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor.UserID != ownerID {
		return ErrForbidden()
	}
	return nil
}

// RequireRole passes when the actor holds one of the allowed roles or is an admin.
func RequireRole(actor Actor, allowed ...enums.UserRole) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.IsAdmin() {
		return nil
	}
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return ErrForbidden()
}

// RequireOwnerWithRole combines a role gate and an ownership gate.
func RequireOwnerWithRole(actor Actor, ownerID uuid.UUID, allowed ...enums.UserRole) error {
	if err := RequireRole(actor, allowed...); err != nil {
		return err
	}
	return RequireOwner(actor, ownerID)
}
