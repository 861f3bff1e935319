package authz

import (
	"fmt"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

// Deny reasons.
const (
	ReasonNotAuthenticated = "not authenticated"
	ReasonInactive         = "inactive account"
	ReasonNoRole           = "no role assigned"
	ReasonNoGrant          = "no grant for restricted resource"
)

func reasonPermissionRequired(permission string) string {
	return fmt.Sprintf("permission '%s' required", permission)
}

type DenyKind string

const (
	DenyUnauthenticated DenyKind = "unauthenticated"
	DenyForbidden       DenyKind = "forbidden"
)

// ResourceBook is the resource type of catalog books.
const ResourceBook = "Book"

// Resource identifies the object an action touches. Restricted is supplied
// by the caller, which already loaded the resource.
type Resource struct {
	Type       string
	ID         int64
	Restricted bool
}

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed    bool
	Identity   *identity.Identity
	Permission string
	Reason     string
	Kind       DenyKind
}

func allow(id *identity.Identity) Decision {
	return Decision{Allowed: true, Identity: id}
}

func deny(kind DenyKind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// Err maps a deny onto the HTTP error taxonomy. It is nil for an allow.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Kind == DenyUnauthenticated {
		return internal.NewUnauthorizedError("Not authenticated", internal.ErrCodeNotAuthenticated)
	}

	code := internal.ErrCodePermissionDenied
	message := fmt.Sprintf("Permission '%s' required to perform this action.", d.Permission)
	switch d.Reason {
	case ReasonInactive:
		code, message = internal.ErrCodeUserInactive, "User account is inactive"
	case ReasonNoRole:
		code, message = internal.ErrCodeNoRoleAssigned, "User has no role assigned."
	case ReasonNoGrant:
		code, message = internal.ErrCodeRestrictedResource, "You do not have access to this restricted resource."
	}
	return internal.NewForbiddenError(message, code)
}
