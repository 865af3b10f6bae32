package domain

import "errors"

var ErrRoleNotFound = errors.New("role not found")
var ErrPermissionNotFound = errors.New("permission not found")
var ErrPermissionExists = errors.New("permission already exists")
var ErrRoleExists = errors.New("role already exists")

// Permission is a named grant. Permission names are globally unique.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Role bundles permissions under a name. A (role, permission) pair appears at
// most once.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions"`
}

// HasPermission reports whether the role holds the named permission.
func (r *Role) HasPermission(name string) bool {
	for _, p := range r.Permissions {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Requirement is the typed access requirement a route declares: the principal's
// role must be one of Roles (when non-empty) AND the role must hold every
// permission in Permissions. Both checks are conjunctive.
type Requirement struct {
	Roles       []string
	Permissions []string
}

// DenyReason classifies why an authorization decision denied.
type DenyReason string

const (
	DenyUnauthenticated   DenyReason = "unauthenticated"
	DenyNoRole            DenyReason = "no_role"
	DenyRoleMismatch      DenyReason = "role_mismatch"
	DenyMissingPermission DenyReason = "missing_permission"
)

// Decision is the ephemeral output of the access resolver. Never cached beyond
// the request that produced it.
type Decision struct {
	Allow  bool
	Reason DenyReason
}

var Allowed = Decision{Allow: true}

// Denied builds a denying decision with the given reason.
func Denied(reason DenyReason) Decision {
	return Decision{Allow: false, Reason: reason}
}
