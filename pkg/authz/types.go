package authz

import (
	"strings"
)

const (
	rolePrefix       = "role"
	subjectSeparator = ":"
	legacyRolePrefix = "role_"
)

// Object is the casbin object every request operation is evaluated against.
const Object = "requests.software"

// Canonical roles. Token roles are mapped onto these by grouping rules.
const (
	RoleAdministrator = "administrator"
	RoleInstructor    = "instructor"
)

// Operation names a gated entry point of the request lifecycle.
type Operation string

const (
	OpListAll      Operation = "list_all"
	OpListOwn      Operation = "list_own"
	OpCreate       Operation = "create"
	OpUpdateStatus Operation = "update_status"
	OpDelete       Operation = "delete"
	// OpDeleteAny is consulted only when delete ownership is enforced:
	// principals holding it may delete records they do not own.
	OpDeleteAny Operation = "delete_any"
)

// Operations lists every operation known to the policy table.
var Operations = []Operation{
	OpListAll,
	OpListOwn,
	OpCreate,
	OpUpdateStatus,
	OpDelete,
	OpDeleteAny,
}

// ParseOperation resolves a user supplied operation name.
func ParseOperation(v string) (Operation, bool) {
	v = NormalizeAction(v)
	for _, op := range Operations {
		if string(op) == v {
			return op, true
		}
	}
	return "", false
}

// SubjectForRole returns the canonical casbin subject for a role name.
// Names are lower-cased and the Spring style "ROLE_" prefix is dropped,
// so "ROLE_ADMIN", "ADMIN" and "admin" all map to "role:admin".
func SubjectForRole(role string) string {
	role = NormalizeRole(role)
	if role == "" {
		role = "unnamed"
	}
	return rolePrefix + subjectSeparator + role
}

// NormalizeRole lower-cases a role and strips a leading "ROLE_" prefix.
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	role = strings.TrimPrefix(role, rolePrefix+subjectSeparator)
	return strings.TrimPrefix(role, legacyRolePrefix)
}

// NormalizeAction returns a normalized action string.
func NormalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	return strings.ReplaceAll(action, "-", "_")
}
