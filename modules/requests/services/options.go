package services

import "strings"

// DeleteOwnership selects how Delete treats records owned by someone else.
type DeleteOwnership string

const (
	// DeleteOwnershipLegacy deletes by id regardless of owner and logs a warning.
	DeleteOwnershipLegacy DeleteOwnership = "legacy"
	// DeleteOwnershipEnforce requires ownership unless the caller may delete any record.
	DeleteOwnershipEnforce DeleteOwnership = "enforce"
)

// StatusPolicy selects how UpdateStatus validates the new status.
type StatusPolicy string

const (
	StatusPolicyStrict     StatusPolicy = "strict"
	StatusPolicyPermissive StatusPolicy = "permissive"
)

type Options struct {
	DeleteOwnership DeleteOwnership
	StatusPolicy    StatusPolicy
}

func ParseDeleteOwnership(v string) DeleteOwnership {
	switch DeleteOwnership(strings.ToLower(strings.TrimSpace(v))) {
	case DeleteOwnershipEnforce:
		return DeleteOwnershipEnforce
	default:
		return DeleteOwnershipLegacy
	}
}

func ParseStatusPolicy(v string) StatusPolicy {
	switch StatusPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case StatusPolicyPermissive:
		return StatusPolicyPermissive
	default:
		return StatusPolicyStrict
	}
}

func (o Options) normalized() Options {
	o.DeleteOwnership = ParseDeleteOwnership(string(o.DeleteOwnership))
	o.StatusPolicy = ParseStatusPolicy(string(o.StatusPolicy))
	return o
}
