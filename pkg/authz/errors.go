package authz

import (
	"fmt"

	"github.com/campuslabs/softreq/pkg/serrors"
)

const (
	errorCodeForbidden = "AUTHZ_FORBIDDEN"
	errorLocaleKey     = "Authorization.PermissionDenied"
)

// ErrForbidden matches every denial returned by Service.Authorize.
var ErrForbidden = serrors.NewError(errorCodeForbidden, "permission denied", errorLocaleKey)

// forbiddenError builds a standardized error for denied operations.
func forbiddenError(p Principal, op Operation) *serrors.BaseError {
	return ErrForbidden.WithTemplateData(map[string]string{
		"object":    Object,
		"operation": string(op),
		"subject":   p.Identity,
	})
}

// configError standardizes configuration validation errors.
func configError(msg string, args ...any) error {
	return fmt.Errorf("authz: "+msg, args...)
}
