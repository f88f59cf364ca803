package request

import "github.com/campuslabs/softreq/pkg/serrors"

var (
	ErrNotFound          = serrors.NewError("REQUEST_NOT_FOUND", "request not found", "Requests.Errors.NotFound")
	ErrInvalidStatus     = serrors.NewError("REQUEST_INVALID_STATUS", "unknown request status", "Requests.Errors.InvalidStatus")
	ErrInvalidTransition = serrors.NewError("REQUEST_INVALID_TRANSITION", "status transition not allowed", "Requests.Errors.InvalidTransition")
)
