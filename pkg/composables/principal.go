package composables

import (
	"context"
	"errors"

	"github.com/campuslabs/softreq/pkg/authz"
	"github.com/campuslabs/softreq/pkg/constants"
)

var ErrNoPrincipal = errors.New("no authenticated principal found in context")

// WithPrincipal stores the verified caller in the context.
func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, constants.PrincipalKey, p)
}

// UsePrincipal returns the verified caller placed by the authentication middleware.
func UsePrincipal(ctx context.Context) (authz.Principal, error) {
	p, ok := ctx.Value(constants.PrincipalKey).(authz.Principal)
	if !ok || p.IsZero() {
		return authz.Principal{}, ErrNoPrincipal
	}
	return p, nil
}
