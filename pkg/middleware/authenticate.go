package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/campuslabs/softreq/pkg/authn"
	"github.com/campuslabs/softreq/pkg/composables"
	"github.com/campuslabs/softreq/pkg/httpapi"
	"github.com/campuslabs/softreq/pkg/intl"
)

const codeUnauthenticated = "AUTH_UNAUTHENTICATED"

// Authenticate verifies the bearer token and stores the resulting principal
// in the request context. Requests without a valid token are answered with
// 401 before reaching the handler.
func Authenticate(verifier authn.Verifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := verifier.Verify(r.Context(), bearerToken(r))
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Info("authentication failed")
				w.Header().Set("WWW-Authenticate", `Bearer realm="softreq"`)
				requestID, _ := composables.UseRequestID(r.Context())
				_ = httpapi.WriteError(w, http.StatusUnauthorized, codeUnauthenticated, intl.Localize(r.Context(), "Errors.Unauthenticated", nil, "authentication required"), map[string]string{
					"request_id": requestID,
				})
				return
			}

			ctx := composables.WithPrincipal(r.Context(), principal)
			ctx = composables.WithLogger(ctx, composables.UseLogger(ctx).WithField("principal", principal.Identity))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) < len("bearer ") || !strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[len("bearer "):])
}
