/*
Package authz implements the access policy for software requests.

Role requirements per operation are declared as a casbin policy table
(policy.csv, embedded, overridable from disk) and evaluated by [Service].
A [Principal] is permitted an [Operation] when any of its roles is allowed
by the table. The check is coarse-grained: it never looks at the record
being targeted. Row-level ownership is expressed separately by [Owns].

	svc, err := authz.NewService(authz.Config{FlagMode: authz.ModeEnforce})
	if err != nil {
		return err
	}
	if err := svc.Authorize(ctx, principal, authz.OpListAll); err != nil {
		// errors.Is(err, authz.ErrForbidden)
	}
*/
package authz
