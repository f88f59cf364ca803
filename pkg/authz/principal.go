package authz

// Principal is a verified caller: a stable identity and the roles granted to it.
type Principal struct {
	Identity string
	Roles    []string
}

func NewPrincipal(identity string, roles ...string) Principal {
	return Principal{
		Identity: identity,
		Roles:    append([]string(nil), roles...),
	}
}

func (p Principal) IsZero() bool {
	return p.Identity == ""
}

// HasRole reports whether the principal carries the role, compared after
// normalization ("ROLE_ADMIN" matches "admin").
func (p Principal) HasRole(role string) bool {
	want := NormalizeRole(role)
	for _, r := range p.Roles {
		if NormalizeRole(r) == want {
			return true
		}
	}
	return false
}

// Owns reports whether a record created by requesterIdentity belongs to p.
// Identities are compared exactly: case-sensitive, no trimming.
func Owns(p Principal, requesterIdentity string) bool {
	return p.Identity != "" && p.Identity == requesterIdentity
}
