package authn

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/campuslabs/softreq/pkg/authz"
)

// IssueOptions controls the registered claims of an issued token.
type IssueOptions struct {
	Issuer   string
	Audience string
	TTL      time.Duration
	Now      time.Time
}

// Signer issues HMAC signed tokens understood by JWTVerifier.
// It backs the development CLI and tests; production tokens come from the
// identity provider.
type Signer struct {
	signer jose.Signer
}

func NewHMACSigner(secret []byte) (*Signer, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("authn: secret must be at least %d bytes", minSecretLength)
	}
	sig, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "authn: create signer")
	}
	return &Signer{signer: sig}, nil
}

type issuedClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func (s *Signer) Issue(p authz.Principal, opts IssueOptions) (string, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	std := jwt.Claims{
		Subject:   p.Identity,
		Issuer:    opts.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(ttl)),
	}
	if opts.Audience != "" {
		std.Audience = jwt.Audience{opts.Audience}
	}

	token, err := jwt.Signed(s.signer).
		Claims(std).
		Claims(issuedClaims{Email: p.Identity, Roles: p.Roles}).
		Serialize()
	if err != nil {
		return "", errors.Wrap(err, "authn: sign token")
	}
	return token, nil
}
