package authn

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/campuslabs/softreq/pkg/authz"
)

var (
	ErrMissingToken = errors.New("authn: missing bearer token")
	ErrInvalidToken = errors.New("authn: invalid token")
	ErrNoIdentity   = errors.New("authn: token carries no identity")
)

const (
	minSecretLength      = 32
	defaultIdentityClaim = "email"
	defaultLeeway        = time.Minute
)

var (
	hmacAlgorithms = []jose.SignatureAlgorithm{jose.HS256, jose.HS384, jose.HS512}
	keyAlgorithms  = []jose.SignatureAlgorithm{
		jose.RS256, jose.RS384, jose.RS512,
		jose.PS256, jose.PS384, jose.PS512,
		jose.ES256, jose.ES384, jose.ES512,
		jose.EdDSA,
	}
)

// Verifier turns a raw bearer token into a verified principal.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (authz.Principal, error)
}

// Config configures JWT verification. Exactly one of Secret or JWKS is used;
// JWKS wins when both are set.
type Config struct {
	Secret        []byte
	JWKS          *jose.JSONWebKeySet
	Issuer        string
	Audience      string
	IdentityClaim string
	Leeway        time.Duration
	Now           func() time.Time
}

// JWTVerifier validates signed JWTs and extracts identity and roles.
type JWTVerifier struct {
	cfg Config
}

func NewJWTVerifier(cfg Config) (*JWTVerifier, error) {
	if cfg.JWKS == nil || len(cfg.JWKS.Keys) == 0 {
		if len(cfg.Secret) < minSecretLength {
			return nil, fmt.Errorf("authn: secret must be at least %d bytes", minSecretLength)
		}
	}
	if strings.TrimSpace(cfg.IdentityClaim) == "" {
		cfg.IdentityClaim = defaultIdentityClaim
	}
	if cfg.Leeway <= 0 {
		cfg.Leeway = defaultLeeway
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JWTVerifier{cfg: cfg}, nil
}

// LoadJWKS reads a JSON Web Key Set from disk.
func LoadJWKS(path string) (*jose.JSONWebKeySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "authn: read jwks")
	}
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, errors.Wrap(err, "authn: parse jwks")
	}
	return &set, nil
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (authz.Principal, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return authz.Principal{}, ErrMissingToken
	}

	var (
		key  any
		algs []jose.SignatureAlgorithm
	)
	if v.cfg.JWKS != nil && len(v.cfg.JWKS.Keys) > 0 {
		key, algs = v.cfg.JWKS, keyAlgorithms
	} else {
		key, algs = v.cfg.Secret, hmacAlgorithms
	}

	tok, err := jwt.ParseSigned(rawToken, algs)
	if err != nil {
		return authz.Principal{}, invalidToken(err)
	}

	var (
		std    jwt.Claims
		custom roleClaims
		raw    map[string]any
	)
	if err := tok.Claims(key, &std, &custom, &raw); err != nil {
		return authz.Principal{}, invalidToken(err)
	}

	if std.Expiry == nil {
		return authz.Principal{}, invalidToken(errors.New("missing exp claim"))
	}

	expected := jwt.Expected{
		Issuer: v.cfg.Issuer,
		Time:   v.cfg.Now(),
	}
	if v.cfg.Audience != "" {
		expected.AnyAudience = jwt.Audience{v.cfg.Audience}
	}
	if err := std.ValidateWithLeeway(expected, v.cfg.Leeway); err != nil {
		return authz.Principal{}, invalidToken(err)
	}

	identity := stringClaim(raw, v.cfg.IdentityClaim)
	if identity == "" {
		identity = std.Subject
	}
	if identity == "" {
		return authz.Principal{}, ErrNoIdentity
	}

	return authz.NewPrincipal(identity, custom.roles()...), nil
}

// roleClaims gathers role lists from the claim layouts we accept.
type roleClaims struct {
	Roles       []string `json:"roles,omitempty"`
	Authorities []string `json:"authorities,omitempty"`
	RealmAccess struct {
		Roles []string `json:"roles,omitempty"`
	} `json:"realm_access,omitempty"`
}

func (c roleClaims) roles() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range [][]string{c.Roles, c.Authorities, c.RealmAccess.Roles} {
		for _, r := range group {
			r = strings.TrimSpace(r)
			if r == "" {
				continue
			}
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

func stringClaim(raw map[string]any, name string) string {
	if raw == nil {
		return ""
	}
	v, ok := raw[name].(string)
	if !ok {
		return ""
	}
	return v
}

func invalidToken(cause error) error {
	return errors.Wrap(ErrInvalidToken, cause.Error())
}
