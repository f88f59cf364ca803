package server

import (
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/campuslabs/softreq/pkg/authn"
	"github.com/campuslabs/softreq/pkg/authz"
	"github.com/campuslabs/softreq/pkg/configuration"
)

// NewPolicy builds the access policy from the AUTHZ_* settings.
func NewPolicy(conf *configuration.Configuration, logger *logrus.Logger) (*authz.Service, error) {
	policy, err := authz.NewService(authz.Config{
		ModelPath:  conf.Authz.ModelPath,
		PolicyPath: conf.Authz.PolicyPath,
		FlagPath:   conf.Authz.FlagConfigPath,
		FlagMode:   authz.ParseMode(conf.Authz.Mode),
		Logger:     logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "build access policy")
	}
	return policy, nil
}

// NewVerifier builds the bearer token verifier from the AUTH_* settings.
// A JWKS file takes precedence over the shared secret.
func NewVerifier(conf *configuration.Configuration) (*authn.JWTVerifier, error) {
	cfg := authn.Config{
		Secret:        []byte(conf.Auth.JWTSecret),
		Issuer:        conf.Auth.Issuer,
		Audience:      conf.Auth.Audience,
		IdentityClaim: conf.Auth.IdentityClaim,
		Leeway:        conf.Auth.Leeway,
	}
	if conf.Auth.JWKSPath != "" {
		set, err := authn.LoadJWKS(conf.Auth.JWKSPath)
		if err != nil {
			return nil, err
		}
		cfg.JWKS = set
	}
	verifier, err := authn.NewJWTVerifier(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "build token verifier")
	}
	return verifier, nil
}
