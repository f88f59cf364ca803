package server_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslabs/softreq/internal/server"
	"github.com/campuslabs/softreq/pkg/authn"
	"github.com/campuslabs/softreq/pkg/authz"
	"github.com/campuslabs/softreq/pkg/configuration"
)

func TestNewPolicy_EmbeddedDefaults(t *testing.T) {
	conf := testConfiguration()
	conf.Authz.Mode = "enforce"

	policy, err := server.NewPolicy(conf, nil)
	require.NoError(t, err)
	assert.Equal(t, authz.ModeEnforce, policy.Mode())

	ok, err := policy.Check(context.Background(), authz.NewPrincipal("x", "ADMIN"), authz.OpListAll)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewPolicy_MissingModelFile(t *testing.T) {
	conf := testConfiguration()
	conf.Authz.ModelPath = filepath.Join(t.TempDir(), "missing.conf")

	_, err := server.NewPolicy(conf, nil)
	assert.Error(t, err)
}

func TestNewVerifier(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	conf := testConfiguration()
	conf.Auth = configuration.AuthOptions{JWTSecret: secret, Issuer: "softreq", IdentityClaim: "email", Leeway: time.Minute}

	verifier, err := server.NewVerifier(conf)
	require.NoError(t, err)

	signer, err := authn.NewHMACSigner([]byte(secret))
	require.NoError(t, err)
	token, err := signer.Issue(authz.NewPrincipal("a@campus.edu", "PROFESSOR"), authn.IssueOptions{Issuer: "softreq"})
	require.NoError(t, err)

	p, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "a@campus.edu", p.Identity)
}

func TestNewVerifier_Errors(t *testing.T) {
	conf := testConfiguration()
	conf.Auth.JWTSecret = "short"
	_, err := server.NewVerifier(conf)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "jwks.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	conf.Auth.JWKSPath = path
	_, err = server.NewVerifier(conf)
	assert.Error(t, err)
}
