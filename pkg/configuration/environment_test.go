package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "SOFTREQ_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "modules", "requests")
	requireMkdirAll(t, sub)
	chdir(t, sub)

	t.Setenv("SOFTREQ_TEST_ENV_LOAD", "")
	require.NoError(t, os.Unsetenv("SOFTREQ_TEST_ENV_LOAD"))

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "ok", os.Getenv("SOFTREQ_TEST_ENV_LOAD"))
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "app.log"))

	c, err := Load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	assert.Equal(t, StoreDriverPostgres, c.StoreDriver)
	assert.Equal(t, "enforce", c.Authz.Mode)
	assert.Equal(t, "legacy", c.Requests.DeleteOwnership)
	assert.Equal(t, "strict", c.Requests.StatusPolicy)
	assert.Equal(t, "email", c.Auth.IdentityClaim)
	assert.Equal(t, time.Minute, c.Auth.Leeway)
	assert.Equal(t, "localhost:8080", c.SocketAddress)
	assert.Contains(t, c.Database.Opts, "dbname=softreq")
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSAllowedOrigins)
	assert.Equal(t, []string{"en", "pt-BR"}, c.SupportedLanguages)
	assert.NotNil(t, c.Logger())
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "app.log"))
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("REQUESTS_DELETE_OWNERSHIP", "enforce")
	t.Setenv("REQUESTS_STATUS_POLICY", "PERMISSIVE")
	t.Setenv("GO_APP_ENV", Production)
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://labs.campus.edu, ,https://admin.campus.edu")

	c, err := Load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	assert.True(t, c.UsesMemoryStore())
	assert.Equal(t, "enforce", c.Requests.DeleteOwnership)
	assert.Equal(t, "permissive", c.Requests.StatusPolicy)
	assert.Equal(t, ":9090", c.SocketAddress)
	assert.Equal(t, []string{"https://labs.campus.edu", "https://admin.campus.edu"}, c.CORSAllowedOrigins)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"store driver":   {"STORE_DRIVER": "mongo"},
		"status policy":  {"REQUESTS_STATUS_POLICY": "lenient"},
		"authz mode":     {"AUTHZ_MODE": "audit"},
		"short secret":   {"AUTH_JWT_SECRET": "short"},
		"rate storage":   {"RATE_LIMIT_STORAGE": "disk"},
		"redis no url":   {"RATE_LIMIT_STORAGE": "redis"},
		"port too large": {"PORT": "70000"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("AUTH_JWT_SECRET", testSecret)
			t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "app.log"))
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load(nil)
			require.Error(t, err)
		})
	}
}

func TestLoad_JWKSWithoutSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_JWKS_PATH", "/etc/softreq/jwks.json")
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "app.log"))

	c, err := Load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)
	assert.Equal(t, "/etc/softreq/jwks.json", c.Auth.JWKSPath)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(dir))
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}
