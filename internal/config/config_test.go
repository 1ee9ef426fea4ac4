package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) Getenv {
	return func(k string) string { return vars[k] }
}

func TestParseServer_Defaults(t *testing.T) {
	cfg, err := ParseServer(nil, env(nil))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "file:opsconsole.db?_pragma=foreign_keys(1)", cfg.DatabaseURL)
	assert.False(t, cfg.Seed)
}

func TestParseServer_EnvAndFlags(t *testing.T) {
	vars := env(map[string]string{"PORT": "9000", "DATABASE_URL": "file:x.db", "SEED_DEMO": "true"})

	cfg, err := ParseServer(nil, vars)
	require.NoError(t, err)
	assert.Equal(t, Server{Port: 9000, DatabaseURL: "file:x.db", Seed: true}, cfg)

	cfg, err = ParseServer([]string{"-port", "7000"}, vars)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port, "flags win over env")
	assert.Equal(t, "file:x.db", cfg.DatabaseURL)
}

func TestParseServer_Invalid(t *testing.T) {
	_, err := ParseServer(nil, env(map[string]string{"PORT": "eighty"}))
	assert.ErrorContains(t, err, "invalid PORT")

	_, err = ParseServer([]string{"-port", "70000"}, env(nil))
	assert.Error(t, err)
}

func TestParseConsole(t *testing.T) {
	_, err := ParseConsole(nil, env(nil))
	require.Error(t, err, "API URL is required")

	cfg, err := ParseConsole([]string{"-api", "http://localhost:8080", "-role", "staff"}, env(map[string]string{
		"API_TIMEOUT":  "3s",
		"CONSOLE_ROLE": "viewer",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, "staff", cfg.Role)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, 100, cfg.PageSize)

	cfg, err = ParseConsole([]string{"-demo"}, env(nil))
	require.NoError(t, err)
	assert.True(t, cfg.Demo)

	_, err = ParseConsole([]string{"-api", "not a url"}, env(nil))
	assert.Error(t, err)

	_, err = ParseConsole([]string{"-api", "http://x", "-page-size", "500"}, env(nil))
	assert.Error(t, err)
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OPSCONSOLE_TEST_VAR=from-file\n"), 0o600))
	t.Setenv("OPSCONSOLE_TEST_VAR", "")
	os.Unsetenv("OPSCONSOLE_TEST_VAR")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("OPSCONSOLE_TEST_VAR"))
}
