package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigFile, EnvBaseURL, EnvTimeout, EnvSessionKey, EnvStoreDir,
		EnvRefreshInterval, EnvRefreshLead, EnvLogLevel, EnvOTLPEndpoint,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

// chdir is t.Chdir for toolchains older than Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(old))
	})
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, "esms.session", cfg.SessionKey)
	require.Equal(t, time.Minute, cfg.RefreshInterval)
	require.Equal(t, 5*time.Minute, cfg.RefreshLead)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.BaseURL)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"baseUrl: https://esms.example.com\ntimeout: 45s\nrefreshLead: 2m\nlogLevel: debug\n",
	), 0o600))
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://esms.example.com", cfg.BaseURL)
	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, 2*time.Minute, cfg.RefreshLead)
	require.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep their defaults.
	require.Equal(t, time.Minute, cfg.RefreshInterval)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baseUrl: https://from-file\ntimeout: 45s\n"), 0o600))
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvBaseURL, "https://from-env")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvStoreDir, "/var/lib/esms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://from-env", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "/var/lib/esms", cfg.StoreDir)
}

func TestExplicitMissingFileFails(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestBadDurationRejected(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(EnvTimeout, "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := Default()
	bad.Timeout = 0
	require.Error(t, bad.Validate())

	bad = Default()
	bad.SessionKey = ""
	require.Error(t, bad.Validate())

	bad = Default()
	bad.BaseURL = "://not-a-url"
	require.Error(t, bad.Validate())
}
