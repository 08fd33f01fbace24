package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"googleOAuth": map[string]any{
			"clientSecret": "",
		},
		"secretKey": map[string]any{
			"global": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "GOOGLEOAUTH_CLIENTSECRET", want: "googleOAuth.clientSecret"},
		{envKey: "SECRETKEY_GLOBAL", want: "secretKey.global"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

const testConfigYAML = `
env:
  serviceName: authsvc-test
  log:
    level: info
secretKey:
  global: ""
token:
  accessTTL: 5m
googleOAuth:
  clientId: client-from-file
`

func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfigYAML), 0o600))

	return dir
}

func TestLoadWithEnv_EnvOverridesFile(t *testing.T) {
	dir := writeTestConfig(t)
	t.Setenv("SECRETKEY_GLOBAL", "secret-from-env")
	t.Setenv("GOOGLEOAUTH_CLIENTID", "client-from-env")

	cfg, err := LoadWithEnv[Config]("config", dir)
	require.NoError(t, err)

	assert.Equal(t, "authsvc-test", cfg.Env.ServiceName)
	assert.Equal(t, "secret-from-env", cfg.SecretKey.Global)
	require.NotNil(t, cfg.GoogleOAuth)
	assert.Equal(t, "client-from-env", cfg.GoogleOAuth.ClientID)
	require.NotNil(t, cfg.Token)
	assert.Equal(t, 5*time.Minute, cfg.Token.AccessTTL)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	_, err := LoadWithEnv[Config]("does-not-exist", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in any search path")
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		SecretKey:   SecretKeyConfig{Global: "s3cret"},
		GoogleOAuth: &GoogleOAuthConfig{ClientID: "id"},
	}

	require.NoError(t, cfg.applyDefaults())

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, defaultAccessTTL, cfg.Token.AccessTTL)
	assert.Equal(t, defaultRefreshTTL, cfg.Token.RefreshTTL)
	assert.Equal(t, defaultIssuer, cfg.Token.Issuer)
	assert.Equal(t, 7*24*time.Hour, cfg.Cookie.MaxAge)
	assert.Equal(t, defaultStateTTL, cfg.GoogleOAuth.StateTTL)
	assert.Equal(t, "/profile", cfg.GoogleOAuth.SuccessRedirect)
}

func TestApplyDefaults_RejectsEmptySecret(t *testing.T) {
	cfg := &Config{}

	err := cfg.applyDefaults()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "secretKey.global")
}
