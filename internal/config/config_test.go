package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := writeConfig(t, `
port: "9090"
auth:
  signing_key: test-key
credentials:
  path: /tmp/users.csv
gemini:
  timeout: 5s
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test-key", cfg.Auth.SigningKey)
	assert.Equal(t, "/tmp/users.csv", cfg.Credentials.Path)
	assert.Equal(t, "sha256", cfg.Credentials.Digest)
	assert.Equal(t, 5*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, int32(4096), cfg.Gemini.MaxOutputTokens)
	assert.InDelta(t, 0.4, float64(cfg.Gemini.Temperature), 1e-6)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, "auth:\n  signing_key: from-file\n")
	t.Setenv("MEDISCAN_AUTH_SIGNING_KEY", "from-env")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("MEDISCAN_PORT", "7000")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.SigningKey)
	assert.Equal(t, "gem-key", cfg.Gemini.APIKey)
	assert.Equal(t, "7000", cfg.Port)
}

func TestLoad_MissingSigningKey(t *testing.T) {
	dir := writeConfig(t, "port: \"8080\"\n")

	_, err := Load(dir)
	require.ErrorIs(t, err, errMissingSigningKey)
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	t.Setenv("MEDISCAN_AUTH_SIGNING_KEY", "k")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mediscan.db", cfg.DB.Path)
}

func TestValidate_RejectsNonPositiveDurations(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Auth.SigningKey = "k"
		c.Auth.SessionTTL = time.Minute
		c.Janitor.Interval = time.Minute
		c.Upload.MaxBytes = 1
		return c
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero session ttl", func(c *Config) { c.Auth.SessionTTL = 0 }, "auth.session_ttl"},
		{"negative session ttl", func(c *Config) { c.Auth.SessionTTL = -time.Second }, "auth.session_ttl"},
		{"zero janitor interval", func(c *Config) { c.Janitor.Interval = 0 }, "janitor.interval"},
		{"zero upload limit", func(c *Config) { c.Upload.MaxBytes = 0 }, "upload.max_bytes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
