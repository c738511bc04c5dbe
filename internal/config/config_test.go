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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "x-api-key", cfg.Auth.Header)
	assert.Equal(t, 0.6, cfg.Detection.ConfidenceBase)
	assert.Equal(t, 0.1, cfg.Detection.ConfidenceStep)
	assert.Equal(t, 0.99, cfg.Detection.ConfidenceCap)
	assert.Equal(t, 2*time.Second, cfg.Reporting.Timeout)
	assert.Equal(t, 2, cfg.Reporting.Workers)
	assert.Equal(t, 256, cfg.Reporting.QueueSize)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
auth:
  api_key: s3cret
detection:
  confidence_base: 0.5
  confidence_step: 0.2
  extra_keywords: ["gift card", "bitcoin"]
engagement:
  neutral_reply: "Noted."
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.APIKey)
	assert.Equal(t, 0.5, cfg.Detection.ConfidenceBase)
	assert.Equal(t, 0.2, cfg.Detection.ConfidenceStep)
	assert.Equal(t, []string{"gift card", "bitcoin"}, cfg.Detection.ExtraKeywords)
	assert.Equal(t, "Noted.", cfg.Engagement.NeutralReply)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "auth:\n  api_key: from-file\n")
	t.Setenv("HONEYPOT_AUTH_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.APIKey)
}

func TestLoad_RejectsInvalidLimits(t *testing.T) {
	path := writeConfig(t, `
auth:
  api_key: k
ratelimit:
  enabled: true
  requests_per_minute: 0
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "requests_per_minute")

	path = writeConfig(t, `
auth:
  api_key: k
database:
  max_open_conns: 1
  max_idle_conns: 5
`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "max_idle_conns")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"cap of one asserts certainty", func(c *Config) { c.Detection.ConfidenceCap = 1 }, true},
		{"negative step", func(c *Config) { c.Detection.ConfidenceStep = -0.1 }, true},
		{"base above one", func(c *Config) { c.Detection.ConfidenceBase = 1.2 }, true},
		{"empty api key", func(c *Config) { c.Auth.APIKey = "" }, true},
		{"rate limit of zero", func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true} }, true},
		{"negative rate limit", func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true, RequestsPerMinute: -5} }, true},
		{"rate limit off ignores budget", func(c *Config) { c.RateLimit = RateLimitConfig{RequestsPerMinute: 0} }, false},
		{"idle above open", func(c *Config) { c.Database.MaxOpenConns, c.Database.MaxIdleConns = 2, 10 }, true},
		{"idle equal to open", func(c *Config) { c.Database.MaxOpenConns, c.Database.MaxIdleConns = 4, 4 }, false},
		{"negative idle", func(c *Config) { c.Database.MaxIdleConns = -1 }, true},
		{"reporting without workers", func(c *Config) { c.Reporting = ReportingConfig{Enabled: true, QueueSize: 8} }, true},
		{"reporting without queue", func(c *Config) { c.Reporting = ReportingConfig{Enabled: true, Workers: 1} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Auth:      AuthConfig{APIKey: "k"},
				Detection: DetectionConfig{ConfidenceBase: 0.6, ConfidenceStep: 0.1, ConfidenceCap: 0.99},
			}
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
