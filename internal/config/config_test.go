package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), writeConfigFile(t, "app:\n  logLevel: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, time.Second, cfg.Server.TLS.AutoReload.DebounceDelay)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, []string{"json", "text", "markdown"}, cfg.App.SupportedFormats)
	assert.Equal(t, int64(10*1024*1024), cfg.App.MaxFileSize)
	assert.Equal(t, 20, cfg.App.MinTextLength)
	assert.Equal(t, 4, cfg.App.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.Server.KeyRotation.PollInterval)
	assert.Equal(t, 0.6, cfg.Server.KeyRotation.CircuitBreaker.FailureThreshold)
	assert.Equal(t, "resumescore", cfg.Observability.ServiceName)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
	assert.False(t, cfg.Observability.ConsoleOutput)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9000"
  apiKeys:
    - " file-key "
app:
  logLevel: debug
  concurrency: 8
  defaultFormat: markdown
`)
	t.Setenv("RESUMESCORE_SERVER_HOST", "0.0.0.0")
	t.Setenv("RESUMESCORE_APP_MINTEXTLENGTH", "50")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"file-key"}, cfg.Server.APIKeys)
	assert.Equal(t, 8, cfg.App.Concurrency)
	assert.Equal(t, 50, cfg.App.MinTextLength)
	assert.Equal(t, "markdown", cfg.App.DefaultFormat)
	assert.True(t, cfg.Observability.ConsoleOutput, "debug logging turns on console telemetry")
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, "app:\n  concurrency: 0\n")
	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency must be at least 1")
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfigFile(t, "server: [unterminated\n")
	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestApplyServerAPIKeyFallbacks(t *testing.T) {
	t.Setenv("RESUMESCORE_SERVER_APIKEYS", " alpha, beta ,,gamma ")

	cfg := &Config{}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.Server.APIKeys)

	configured := &Config{Server: ServerConfig{APIKeys: []string{" kept "}}}
	configured.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"kept"}, configured.Server.APIKeys)
}

func TestApplyTLSDefaults(t *testing.T) {
	cfg := &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "mutual"}}}
	cfg.applyTLSDefaults()
	assert.Equal(t, "require", cfg.Server.TLS.ClientAuthPolicy)
	assert.Equal(t, "1.2", cfg.Server.TLS.MinVersion)

	disabled := &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "disabled"}}}
	disabled.applyTLSDefaults()
	assert.Empty(t, disabled.Server.TLS.MinVersion)
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
			KeyRotation: KeyRotationConfig{
				PollInterval:   time.Minute,
				CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 0.5},
			},
		},
		App: AppConfig{
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text"},
			Concurrency:      2,
			MinTextLength:    20,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, errorMsg: "server port is required"},
		{name: "unsupported default format", mutate: func(c *Config) { c.App.DefaultFormat = "yaml" }, errorMsg: "invalid default format: yaml"},
		{name: "zero concurrency", mutate: func(c *Config) { c.App.Concurrency = 0 }, errorMsg: "concurrency must be at least 1"},
		{name: "negative min text length", mutate: func(c *Config) { c.App.MinTextLength = -1 }, errorMsg: "minTextLength cannot be negative"},
		{
			name:     "key rotation without vault",
			mutate:   func(c *Config) { c.Server.KeyRotation.Enabled = true },
			errorMsg: "key rotation requires vault.enabled",
		},
		{
			name: "key rotation with bad threshold",
			mutate: func(c *Config) {
				c.Server.KeyRotation.Enabled = true
				c.Vault = VaultConfig{Enabled: true, Secrets: VaultSecrets{APIKeys: "secret/data/keys"}}
				c.Server.KeyRotation.CircuitBreaker.FailureThreshold = 1.5
			},
			errorMsg: "failureThreshold must be in (0, 1]",
		},
		{
			name: "key rotation valid",
			mutate: func(c *Config) {
				c.Server.KeyRotation.Enabled = true
				c.Vault = VaultConfig{Enabled: true, Secrets: VaultSecrets{APIKeys: "secret/data/keys"}}
			},
		},
		{name: "tls error is wrapped", mutate: func(c *Config) { c.Server.TLS.Mode = "server" }, errorMsg: "TLS configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitKeys("a, b"))
	assert.Empty(t, splitKeys(" , "))
}
