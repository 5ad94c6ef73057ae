package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, "text", cfg.Format)
	assert.Zero(t, cfg.GetTimeout())
	assert.NotEmpty(t, cfg.SessionPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "storefront.yaml", `
api:
  base_url: https://shop.example.com/api
  timeout: 15s
  rate_limit: 5
  rate_burst: 10
session_path: /tmp/s.db
format: json
`)
	env := writeFile(t, ".env", "")

	cfg, err := Load(LoadOptions{Path: path, EnvFile: env, Getenv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.GetTimeout())
	assert.Equal(t, 5.0, cfg.API.RateLimit)
	assert.Equal(t, 10, cfg.API.RateBurst)
	assert.Equal(t, "/tmp/s.db", cfg.SessionPath)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "storefront-cli", cfg.API.UserAgent, "unset keys keep defaults")
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "storefront.yaml", "api:\n  baseurl: http://x\n")

	_, err := Load(LoadOptions{Path: path, EnvFile: missingEnvFile(t), Getenv: noEnv})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseurl")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "storefront.yaml", "")

	cfg, err := Load(LoadOptions{Path: path, EnvFile: writeFile(t, ".env", ""), Getenv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API.BaseURL, cfg.API.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(LoadOptions{Path: missing, EnvFile: writeFile(t, ".env", ""), Getenv: noEnv})
	assert.Error(t, err, "explicit path must exist")

	// Named through the environment it is explicit too.
	_, err = Load(LoadOptions{EnvFile: writeFile(t, ".env", ""), Getenv: envMap(map[string]string{EnvConfig: missing})})
	assert.Error(t, err)
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	_, err := Load(LoadOptions{EnvFile: missingEnvFile(t), Getenv: noEnv})
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "storefront.yaml", `
api:
  base_url: http://from-file:1
  timeout: 1s
format: text
`)
	env := writeFile(t, ".env", `
STOREFRONT_API_URL=http://from-dotenv:2
STOREFRONT_TIMEOUT=2s
STOREFRONT_RATE_LIMIT=3.5
`)
	getenv := envMap(map[string]string{
		EnvAPIURL:  "http://from-env:3",
		EnvFormat:  "json",
		EnvVerbose: "true",
	})

	cfg, err := Load(LoadOptions{Path: path, EnvFile: env, Getenv: getenv})
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:3", cfg.API.BaseURL, "process env beats dotenv")
	assert.Equal(t, 2*time.Second, cfg.GetTimeout(), "dotenv beats file")
	assert.Equal(t, 3.5, cfg.API.RateLimit)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Verbose)
}

func TestLoad_BadEnvValues(t *testing.T) {
	for _, key := range []string{EnvRateLimit, EnvRateBurst, EnvVerbose} {
		t.Run(key, func(t *testing.T) {
			_, err := Load(LoadOptions{EnvFile: writeFile(t, ".env", ""), Getenv: envMap(map[string]string{key: "lots"})})
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad url", func(c *Config) { c.API.BaseURL = "localhost:3000" }, "base_url"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, "timeout"},
		{"negative timeout", func(c *Config) { c.API.Timeout = "-1s" }, "negative"},
		{"negative rate", func(c *Config) { c.API.RateLimit = -1 }, "rate_limit"},
		{"no session path", func(c *Config) { c.SessionPath = "" }, "session_path"},
		{"bad format", func(c *Config) { c.Format = "xml" }, "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
