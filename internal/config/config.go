package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvConfig    = "STOREFRONT_CONFIG"
	EnvAPIURL    = "STOREFRONT_API_URL"
	EnvSession   = "STOREFRONT_SESSION"
	EnvTimeout   = "STOREFRONT_TIMEOUT"
	EnvRateLimit = "STOREFRONT_RATE_LIMIT"
	EnvRateBurst = "STOREFRONT_RATE_BURST"
	EnvFormat    = "STOREFRONT_FORMAT"
	EnvVerbose   = "STOREFRONT_VERBOSE"
)

// Config holds all storefront client configuration.
type Config struct {
	// API is the remote storefront service.
	API APIConfig `yaml:"api"`

	// SessionPath is the SQLite file holding the login and cart snapshot.
	SessionPath string `yaml:"session_path"`

	// Output
	Format  string `yaml:"format"` // text, json
	Verbose bool   `yaml:"verbose"`
}

// APIConfig configures the HTTP client.
type APIConfig struct {
	BaseURL   string  `yaml:"base_url"`
	Timeout   string  `yaml:"timeout"`    // Go duration; empty or "0" means no client timeout
	RateLimit float64 `yaml:"rate_limit"` // requests per second; 0 disables
	RateBurst int     `yaml:"rate_burst"`
	UserAgent string  `yaml:"user_agent"`
}

// ValidFormats lists the output formats.
var ValidFormats = []string{"text", "json"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:3000",
			RateBurst: 1,
			UserAgent: "storefront-cli",
		},
		SessionPath: DefaultSessionPath(),
		Format:      "text",
	}
}

// DefaultSessionPath returns ~/.config/storefront/session.db (or the
// platform equivalent), falling back to the working directory.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront-session.db"
	}
	return filepath.Join(dir, "storefront", "session.db")
}

// LoadOptions says where configuration comes from. Zero values mean
// "use the default location, if present".
type LoadOptions struct {
	// Path is the YAML file. Empty uses $STOREFRONT_CONFIG; a missing file
	// is only an error when it was named explicitly.
	Path string

	// EnvFile is the dotenv file. Empty uses ".env" in the working directory.
	EnvFile string

	// Getenv reads the process environment. Defaults to os.Getenv.
	Getenv func(string) string
}

// Load builds the configuration: defaults, then the YAML file, then the
// dotenv file, then the process environment. Real environment variables
// win over the dotenv file.
func Load(opts LoadOptions) (*Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := DefaultConfig()

	path, explicit := opts.Path, opts.Path != ""
	if path == "" {
		path = getenv(EnvConfig)
		explicit = path != ""
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	dotenv, err := readDotenv(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := cfg.applyEnvOverrides(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	explicit := path != ""
	if path == "" {
		path = ".env"
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return values, nil
}

// applyEnvOverrides applies STOREFRONT_* variables.
func (c *Config) applyEnvOverrides(lookup func(string) string) error {
	if v := lookup(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := lookup(EnvSession); v != "" {
		c.SessionPath = v
	}
	if v := lookup(EnvTimeout); v != "" {
		c.API.Timeout = v
	}
	if v := lookup(EnvFormat); v != "" {
		c.Format = v
	}
	if v := lookup(EnvRateLimit); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.API.RateLimit = f
	}
	if v := lookup(EnvRateBurst); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateBurst, err)
		}
		c.API.RateBurst = n
	}
	if v := lookup(EnvVerbose); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbose, err)
		}
		c.Verbose = b
	}
	return nil
}

// GetTimeout returns the API timeout. Zero means none.
func (c *Config) GetTimeout() time.Duration {
	if c.API.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api base_url %q: must be an http(s) URL", c.API.BaseURL)
	}

	if c.API.Timeout != "" {
		d, err := time.ParseDuration(c.API.Timeout)
		if err != nil {
			return fmt.Errorf("invalid api timeout %q: %w", c.API.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid api timeout %q: must not be negative", c.API.Timeout)
		}
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("invalid api rate_limit %v: must not be negative", c.API.RateLimit)
	}

	if c.SessionPath == "" {
		return fmt.Errorf("session_path must not be empty")
	}

	for _, f := range ValidFormats {
		if c.Format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q (valid: %v)", c.Format, ValidFormats)
}
