// ABOUTME: Configuration loading and parsing for msu-mcp
// ABOUTME: Supports YAML or TOML files with ${VAR} expansion, MSU_* env overrides, and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/2389/msu-mcp/internal/msu"
)

// PathEnv names the environment variable holding an explicit config file path.
const PathEnv = "MSU_MCP_CONFIG"

// Defaults applied before the config file and environment are read.
const (
	DefaultGatewayTimeout  = 60 * time.Second
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultSessionTTL      = 30 * time.Minute
	DefaultMaxSessions     = 1000
	DefaultNATSURL         = "nats://127.0.0.1:4222"
	DefaultNATSSubject     = "msu.mcp"
	DefaultNATSName        = "msu-mcp"
	DefaultNATSTimeout     = 90 * time.Second
)

// Config represents the complete msu-mcp configuration
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway" toml:"gateway"`
	Merchant MerchantConfig `yaml:"merchant" toml:"merchant"`
	HTTP     HTTPConfig     `yaml:"http" toml:"http"`
	NATS     NATSConfig     `yaml:"nats" toml:"nats"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// GatewayConfig holds the MSU API endpoint settings
type GatewayConfig struct {
	URL            string        `yaml:"url" toml:"url"`
	Timeout        time.Duration `yaml:"-" toml:"-"`
	ErrorCodesFile string        `yaml:"error_codes_file,omitempty" toml:"error_codes_file,omitempty"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// MerchantConfig holds the merchant credentials sent with every query
type MerchantConfig struct {
	Merchant string `yaml:"merchant" toml:"merchant"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
}

// HTTPConfig holds the Streamable HTTP transport settings
type HTTPConfig struct {
	Addr            string        `yaml:"addr" toml:"addr"`
	JWTSecret       string        `yaml:"jwt_secret,omitempty" toml:"jwt_secret,omitempty"`
	RequireAuth     bool          `yaml:"require_auth" toml:"require_auth"`
	MaxSessions     int           `yaml:"max_sessions" toml:"max_sessions"`
	ShutdownTimeout time.Duration `yaml:"-" toml:"-"`
	SessionTTL      time.Duration `yaml:"-" toml:"-"`

	ShutdownTimeoutRaw string `yaml:"shutdown_timeout,omitempty" toml:"shutdown_timeout,omitempty"`
	SessionTTLRaw      string `yaml:"session_ttl,omitempty" toml:"session_ttl,omitempty"`
}

// NATSConfig holds the NATS request/reply transport settings
type NATSConfig struct {
	URL            string        `yaml:"url" toml:"url"`
	Subject        string        `yaml:"subject" toml:"subject"`
	Queue          string        `yaml:"queue,omitempty" toml:"queue,omitempty"`
	Name           string        `yaml:"name" toml:"name"`
	RequestTimeout time.Duration `yaml:"-" toml:"-"`

	RequestTimeoutRaw string `yaml:"request_timeout,omitempty" toml:"request_timeout,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// EnvPrefix is the prefix shared by every environment override.
const EnvPrefix = "MSU"

// envBindings names the MSU_* variables. Each field points at the Config
// field it overrides; envconfig writes through the pointer only when the
// variable is set.
type envBindings struct {
	Merchant         *string
	MerchantUser     *string `split_words:"true"`
	MerchantPassword *string `split_words:"true"`
	ErrorCodesFile   *string `split_words:"true"`
	API              struct {
		URL     *string
		Timeout *time.Duration
	}
	HTTP struct {
		Addr *string
	}
	JWT struct {
		Secret *string
	}
	NATS struct {
		URL *string
	}
	Log struct {
		Level  *string
		Format *string
	}
}

// Default returns a Config with every default applied and no credentials.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			URL:     msu.DefaultBaseURL,
			Timeout: DefaultGatewayTimeout,
		},
		HTTP: HTTPConfig{
			Addr:            DefaultHTTPAddr,
			MaxSessions:     DefaultMaxSessions,
			ShutdownTimeout: DefaultShutdownTimeout,
			SessionTTL:      DefaultSessionTTL,
		},
		NATS: NATSConfig{
			URL:            DefaultNATSURL,
			Subject:        DefaultNATSSubject,
			Name:           DefaultNATSName,
			RequestTimeout: DefaultNATSTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path on top of the defaults,
// then applies MSU_* environment overrides. Files ending in .toml are parsed
// as TOML, everything else as YAML. Environment variables in the format
// ${VAR_NAME} are expanded first. Load does not validate; callers pick the
// Validate* method matching what they are about to run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := decode(path, expandEnvVars(string(data)), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads the file named by MSU_MCP_CONFIG, or the default path when
// unset. A missing default file is not an error: defaults plus environment
// are used. It returns the path that was read, or "" when none was.
func LoadDefault() (*Config, string, error) {
	if path := os.Getenv(PathEnv); path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}

	path := DefaultPath()
	if path != "" {
		cfg, err := Load(path)
		if err == nil {
			return cfg, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
	}

	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

// DefaultPath returns $XDG_CONFIG_HOME/msu-mcp/config.yaml, falling back to
// ~/.config/msu-mcp/config.yaml. It returns "" when no home can be found.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "msu-mcp", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "msu-mcp", "config.yaml")
}

func decode(path, data string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(data, cfg)
		return err
	}
	return yaml.Unmarshal([]byte(data), cfg)
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnv overlays MSU_* variables on cfg.
func applyEnv(cfg *Config) error {
	env := envBindings{
		Merchant:         &cfg.Merchant.Merchant,
		MerchantUser:     &cfg.Merchant.User,
		MerchantPassword: &cfg.Merchant.Password,
	}
	env.ErrorCodesFile = &cfg.Gateway.ErrorCodesFile
	env.API.URL = &cfg.Gateway.URL
	env.API.Timeout = &cfg.Gateway.Timeout
	env.HTTP.Addr = &cfg.HTTP.Addr
	env.JWT.Secret = &cfg.HTTP.JWTSecret
	env.NATS.URL = &cfg.NATS.URL
	env.Log.Level = &cfg.Logging.Level
	env.Log.Format = &cfg.Logging.Format

	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// Credentials returns the merchant credentials as the gateway client expects them.
func (c *Config) Credentials() msu.Credentials {
	return msu.Credentials{
		Merchant: c.Merchant.Merchant,
		User:     c.Merchant.User,
		Password: c.Merchant.Password,
	}
}

// ValidateForServe checks what every transport needs: credentials and a
// usable gateway endpoint.
func (c *Config) ValidateForServe() error {
	if c.Merchant.Merchant == "" {
		return fmt.Errorf("merchant.merchant is required (or set MSU_MERCHANT)")
	}
	if c.Merchant.User == "" {
		return fmt.Errorf("merchant.user is required (or set MSU_MERCHANT_USER)")
	}
	if c.Merchant.Password == "" {
		return fmt.Errorf("merchant.password is required (or set MSU_MERCHANT_PASSWORD)")
	}

	u, err := url.Parse(c.Gateway.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("gateway.url must be an absolute http(s) URL, got %q", c.Gateway.URL)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// ValidateHTTP checks the HTTP transport settings.
func (c *Config) ValidateHTTP() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.HTTP.RequireAuth && c.HTTP.JWTSecret == "" {
		return fmt.Errorf("http.jwt_secret is required when http.require_auth is set")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdown_timeout must be positive")
	}
	if c.HTTP.SessionTTL <= 0 {
		return fmt.Errorf("http.session_ttl must be positive")
	}
	if c.HTTP.MaxSessions <= 0 {
		return fmt.Errorf("http.max_sessions must be positive")
	}
	return nil
}

// ValidateNATS checks the NATS transport settings.
func (c *Config) ValidateNATS() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required")
	}
	if c.NATS.RequestTimeout < 0 {
		return fmt.Errorf("nats.request_timeout must not be negative")
	}
	return nil
}

// Save writes cfg to path as YAML with owner-only permissions, since the
// file may hold the merchant password.
func (c *Config) Save(path string) error {
	out := *c
	out.Gateway.TimeoutRaw = c.Gateway.Timeout.String()
	out.HTTP.ShutdownTimeoutRaw = c.HTTP.ShutdownTimeout.String()
	out.HTTP.SessionTTLRaw = c.HTTP.SessionTTL.String()
	out.NATS.RequestTimeoutRaw = c.NATS.RequestTimeout.String()

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"gateway.timeout", cfg.Gateway.TimeoutRaw, &cfg.Gateway.Timeout},
		{"http.shutdown_timeout", cfg.HTTP.ShutdownTimeoutRaw, &cfg.HTTP.ShutdownTimeout},
		{"http.session_ttl", cfg.HTTP.SessionTTLRaw, &cfg.HTTP.SessionTTL},
		{"nats.request_timeout", cfg.NATS.RequestTimeoutRaw, &cfg.NATS.RequestTimeout},
	}

	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", d.name, d.raw, err)
		}
		*d.dst = v
	}

	return nil
}
