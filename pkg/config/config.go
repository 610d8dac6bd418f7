// Package config resolves SDK configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names. ESMS_CONFIG points at an alternative YAML
// file; the rest override individual fields.
const (
	EnvConfigFile      = "ESMS_CONFIG"
	EnvBaseURL         = "ESMS_BASE_URL"
	EnvTimeout         = "ESMS_TIMEOUT"
	EnvSessionKey      = "ESMS_SESSION_KEY"
	EnvStoreDir        = "ESMS_STORE_DIR"
	EnvRefreshInterval = "ESMS_REFRESH_INTERVAL"
	EnvRefreshLead     = "ESMS_REFRESH_LEAD"
	EnvLogLevel        = "ESMS_LOG_LEVEL"
	EnvOTLPEndpoint    = "ESMS_OTLP_ENDPOINT"
)

const defaultConfigFile = "esms.yaml"

// Config is the resolved SDK configuration.
type Config struct {
	// BaseURL of the ESMS API, e.g. https://esms.example.com.
	BaseURL string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// SessionKey is the store key the session record lives under.
	SessionKey string
	// StoreDir, when set, selects the durable file-backed store rooted
	// there; empty selects the in-memory store.
	StoreDir string
	// RefreshInterval is the binding's periodic refresh-check cadence.
	RefreshInterval time.Duration
	// RefreshLead is how close to expiry a token triggers renewal.
	RefreshLead time.Duration
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string
	// OTLPEndpoint enables trace export when non-empty (host:port).
	OTLPEndpoint string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timeout:         30 * time.Second,
		SessionKey:      "esms.session",
		RefreshInterval: time.Minute,
		RefreshLead:     5 * time.Minute,
		LogLevel:        "info",
	}
}

// fileConfig is the YAML document shape; durations are strings so the
// file can say "45s" or "2m".
type fileConfig struct {
	BaseURL         string `yaml:"baseUrl"`
	Timeout         string `yaml:"timeout"`
	SessionKey      string `yaml:"sessionKey"`
	StoreDir        string `yaml:"storeDir"`
	RefreshInterval string `yaml:"refreshInterval"`
	RefreshLead     string `yaml:"refreshLead"`
	LogLevel        string `yaml:"logLevel"`
	OTLPEndpoint    string `yaml:"otlpEndpoint"`
}

// Load resolves the configuration: defaults, then the YAML file (if
// present), then environment variables. A .env file in the working
// directory is honored before the environment is read.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv(EnvConfigFile)
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}
	if err := applyFile(&cfg, path, explicit); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants every consumer relies on.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("config: refresh interval must be positive, got %s", c.RefreshInterval)
	}
	if c.RefreshLead <= 0 {
		return fmt.Errorf("config: refresh lead must be positive, got %s", c.RefreshLead)
	}
	if c.SessionKey == "" {
		return fmt.Errorf("config: session key is empty")
	}
	if c.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
			return fmt.Errorf("config: base url: %w", err)
		}
	}
	return nil
}

func applyFile(cfg *Config, path string, explicit bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.SessionKey != "" {
		cfg.SessionKey = fc.SessionKey
	}
	if fc.StoreDir != "" {
		cfg.StoreDir = fc.StoreDir
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = fc.OTLPEndpoint
	}
	if err := setDuration(&cfg.Timeout, fc.Timeout); err != nil {
		return fmt.Errorf("config: %s timeout: %w", path, err)
	}
	if err := setDuration(&cfg.RefreshInterval, fc.RefreshInterval); err != nil {
		return fmt.Errorf("config: %s refreshInterval: %w", path, err)
	}
	if err := setDuration(&cfg.RefreshLead, fc.RefreshLead); err != nil {
		return fmt.Errorf("config: %s refreshLead: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvSessionKey); v != "" {
		cfg.SessionKey = v
	}
	if v := os.Getenv(EnvStoreDir); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" {
		cfg.OTLPEndpoint = v
	}
	if err := setDuration(&cfg.Timeout, os.Getenv(EnvTimeout)); err != nil {
		return fmt.Errorf("config: %s: %w", EnvTimeout, err)
	}
	if err := setDuration(&cfg.RefreshInterval, os.Getenv(EnvRefreshInterval)); err != nil {
		return fmt.Errorf("config: %s: %w", EnvRefreshInterval, err)
	}
	if err := setDuration(&cfg.RefreshLead, os.Getenv(EnvRefreshLead)); err != nil {
		return fmt.Errorf("config: %s: %w", EnvRefreshLead, err)
	}
	return nil
}

func setDuration(dst *time.Duration, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
