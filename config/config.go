package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/names"
)

// Backend selector values
const (
	BackendChannel = "channel"
	BackendNATS    = "nats"
)

// Config is the complete process configuration
type Config struct {
	// Backend selects the messaging backend: "channel" or "nats"
	Backend string `json:"backend"`

	// Namespace is the default node namespace
	Namespace string `json:"namespace"`

	// Enclave names the security enclave the session runs in
	Enclave string `json:"enclave,omitempty"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level,omitempty"`

	NATS    NATSConfig    `json:"nats,omitempty"`
	Metrics MetricsConfig `json:"metrics,omitempty"`
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	URL           string        `json:"url,omitempty"`
	SubjectPrefix string        `json:"subject_prefix,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
	TLS           NATSTLSConfig `json:"tls,omitempty"`
}

// NATSTLSConfig for secure NATS connections
type NATSTLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
	CAFile   string `json:"ca_file,omitempty"`
}

// MetricsConfig controls the Prometheus scrape endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Validate checks the merged configuration
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendChannel, BackendNATS:
	default:
		return errors.WrapInvalid(
			fmt.Errorf("backend %q is not one of %q, %q", c.Backend, BackendChannel, BackendNATS),
			"Config", "Validate", "backend check")
	}

	if err := names.ValidateNamespace(c.Namespace); err != nil {
		return err
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("log level %q is not one of debug, info, warn, error", c.LogLevel),
			"Config", "Validate", "log level check")
	}

	if c.Backend == BackendNATS && c.NATS.URL == "" {
		return errors.WrapInvalid(
			fmt.Errorf("nats backend selected but no url configured"),
			"Config", "Validate", "nats url check")
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 0 || c.Metrics.Port > 65535) {
		return errors.WrapInvalid(
			fmt.Errorf("metrics port %d out of range", c.Metrics.Port),
			"Config", "Validate", "metrics port check")
	}

	return nil
}

// Loader builds a Config from defaults, an optional file, and the
// environment
type Loader struct {
	path      string
	envPrefix string
}

// NewLoader creates a configuration loader
func NewLoader() *Loader {
	return &Loader{envPrefix: "WIREBUS"}
}

// SetFile points the loader at a JSON configuration file
func (l *Loader) SetFile(path string) {
	l.path = path
}

// Load merges defaults, the file layer, and environment overrides,
// then validates the result
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	if l.path != "" {
		if err := l.loadFile(cfg); err != nil {
			return nil, err
		}
	}

	l.applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Backend:   BackendChannel,
		Namespace: "/",
		Enclave:   "/",
		LogLevel:  "info",
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			SubjectPrefix: "wirebus",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Path: "/metrics",
		},
	}
}

func (l *Loader) loadFile(cfg *Config) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("read %s", l.path))
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("parse %s", l.path))
	}
	return nil
}

func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(l.envPrefix + "_BACKEND"); val != "" {
		cfg.Backend = val
	}
	if val := os.Getenv(l.envPrefix + "_NAMESPACE"); val != "" {
		cfg.Namespace = val
	}
	if val := os.Getenv(l.envPrefix + "_ENCLAVE"); val != "" {
		cfg.Enclave = val
	}
	if val := os.Getenv(l.envPrefix + "_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	if val := os.Getenv(l.envPrefix + "_NATS_URL"); val != "" {
		cfg.NATS.URL = val
	}
	if val := os.Getenv(l.envPrefix + "_NATS_SUBJECT_PREFIX"); val != "" {
		cfg.NATS.SubjectPrefix = val
	}
	if val := os.Getenv(l.envPrefix + "_NATS_USERNAME"); val != "" {
		cfg.NATS.Username = val
	}
	if val := os.Getenv(l.envPrefix + "_NATS_PASSWORD"); val != "" {
		cfg.NATS.Password = val
	}
	if val := os.Getenv(l.envPrefix + "_NATS_TOKEN"); val != "" {
		cfg.NATS.Token = val
	}

	if val := os.Getenv(l.envPrefix + "_METRICS_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if val := os.Getenv(l.envPrefix + "_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
