package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Mode        string
	Topic       string
	Node        string
	LogLevel    string
	LogFormat   string
	Rate        time.Duration
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("WIREBUS_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: WIREBUS_CONFIG)")

	flag.StringVar(&cfg.Mode, "mode", "sub",
		"Operating mode: pub or sub")

	flag.StringVar(&cfg.Topic, "topic", "chatter",
		"Topic to publish or subscribe on")

	flag.StringVar(&cfg.Node, "node", "wirebus_cli",
		"Node name")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("WIREBUS_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: WIREBUS_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("WIREBUS_LOG_FORMAT", "text"),
		"Log format: json, text (env: WIREBUS_LOG_FORMAT)")

	flag.DurationVar(&cfg.Rate, "rate", time.Second,
		"Publish interval in pub mode")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.Mode != "pub" && cfg.Mode != "sub" {
		return fmt.Errorf("invalid mode: %s (want pub or sub)", cfg.Mode)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - pluggable pub/sub middleware

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Subscribe on the in-process backend
  %s --mode=sub --topic=chatter

  # Publish over NATS once a second
  WIREBUS_BACKEND=nats %s --mode=pub --topic=chatter --rate=1s

  # Validate a configuration file
  %s --config=/etc/wirebus/config.json --validate

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], Version)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
