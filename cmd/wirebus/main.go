// Package main implements the wirebus command line tool: a minimal
// publisher/subscriber for exercising a wirebus deployment from a
// terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/backend/channelbus"
	"github.com/c360/wirebus/backend/natsbus"
	"github.com/c360/wirebus/bus"
	"github.com/c360/wirebus/config"
	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/metric"
	"github.com/c360/wirebus/natsclient"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "wirebus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("wirebus failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cliCfg.Validate {
		slog.Info("configuration is valid")
		return nil
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	metricsRegistry := setupMetrics(cfg, logger)

	b, natsClient, err := setupBackend(signalCtx, cfg, logger)
	if err != nil {
		return err
	}
	if natsClient != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := natsClient.Close(closeCtx); err != nil {
				slog.Warn("NATS close failed", "error", err)
			}
		}()
	}

	if m := metricsRegistry.CoreMetrics(); m != nil && natsClient != nil {
		m.RecordBackendStatus(true)
		if rtt, err := natsClient.RTT(); err == nil {
			m.RecordBackendRTT(rtt)
		}
	}

	session, err := bus.NewContext(b, bus.InitOptions{
		Enclave: cfg.Enclave,
		Logger:  logger,
		Metrics: metricsRegistry,
	})
	if err != nil {
		return fmt.Errorf("create context: %w", err)
	}

	node, err := session.CreateNode(cliCfg.Node, cfg.Namespace)
	if err != nil {
		return fmt.Errorf("create node: %w", err)
	}

	switch cliCfg.Mode {
	case "pub":
		err = runPublisher(signalCtx, node, cliCfg)
	default:
		err = runSubscriber(signalCtx, node, cliCfg)
	}
	if err != nil {
		return err
	}

	if err := session.DestroyNode(node); err != nil {
		return fmt.Errorf("destroy node: %w", err)
	}
	if err := session.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := session.Finalize(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	slog.Info("wirebus shutdown complete")
	return nil
}

// loadConfig builds the configuration from defaults, the optional
// file, and environment overrides
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader.SetFile(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setupMetrics starts the scrape endpoint when enabled
func setupMetrics(cfg *config.Config, logger *slog.Logger) *metric.MetricsRegistry {
	if !cfg.Metrics.Enabled {
		return nil
	}

	registry := metric.NewMetricsRegistry()
	server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	go func() {
		logger.Info("metrics server starting", "address", server.Address())
		if err := server.Start(); err != nil {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return registry
}

// setupBackend creates the configured messaging backend. The returned
// client is non-nil only for the NATS backend and must be closed by the
// caller after the session is finalized.
func setupBackend(
	ctx context.Context, cfg *config.Config, logger *slog.Logger,
) (backend.Interface, *natsclient.Client, error) {
	if cfg.Backend == config.BackendChannel {
		return channelbus.New(channelbus.WithLogger(logger)), nil, nil
	}

	opts := []natsclient.ClientOption{
		natsclient.WithLogger(logger),
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}
	if cfg.NATS.TLS.Enabled {
		opts = append(opts, natsclient.WithTLS(cfg.NATS.TLS.CertFile, cfg.NATS.TLS.KeyFile, cfg.NATS.TLS.CAFile))
	}

	client, err := natsclient.NewClient(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS client: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	b, err := natsbus.New(client,
		natsbus.WithSubjectPrefix(cfg.NATS.SubjectPrefix),
		natsbus.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS backend: %w", err)
	}
	return b, client, nil
}

// runPublisher publishes a counter message at the configured rate until
// the context ends
func runPublisher(ctx context.Context, node *bus.Node, cliCfg *CLIConfig) error {
	pub, err := node.CreatePublisher(ctx, message.RawTypeSupport("wirebus/Raw"), cliCfg.Topic,
		bus.DefaultPublisherOptions())
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}

	slog.Info("publishing", "topic", pub.Topic, "rate", cliCfg.Rate)
	ticker := time.NewTicker(cliCfg.Rate)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			return node.DestroyPublisher(pub)
		case <-ticker.C:
			seq++
			payload := fmt.Sprintf("hello wirebus %d", seq)
			if err := pub.Publish(ctx, []byte(payload)); err != nil {
				slog.Warn("publish failed", "error", err)
				continue
			}
			slog.Debug("published", "seq", seq)
		}
	}
}

// runSubscriber prints every message taken on the topic until the
// context ends
func runSubscriber(ctx context.Context, node *bus.Node, cliCfg *CLIConfig) error {
	sub, err := node.CreateSubscription(ctx, message.RawTypeSupport("wirebus/Raw"), cliCfg.Topic,
		bus.DefaultSubscriptionOptions())
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	slog.Info("subscribed", "topic", sub.Topic)
	for {
		msg, taken, err := sub.Take(ctx)
		if err != nil {
			slog.Warn("take failed", "error", err)
			continue
		}
		if !taken {
			// Context ended.
			return node.DestroySubscription(sub)
		}
		fmt.Printf("[%s] %s\n", sub.Topic, msg.([]byte))
	}
}
