// SPDX-License-Identifier: MIT

// Command daemon runs the siteguard HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/siteguard/internal/config"
	"github.com/ManuGH/siteguard/internal/daemon"
	sglog "github.com/ManuGH/siteguard/internal/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

// maskURL removes user info from a URL string for safe logging.
func maskURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	return parsedURL.String()
}

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	checkOnly := flag.Bool("check", false, "validate configuration and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	sglog.Configure(sglog.Config{
		Level:   "info",
		Service: "siteguard",
		Version: version,
	})

	if *checkOnly {
		if err := checkConfig(os.Stdout, strings.TrimSpace(*configPath)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, strings.TrimSpace(*configPath)); err != nil {
		logger := sglog.WithComponent("daemon")
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon failed")
	}
}

// checkConfig loads and validates the configuration without starting anything.
func checkConfig(w io.Writer, configPath string) error {
	cfg, err := config.NewLoader(configPath, version).Load()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "configuration ok (backend=%s, origins=%s)\n",
		cfg.RateLimit.Backend, strings.Join(cfg.AllowedOrigins(), ","))
	return err
}

func run(ctx context.Context, configPath string) error {
	logger := sglog.WithComponent("daemon")

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(configPath, version)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Re-configure logger with loaded configuration
	sglog.Configure(sglog.Config{
		Level:   cfg.Log.Level,
		Service: cfg.Log.Service,
		Version: cfg.Version,
	})
	logger = sglog.WithComponent("daemon")

	source := "env+defaults"
	if configPath != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", configPath).
		Msg("configuration loaded")

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.Server.ListenAddr).
		Str("site_url", maskURL(cfg.CSRF.SiteURL)).
		Msg("starting siteguard")

	if !cfg.RateLimit.TrustForwardedFor {
		logger.Info().Msg("→ Client identity: connection address (X-Forwarded-For ignored)")
	}
	if !cfg.CSRF.EnforceToken {
		logger.Warn().
			Str("security", "origin-only").
			Msg("→ CSRF token enforcement disabled. Set SITEGUARD_CSRF_ENFORCE_TOKEN=true once clients send tokens.")
	}

	rt, err := daemon.Bootstrap(ctx, cfg, daemon.Options{})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	var metricsHandler = promhttp.Handler()
	if cfg.Server.MetricsAddr == "" {
		metricsHandler = nil
	}

	mgr, err := daemon.NewManager(cfg.Server, daemon.Deps{
		Logger:         logger,
		APIHandler:     rt.Handler,
		MetricsHandler: metricsHandler,
	})
	if err != nil {
		_ = rt.Close(context.WithoutCancel(ctx))
		return fmt.Errorf("create manager: %w", err)
	}
	rt.RegisterHooks(mgr)

	var cfgHolder *config.ConfigHolder
	if configPath != "" {
		cfgHolder = config.NewConfigHolder(cfg, loader)
		mgr.RegisterShutdownHook("config_watcher", func(context.Context) error {
			cfgHolder.Stop()
			return nil
		})
	}

	app := daemon.NewApp(logger, mgr, cfgHolder, rt.Guard)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info().Msg("server exiting")
	return nil
}
