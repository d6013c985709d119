// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path this loader reads (may be empty).
func (l *Loader) Path() string {
	return l.configPath
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults,
// then validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// loadFile decodes the YAML file on top of cfg. Unknown keys are rejected.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return decodeStrict(data, cfg)
}

func decodeStrict(data []byte, cfg *AppConfig) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// mergeEnvConfig overlays environment variables. Every helper receives the
// current value as its default so unset variables keep file/default values.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	// Server
	cfg.Server.ListenAddr = l.envString("SITEGUARD_LISTEN", cfg.Server.ListenAddr)
	cfg.Server.MetricsAddr = l.envString("SITEGUARD_METRICS_LISTEN", cfg.Server.MetricsAddr)
	cfg.Server.ShutdownTimeout = l.envDuration("SITEGUARD_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	// Logging
	cfg.Log.Level = l.envString("SITEGUARD_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Service = l.envString("SITEGUARD_LOG_SERVICE", cfg.Log.Service)

	// CSRF
	cfg.CSRF.SiteURL = strings.TrimSpace(l.envString("SITEGUARD_SITE_URL", cfg.CSRF.SiteURL))
	cfg.CSRF.DevOrigins = l.envList("SITEGUARD_DEV_ORIGINS", cfg.CSRF.DevOrigins)
	cfg.CSRF.EnforceToken = l.envBool("SITEGUARD_CSRF_ENFORCE_TOKEN", cfg.CSRF.EnforceToken)
	cfg.CSRF.FailClosedOnMissingOrigin = l.envBool("SITEGUARD_CSRF_FAIL_CLOSED", cfg.CSRF.FailClosedOnMissingOrigin)
	cfg.CSRF.CookieSecure = l.envBool("SITEGUARD_COOKIE_SECURE", cfg.CSRF.CookieSecure)

	// Rate limiting
	cfg.RateLimit.Backend = strings.ToLower(l.envString("SITEGUARD_RATELIMIT_BACKEND", cfg.RateLimit.Backend))
	cfg.RateLimit.SweepInterval = l.envDuration("SITEGUARD_RATELIMIT_SWEEP_INTERVAL", cfg.RateLimit.SweepInterval)
	cfg.RateLimit.TrustForwardedFor = l.envBool("SITEGUARD_TRUST_FORWARDED_FOR", cfg.RateLimit.TrustForwardedFor)
	cfg.RateLimit.GlobalRPS = l.envInt("SITEGUARD_GLOBAL_RPS", cfg.RateLimit.GlobalRPS)
	cfg.RateLimit.GlobalBurst = l.envInt("SITEGUARD_GLOBAL_BURST", cfg.RateLimit.GlobalBurst)
	cfg.RateLimit.Whitelist = l.envList("SITEGUARD_RATELIMIT_WHITELIST", cfg.RateLimit.Whitelist)

	// Redis
	cfg.Redis.Addr = l.envString("SITEGUARD_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = l.envString("SITEGUARD_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = l.envInt("SITEGUARD_REDIS_DB", cfg.Redis.DB)

	// Tracing
	cfg.Tracing.Enabled = l.envBool("SITEGUARD_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = l.envString("SITEGUARD_TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString("SITEGUARD_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat("SITEGUARD_TRACING_SAMPLING_RATE", cfg.Tracing.SamplingRate)
}
