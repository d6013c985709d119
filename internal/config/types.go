// SPDX-License-Identifier: MIT

// Package config provides configuration management for siteguard.
//
// Precedence is ENV > YAML file > defaults. See Loader.
package config

import (
	"strings"
	"time"
)

// Rate limit storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Local development origins that are always trusted in addition to the site URL.
var defaultDevOrigins = []string{"http://localhost:3000", "http://localhost:3001"}

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	Server    ServerSettings    `yaml:"server"`
	Log       LogSettings       `yaml:"log"`
	CSRF      CSRFSettings      `yaml:"csrf"`
	RateLimit RateLimitSettings `yaml:"rateLimit"`
	Redis     RedisSettings     `yaml:"redis"`
	Tracing   TracingSettings   `yaml:"tracing"`
}

// ServerSettings configures the API and metrics listeners.
type ServerSettings struct {
	ListenAddr      string        `yaml:"listenAddr"`
	MetricsAddr     string        `yaml:"metricsAddr"` // empty disables the metrics server
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LogSettings configures the global logger.
type LogSettings struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// CSRFSettings configures the CSRF guard.
type CSRFSettings struct {
	// SiteURL is the production origin, e.g. "https://www.example.com".
	SiteURL    string   `yaml:"siteURL"`
	DevOrigins []string `yaml:"devOrigins"`

	// EnforceToken turns on double-submit token checks in addition to origin checks.
	EnforceToken bool `yaml:"enforceToken"`
	// FailClosedOnMissingOrigin rejects mutating requests with neither Origin nor Referer.
	FailClosedOnMissingOrigin bool `yaml:"failClosedOnMissingOrigin"`
	// CookieSecure adds the Secure attribute to the token cookie.
	CookieSecure bool `yaml:"cookieSecure"`
}

// PresetSettings overrides one named rate limit preset.
type PresetSettings struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"maxRequests"`
	Message     string        `yaml:"message"`
}

// RateLimitSettings configures per-route limits and the global admission gate.
type RateLimitSettings struct {
	Backend       string        `yaml:"backend"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
	// TrustForwardedFor derives client identity from X-Forwarded-For. Only safe
	// behind a proxy that overwrites the header.
	TrustForwardedFor bool `yaml:"trustForwardedFor"`

	GlobalRPS   int      `yaml:"globalRPS"` // 0 disables the global gate
	GlobalBurst int      `yaml:"globalBurst"`
	Whitelist   []string `yaml:"whitelist"`

	Presets map[string]PresetSettings `yaml:"presets"`
}

// RedisSettings configures the shared counter store.
type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TracingSettings configures OpenTelemetry export.
type TracingSettings struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // grpc or http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Server: ServerSettings{
			ListenAddr:      ":8080",
			MetricsAddr:     ":9090",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogSettings{
			Level:   "info",
			Service: "siteguard",
		},
		CSRF: CSRFSettings{
			DevOrigins: append([]string(nil), defaultDevOrigins...),
		},
		RateLimit: RateLimitSettings{
			Backend:           BackendMemory,
			SweepInterval:     5 * time.Minute,
			TrustForwardedFor: true,
			GlobalBurst:       50,
		},
		Redis: RedisSettings{
			Addr: "localhost:6379",
		},
		Tracing: TracingSettings{
			Exporter:     "http",
			Endpoint:     "localhost:4318",
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}

// AllowedOrigins returns the CSRF origin allow-list: the site URL (if set)
// followed by the development origins.
func (c AppConfig) AllowedOrigins() []string {
	out := make([]string, 0, 1+len(c.CSRF.DevOrigins))
	if site := strings.TrimSpace(c.CSRF.SiteURL); site != "" {
		out = append(out, site)
	}
	for _, o := range c.CSRF.DevOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
