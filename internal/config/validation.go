// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"time"

	"github.com/ManuGH/siteguard/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.ListenAddr("Server.ListenAddr", cfg.Server.ListenAddr)
	if cfg.Server.MetricsAddr != "" {
		v.ListenAddr("Server.MetricsAddr", cfg.Server.MetricsAddr)
	}

	v.LogLevel("Log.Level", cfg.Log.Level)

	// Origins are compared as string prefixes, so they must be bare origins.
	if cfg.CSRF.SiteURL != "" {
		v.Origin("CSRF.SiteURL", cfg.CSRF.SiteURL)
	}
	for i, o := range cfg.CSRF.DevOrigins {
		v.Origin(fmt.Sprintf("CSRF.DevOrigins[%d]", i), o)
	}

	v.OneOf("RateLimit.Backend", cfg.RateLimit.Backend, []string{BackendMemory, BackendRedis})
	v.MinDuration("RateLimit.SweepInterval", cfg.RateLimit.SweepInterval, time.Second)
	v.Range("RateLimit.GlobalRPS", cfg.RateLimit.GlobalRPS, 0, 1_000_000)
	if cfg.RateLimit.GlobalRPS > 0 {
		v.Range("RateLimit.GlobalBurst", cfg.RateLimit.GlobalBurst, 1, 1_000_000)
	}
	v.IPOrCIDR("RateLimit.Whitelist", cfg.RateLimit.Whitelist)
	for name, p := range cfg.RateLimit.Presets {
		v.MinDuration("RateLimit.Presets."+name+".Window", p.Window, time.Millisecond)
		v.Range("RateLimit.Presets."+name+".MaxRequests", p.MaxRequests, 0, 1_000_000)
	}

	if cfg.RateLimit.Backend == BackendRedis {
		v.ListenAddr("Redis.Addr", cfg.Redis.Addr)
		v.Range("Redis.DB", cfg.Redis.DB, 0, 15)
	}

	if cfg.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		if cfg.Tracing.Endpoint == "" {
			v.AddError("Tracing.Endpoint", "endpoint is required when tracing is enabled", cfg.Tracing.Endpoint)
		}
		v.FloatRange("Tracing.SamplingRate", cfg.Tracing.SamplingRate, 0, 1)
	}

	return v.Err()
}
