// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/siteguard/internal/api"
	"github.com/ManuGH/siteguard/internal/api/middleware"
	"github.com/ManuGH/siteguard/internal/config"
	"github.com/ManuGH/siteguard/internal/csrf"
	"github.com/ManuGH/siteguard/internal/health"
	"github.com/ManuGH/siteguard/internal/log"
	"github.com/ManuGH/siteguard/internal/ratelimit"
	"github.com/ManuGH/siteguard/internal/telemetry"
	"github.com/rs/zerolog"
)

const redisPingTimeout = 2 * time.Second

// Options carries collaborators that are not part of AppConfig.
type Options struct {
	Leads     api.LeadSink
	Referrals api.ReferralDirectory
}

// Runtime is the wired request path plus the resources it owns.
type Runtime struct {
	Handler   http.Handler
	Guard     *csrf.Guard
	Store     ratelimit.Store
	Health    *health.Manager
	Telemetry *telemetry.Provider

	logger zerolog.Logger
}

// Bootstrap builds telemetry, the rate limit store, the CSRF guard and the
// API router from cfg. On error everything already built is released.
func Bootstrap(ctx context.Context, cfg config.AppConfig, opts Options) (_ *Runtime, err error) {
	logger := log.WithComponent("daemon")
	rt := &Runtime{logger: logger}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
		}
	}()

	rt.Telemetry, err = telemetry.NewProvider(ctx, TelemetryConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	rt.Health = health.NewManager(cfg.Version)

	rt.Store, err = newStore(ctx, cfg, rt.Health)
	if err != nil {
		return nil, err
	}

	keyFunc := ratelimit.RemoteAddrClientID
	if cfg.RateLimit.TrustForwardedFor {
		keyFunc = ratelimit.ClientID
	}

	var gate *ratelimit.Gate
	if cfg.RateLimit.GlobalRPS > 0 {
		gate = ratelimit.NewGate(cfg.RateLimit.GlobalRPS, cfg.RateLimit.GlobalBurst, cfg.RateLimit.Whitelist, keyFunc)
	}

	rt.Guard = csrf.NewGuard(CSRFOptions(cfg))

	tracingService := ""
	if cfg.Tracing.Enabled {
		tracingService = cfg.Log.Service
	}

	srv, err := api.NewServer(api.Deps{
		Guard:     rt.Guard,
		Limiter:   ratelimit.New(rt.Store, ratelimit.WithKeyFunc(keyFunc)),
		Presets:   Presets(cfg.RateLimit.Presets),
		Leads:     opts.Leads,
		Referrals: opts.Referrals,
		Health:    rt.Health,
		Stack: middleware.StackConfig{
			CORSOrigins:           cfg.AllowedOrigins(),
			EnableSecurityHeaders: true,
			CSP:                   middleware.DefaultCSP,
			EnableMetrics:         true,
			TracingService:        tracingService,
			EnableLogging:         true,
			Gate:                  gate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("api server: %w", err)
	}
	rt.Handler = srv.Routes()

	logger.Info().
		Str("backend", cfg.RateLimit.Backend).
		Strs("allowed_origins", cfg.AllowedOrigins()).
		Bool("enforce_token", cfg.CSRF.EnforceToken).
		Bool("global_gate", gate != nil).
		Bool("tracing", rt.Telemetry.Enabled()).
		Msg("runtime initialized")

	return rt, nil
}

func newStore(ctx context.Context, cfg config.AppConfig, hm *health.Manager) (ratelimit.Store, error) {
	switch cfg.RateLimit.Backend {
	case config.BackendMemory, "":
		store := ratelimit.NewMemoryStore(nil, cfg.RateLimit.SweepInterval)
		store.Start(context.WithoutCancel(ctx))
		hm.RegisterChecker(health.NewFuncChecker("ratelimit_memory", func(context.Context) health.CheckResult {
			return health.CheckResult{
				Status:  health.StatusHealthy,
				Message: fmt.Sprintf("%d active keys", store.Len()),
			}
		}))
		return store, nil
	case config.BackendRedis:
		store, err := ratelimit.NewRedisStore(ctx, ratelimit.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log.WithComponent("ratelimit"))
		if err != nil {
			return nil, err
		}
		hm.RegisterChecker(health.NewPingChecker("ratelimit_redis", store.HealthCheck, redisPingTimeout))
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.RateLimit.Backend)
	}
}

// RegisterHooks registers the runtime's cleanup with m. Hooks run LIFO, so
// the tracer provider flushes last.
func (rt *Runtime) RegisterHooks(m Manager) {
	if rt.Telemetry != nil {
		m.RegisterShutdownHook("telemetry", rt.Telemetry.Shutdown)
	}
	if rt.Store != nil {
		m.RegisterShutdownHook("ratelimit_store", func(context.Context) error {
			return rt.Store.Close()
		})
	}
}

// Close releases the runtime's resources outside of a Manager.
func (rt *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if rt.Store != nil {
		firstErr = rt.Store.Close()
	}
	if rt.Telemetry != nil {
		if err := rt.Telemetry.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CSRFOptions maps configuration onto guard options.
func CSRFOptions(cfg config.AppConfig) csrf.Options {
	return csrf.Options{
		AllowedOrigins:            cfg.AllowedOrigins(),
		EnforceToken:              cfg.CSRF.EnforceToken,
		FailClosedOnMissingOrigin: cfg.CSRF.FailClosedOnMissingOrigin,
		CookieSecure:              cfg.CSRF.CookieSecure,
	}
}

// Presets applies configured overrides to the built-in presets. Unknown
// names are ignored.
func Presets(overrides map[string]config.PresetSettings) map[string]ratelimit.Config {
	presets := ratelimit.Presets()
	for name, o := range overrides {
		base, ok := presets[name]
		if !ok {
			continue
		}
		presets[name] = ratelimit.Override(base, o.Window, o.MaxRequests, o.Message)
	}
	return presets
}

// TelemetryConfig maps configuration onto the tracer provider config.
func TelemetryConfig(cfg config.AppConfig) telemetry.Config {
	return telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Log.Service,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	}
}
