// SPDX-License-Identifier: MIT

// Package ratelimit implements fixed-window, per-route and per-client request
// limits as HTTP middleware, plus a global token-bucket admission gate.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/siteguard/internal/api/respond"
	"github.com/ManuGH/siteguard/internal/log"
	"github.com/ManuGH/siteguard/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMessage is returned in the 429 body when a Config has no Message.
const DefaultMessage = "Too many requests, please try again later."

// Response headers.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// resetLayout is ISO-8601 UTC with millisecond precision.
const resetLayout = "2006-01-02T15:04:05.000Z"

// Config is one route's limit policy.
type Config struct {
	// Name labels metrics and logs; presets set it.
	Name        string
	Window      time.Duration
	MaxRequests int
	Message     string
}

// Result is the outcome of one Check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetTime time.Time
}

// Limiter applies Configs against a Store.
type Limiter struct {
	store   Store
	keyFunc KeyFunc
	clock   Clock
	logger  zerolog.Logger
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithKeyFunc replaces ClientID as the client identity source.
func WithKeyFunc(fn KeyFunc) Option {
	return func(l *Limiter) {
		if fn != nil {
			l.keyFunc = fn
		}
	}
}

// WithClock sets the clock used for Retry-After calculation.
func WithClock(c Clock) Option {
	return func(l *Limiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// New creates a limiter backed by store.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:   store,
		keyFunc: ClientID,
		clock:   RealClock{},
		logger:  log.WithComponent("ratelimit"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Key returns the counter key for r: "<path>:<client>".
func (l *Limiter) Key(r *http.Request) string {
	return r.URL.Path + ":" + l.keyFunc(r)
}

// Check records one request against cfg and reports whether it is allowed.
// Store failures fail open.
func (l *Limiter) Check(r *http.Request, cfg Config) Result {
	key := l.Key(r)

	entry, err := l.store.Hit(r.Context(), key, cfg.Window)
	if err != nil {
		storeErrors.Inc()
		logger := log.WithContext(r.Context(), l.logger)
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "ratelimit.store_error").
			Str(log.FieldPreset, cfg.Name).
			Msg("rate limit store failed, allowing request")
		return Result{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests,
			ResetTime: l.clock.Now().Add(cfg.Window),
		}
	}

	return Result{
		Allowed:   entry.Count <= cfg.MaxRequests,
		Limit:     cfg.MaxRequests,
		Remaining: max(0, cfg.MaxRequests-entry.Count),
		ResetTime: entry.ResetTime,
	}
}

// WithRateLimit wraps next with the limit described by cfg.
func (l *Limiter) WithRateLimit(cfg Config, next http.Handler) http.Handler {
	label := cfg.Name
	if label == "" {
		label = "custom"
	}
	msg := cfg.Message
	if msg == "" {
		msg = DefaultMessage
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := l.Check(r, cfg)

		h := w.Header()
		h.Set(HeaderLimit, strconv.Itoa(res.Limit))
		h.Set(HeaderRemaining, strconv.Itoa(res.Remaining))
		h.Set(HeaderReset, res.ResetTime.UTC().Format(resetLayout))
		trace.SpanFromContext(r.Context()).SetAttributes(
			telemetry.RateLimitAttributes(label, res.Limit, res.Remaining, res.Allowed)...)

		if res.Allowed {
			decisions.WithLabelValues(label, outcomeAllowed).Inc()
			next.ServeHTTP(w, r)
			return
		}

		decisions.WithLabelValues(label, outcomeLimited).Inc()
		retryAfter := retryAfterSeconds(res.ResetTime.Sub(l.clock.Now()))

		logger := log.WithContext(r.Context(), l.logger)
		logger.Info().
			Str(log.FieldEvent, "ratelimit.limited").
			Str(log.FieldPreset, label).
			Str(log.FieldPath, r.URL.Path).
			Str(log.FieldClientID, l.keyFunc(r)).
			Int("retry_after", retryAfter).
			Msg("request rate limited")

		h.Set(HeaderRetryAfter, strconv.Itoa(retryAfter))
		respond.JSON(w, http.StatusTooManyRequests, limitedBody{
			Error:      msg,
			RetryAfter: retryAfter,
		})
	})
}

// Middleware is WithRateLimit in func(http.Handler) http.Handler form.
func (l *Limiter) Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return l.WithRateLimit(cfg, next)
	}
}

type limitedBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
