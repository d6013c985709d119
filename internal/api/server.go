// SPDX-License-Identifier: MIT

// Package api wires the public HTTP surface: the middleware stack, the guarded
// form endpoints and the health endpoints.
package api

import (
	"net/http"

	"github.com/ManuGH/siteguard/internal/api/middleware"
	"github.com/ManuGH/siteguard/internal/csrf"
	"github.com/ManuGH/siteguard/internal/health"
	"github.com/ManuGH/siteguard/internal/log"
	"github.com/ManuGH/siteguard/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Deps holds the collaborators of a Server.
type Deps struct {
	Guard   *csrf.Guard
	Limiter *ratelimit.Limiter

	// Presets maps preset names to configs. Missing entries fall back to the
	// built-in presets.
	Presets map[string]ratelimit.Config

	// Leads receives validated contact and B2B leads. Defaults to a LogSink.
	Leads LeadSink

	// Referrals is optional; without it only the code format is checked.
	Referrals ReferralDirectory

	// Health serves /healthz and /readyz when set.
	Health *health.Manager

	Stack middleware.StackConfig
}

// Server owns the HTTP handlers.
type Server struct {
	guard     *csrf.Guard
	limiter   *ratelimit.Limiter
	presets   map[string]ratelimit.Config
	leads     LeadSink
	referrals ReferralDirectory
	health    *health.Manager
	stack     middleware.StackConfig
	logger    zerolog.Logger
}

// NewServer validates deps and creates a Server.
func NewServer(deps Deps) (*Server, error) {
	if deps.Guard == nil {
		return nil, ErrMissingGuard
	}
	if deps.Limiter == nil {
		return nil, ErrMissingLimiter
	}

	presets := ratelimit.Presets()
	for name, cfg := range deps.Presets {
		presets[name] = cfg
	}

	leads := deps.Leads
	if leads == nil {
		leads = NewLogSink()
	}

	return &Server{
		guard:     deps.Guard,
		limiter:   deps.Limiter,
		presets:   presets,
		leads:     leads,
		referrals: deps.Referrals,
		health:    deps.Health,
		stack:     deps.Stack,
		logger:    log.WithComponent("api"),
	}, nil
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := middleware.NewRouter(s.stack)

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}

	r.Route("/api", func(r chi.Router) {
		r.With(s.limit(ratelimit.PresetRead)).
			Get("/csrf-token", s.handleCSRFToken)

		r.With(s.guarded(ratelimit.PresetCreate)).
			Post("/contact", s.handleContact)
		r.With(s.guarded(ratelimit.PresetCreate)).
			Post("/leads/b2b", s.handleB2BLead)
		r.With(s.guarded(ratelimit.PresetAuth)).
			Post("/referrals/validate", s.handleValidateReferral)
		r.With(s.guarded(ratelimit.PresetUpload)).
			Post("/uploads", s.handleUpload)
	})

	return r
}

func (s *Server) limit(preset string) func(http.Handler) http.Handler {
	return s.limiter.Middleware(s.presets[preset])
}

// guarded counts the request against the preset before the CSRF check, so
// rejected forgeries still consume quota.
func (s *Server) guarded(preset string) func(http.Handler) http.Handler {
	return middleware.Chain(s.limit(preset), s.guard.Protect)
}
