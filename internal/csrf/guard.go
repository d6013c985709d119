// SPDX-License-Identifier: MIT

package csrf

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/ManuGH/siteguard/internal/api/respond"
	"github.com/ManuGH/siteguard/internal/log"
	"github.com/ManuGH/siteguard/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Rejection messages written as {"error": ...} with status 403.
const (
	MsgInvalidOrigin = "Invalid origin"
	MsgInvalidToken  = "Invalid CSRF token"
)

// Options configures a Guard.
type Options struct {
	// AllowedOrigins are matched as plain string prefixes of the request's
	// Origin (or Referer) header.
	AllowedOrigins []string
	// EnforceToken additionally requires a matching double-submit token.
	EnforceToken bool
	// FailClosedOnMissingOrigin rejects requests carrying neither Origin nor Referer.
	FailClosedOnMissingOrigin bool
	// CookieSecure marks issued token cookies Secure.
	CookieSecure bool
}

// Guard validates state-changing requests. Its policy can be swapped at
// runtime with Update or SetAllowedOrigins.
type Guard struct {
	opts atomic.Pointer[Options]
}

// NewGuard creates a guard with the given options.
func NewGuard(opts Options) *Guard {
	g := &Guard{}
	g.Update(opts)
	return g
}

// Update replaces the guard's whole policy.
func (g *Guard) Update(opts Options) {
	opts.AllowedOrigins = append([]string(nil), opts.AllowedOrigins...)
	g.opts.Store(&opts)
}

// SetAllowedOrigins replaces only the origin allow-list.
// Concurrent Update calls are never overwritten with stale options.
func (g *Guard) SetAllowedOrigins(origins []string) {
	origins = append([]string(nil), origins...)
	for {
		cur := g.opts.Load()
		next := *cur
		next.AllowedOrigins = origins
		if g.opts.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// Options returns a copy of the current policy.
func (g *Guard) Options() Options {
	o := *g.opts.Load()
	o.AllowedOrigins = append([]string(nil), o.AllowedOrigins...)
	return o
}

// IssueToken sets a fresh token cookie on w and returns the token.
func (g *Guard) IssueToken(w http.ResponseWriter) string {
	return issue(w, g.opts.Load().CookieSecure)
}

// VerifyOrigin reports whether the request's Origin (falling back to Referer)
// starts with an allowed origin. Requests with neither header pass unless the
// guard fails closed.
func (g *Guard) VerifyOrigin(r *http.Request) bool {
	return verifyOrigin(g.opts.Load(), r)
}

func verifyOrigin(opts *Options, r *http.Request) bool {
	source := requestOrigin(r)
	if source == "" {
		return !opts.FailClosedOnMissingOrigin
	}
	for _, allowed := range opts.AllowedOrigins {
		if allowed != "" && strings.HasPrefix(source, allowed) {
			return true
		}
	}
	return false
}

func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	return r.Header.Get("Referer")
}

// Protect returns middleware that rejects POST, PUT, DELETE and PATCH requests
// failing the origin check, or the token check when enforcement is on.
// Other methods pass through untouched.
func (g *Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isStateChanging(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		opts := g.opts.Load()
		if !verifyOrigin(opts, r) {
			reject(w, r, reasonOrigin, MsgInvalidOrigin)
			return
		}
		if opts.EnforceToken && !VerifyToken(r) {
			reject(w, r, reasonToken, MsgInvalidToken)
			return
		}
		trace.SpanFromContext(r.Context()).SetAttributes(telemetry.CSRFAttributes("allowed", "")...)
		next.ServeHTTP(w, r)
	})
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

func reject(w http.ResponseWriter, r *http.Request, reason, msg string) {
	rejections.WithLabelValues(reason).Inc()
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.CSRFAttributes("rejected", reason)...)

	logger := log.WithComponentFromContext(r.Context(), "csrf")
	logger.Debug().
		Str(log.FieldEvent, "csrf.rejected").
		Str(log.FieldReason, reason).
		Str(log.FieldMethod, r.Method).
		Str(log.FieldPath, r.URL.Path).
		Str(log.FieldOrigin, requestOrigin(r)).
		Msg("request rejected")

	respond.Error(w, http.StatusForbidden, msg)
}
