// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"

	"github.com/ManuGH/siteguard/internal/api/respond"
	"github.com/ManuGH/siteguard/internal/ratelimit"
)

// GlobalRateLimit rejects requests the admission gate refuses with 429.
// A nil gate disables the check.
func GlobalRateLimit(gate *ratelimit.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if gate == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Allow(r) {
				w.Header().Set(ratelimit.HeaderRetryAfter, "1")
				respond.Error(w, http.StatusTooManyRequests, ratelimit.DefaultMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
