// SPDX-License-Identifier: MIT

package middleware

import "net/http"

// Chain composes middlewares so the first argument is the outermost.
//
//	Chain(limiter.Middleware(ratelimit.CreateConfig), guard.Protect)(handler)
func Chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
