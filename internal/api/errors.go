// SPDX-License-Identifier: MIT

package api

import "errors"

var (
	// ErrMissingGuard is returned when a server is created without a CSRF guard.
	ErrMissingGuard = errors.New("csrf guard is required")

	// ErrMissingLimiter is returned when a server is created without a rate limiter.
	ErrMissingLimiter = errors.New("rate limiter is required")
)
