// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by the HTTP stack and the request guards.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// CSRF guard attributes
	CSRFOutcomeKey = "csrf.outcome"
	CSRFReasonKey  = "csrf.reason"

	// Rate limiter attributes
	RateLimitPresetKey    = "ratelimit.preset"
	RateLimitLimitKey     = "ratelimit.limit"
	RateLimitRemainingKey = "ratelimit.remaining"
	RateLimitAllowedKey   = "ratelimit.allowed"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// CSRFAttributes describes a CSRF guard decision. reason is omitted when empty.
func CSRFAttributes(outcome, reason string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(CSRFOutcomeKey, outcome)}
	if reason != "" {
		attrs = append(attrs, attribute.String(CSRFReasonKey, reason))
	}
	return attrs
}

// RateLimitAttributes describes a rate limit decision.
func RateLimitAttributes(preset string, limit, remaining int, allowed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(RateLimitPresetKey, preset),
		attribute.Int(RateLimitLimitKey, limit),
		attribute.Int(RateLimitRemainingKey, remaining),
		attribute.Bool(RateLimitAllowedKey, allowed),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
