// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc derives the client part of a rate limit key from a request.
type KeyFunc func(r *http.Request) string

const unknownClient = "unknown"

// ClientID returns the first X-Forwarded-For entry, else the host of the
// connection's remote address, else "unknown". The forwarded header is
// client-controlled unless a proxy overwrites it.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return RemoteAddrClientID(r)
}

// RemoteAddrClientID ignores forwarding headers and uses the connection address.
func RemoteAddrClientID(r *http.Request) string {
	if r.RemoteAddr == "" {
		return unknownClient
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	if host == "" {
		return unknownClient
	}
	return host
}
