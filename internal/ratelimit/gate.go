// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// Gate is a process-wide token bucket applied before per-route limits.
// Whitelisted clients bypass it.
type Gate struct {
	limiter   *rate.Limiter
	whitelist []*net.IPNet
	keyFunc   KeyFunc
}

// NewGate creates a gate admitting rps requests per second with the given
// burst. Whitelist entries are IPs or CIDR blocks; invalid entries are skipped.
func NewGate(rps, burst int, whitelist []string, keyFunc KeyFunc) *Gate {
	if keyFunc == nil {
		keyFunc = RemoteAddrClientID
	}
	if burst < 1 {
		burst = 1
	}
	return &Gate{
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		whitelist: parseWhitelist(whitelist),
		keyFunc:   keyFunc,
	}
}

// Allow reports whether r may proceed and consumes a token if so.
func (g *Gate) Allow(r *http.Request) bool {
	if g.whitelisted(g.keyFunc(r)) {
		return true
	}
	if g.limiter.Allow() {
		return true
	}
	globalRejected.Inc()
	return false
}

func (g *Gate) whitelisted(client string) bool {
	if len(g.whitelist) == 0 {
		return false
	}
	ip := net.ParseIP(client)
	if ip == nil {
		return false
	}
	for _, n := range g.whitelist {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func parseWhitelist(entries []string) []*net.IPNet {
	var out []*net.IPNet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil {
				bits := 32
				if ip.To4() == nil {
					bits = 128
				}
				e = e + "/" + strconv.Itoa(bits)
			}
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			out = append(out, n)
		}
	}
	return out
}
