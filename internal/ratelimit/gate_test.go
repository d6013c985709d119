// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_BurstThenReject(t *testing.T) {
	g := NewGate(1, 2, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	assert.True(t, g.Allow(req))
	assert.True(t, g.Allow(req))
	assert.False(t, g.Allow(req))
}

func TestGate_Whitelist(t *testing.T) {
	g := NewGate(1, 1, []string{"192.168.0.0/16", "10.1.1.1", "garbage"}, nil)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.10:1234"
		assert.True(t, g.Allow(req), "whitelisted subnet")
	}
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.1.1:1234"
		assert.True(t, g.Allow(req), "whitelisted host")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.True(t, g.Allow(req))
	assert.False(t, g.Allow(req))
}
