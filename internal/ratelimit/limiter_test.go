// SPDX-License-Identifier: MIT

package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*Limiter, *MockClock) {
	t.Helper()
	clock := NewMockClock(epoch)
	store := NewMemoryStore(clock, 0)
	t.Cleanup(func() { _ = store.Close() })
	return New(store, WithClock(clock)), clock
}

func request(path, client string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = client + ":5555"
	return req
}

func TestCheck_RemainingIsMonotonic(t *testing.T) {
	l, _ := newTestLimiter(t)
	cfg := Config{Window: time.Second, MaxRequests: 2}

	var got []int
	var allowed []bool
	for i := 0; i < 3; i++ {
		res := l.Check(request("/api/contact", "10.0.0.1"), cfg)
		got = append(got, res.Remaining)
		allowed = append(allowed, res.Allowed)
	}

	assert.Equal(t, []int{1, 0, 0}, got)
	assert.Equal(t, []bool{true, true, false}, allowed)
}

func TestCheck_WindowReset(t *testing.T) {
	l, clock := newTestLimiter(t)
	cfg := Config{Window: time.Second, MaxRequests: 1}

	require.True(t, l.Check(request("/x", "10.0.0.1"), cfg).Allowed)
	require.False(t, l.Check(request("/x", "10.0.0.1"), cfg).Allowed)

	clock.Advance(time.Second + time.Millisecond)

	res := l.Check(request("/x", "10.0.0.1"), cfg)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestCheck_KeyIsolation(t *testing.T) {
	l, _ := newTestLimiter(t)
	cfg := Config{Window: time.Minute, MaxRequests: 1}

	require.True(t, l.Check(request("/a", "10.0.0.1"), cfg).Allowed)
	require.False(t, l.Check(request("/a", "10.0.0.1"), cfg).Allowed)

	assert.True(t, l.Check(request("/b", "10.0.0.1"), cfg).Allowed, "other path")
	assert.True(t, l.Check(request("/a", "10.0.0.2"), cfg).Allowed, "other client")
}

func TestWithRateLimit_HeadersOnAllowed(t *testing.T) {
	l, _ := newTestLimiter(t)
	cfg := Config{Window: time.Minute, MaxRequests: 5}

	called := false
	h := l.WithRateLimit(cfg, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("/api/contact", "10.0.0.1"))

	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "5", rec.Header().Get(HeaderLimit))
	assert.Equal(t, "4", rec.Header().Get(HeaderRemaining))
	assert.Equal(t, "2026-03-01T12:01:00.000Z", rec.Header().Get(HeaderReset))
	assert.Empty(t, rec.Header().Get(HeaderRetryAfter))
}

func TestWithRateLimit_ZeroLimitRejects(t *testing.T) {
	l, _ := newTestLimiter(t)
	cfg := Config{Name: "zero", Window: 90 * time.Second, MaxRequests: 0, Message: "Slow down, friend."}
	before := testutil.ToFloat64(decisions.WithLabelValues("zero", outcomeLimited))

	called := false
	h := l.Middleware(cfg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("/api/uploads", "10.0.0.1"))

	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(HeaderLimit))
	assert.Equal(t, "0", rec.Header().Get(HeaderRemaining))
	assert.Equal(t, "90", rec.Header().Get(HeaderRetryAfter))

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Slow down, friend.", body.Error)
	assert.Equal(t, 90, body.RetryAfter)
	assert.Equal(t, before+1, testutil.ToFloat64(decisions.WithLabelValues("zero", outcomeLimited)))
}

func TestWithRateLimit_DefaultMessage(t *testing.T) {
	l, clock := newTestLimiter(t)
	cfg := Config{Window: 10 * time.Second, MaxRequests: 1}
	h := l.WithRateLimit(cfg, http.NotFoundHandler())

	h.ServeHTTP(httptest.NewRecorder(), request("/x", "10.0.0.1"))
	clock.Advance(2500 * time.Millisecond)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("/x", "10.0.0.1"))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"`+DefaultMessage+`","retryAfter":8}`, rec.Body.String())
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (Entry, error) {
	return Entry{}, errors.New("boom")
}
func (failingStore) Close() error { return nil }

func TestCheck_StoreErrorFailsOpen(t *testing.T) {
	l := New(failingStore{})
	before := testutil.ToFloat64(storeErrors)

	res := l.Check(request("/x", "10.0.0.1"), Config{Window: time.Minute, MaxRequests: 0})

	assert.True(t, res.Allowed)
	assert.Equal(t, before+1, testutil.ToFloat64(storeErrors))
}

func TestWithKeyFunc(t *testing.T) {
	clock := NewMockClock(epoch)
	l := New(NewMemoryStore(clock, 0), WithKeyFunc(RemoteAddrClientID))

	req := request("/x", "10.0.0.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "/x:10.0.0.1", l.Key(req))

	l = New(NewMemoryStore(clock, 0))
	assert.Equal(t, "/x:203.0.113.7", l.Key(req))
}

func TestPresets(t *testing.T) {
	p := Presets()
	require.Len(t, p, 4)
	assert.Equal(t, 15*time.Minute, p[PresetAuth].Window)
	assert.Equal(t, 5, p[PresetAuth].MaxRequests)
	assert.Equal(t, 10, p[PresetCreate].MaxRequests)
	assert.Equal(t, 100, p[PresetRead].MaxRequests)
	assert.Equal(t, 5, p[PresetUpload].MaxRequests)
	for name, cfg := range p {
		assert.Equal(t, name, cfg.Name)
		assert.NotEmpty(t, cfg.Message)
	}

	o := Override(ReadConfig, 30*time.Second, 0, "")
	assert.Equal(t, 30*time.Second, o.Window)
	assert.Equal(t, 0, o.MaxRequests)
	assert.Equal(t, ReadConfig.Message, o.Message)

	o = Override(ReadConfig, 0, 0, "custom")
	assert.Equal(t, ReadConfig.Window, o.Window)
	assert.Equal(t, 100, o.MaxRequests)
	assert.Equal(t, "custom", o.Message)
}
