// SPDX-License-Identifier: MIT

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/siteguard/internal/log"
)

// DefaultSweepInterval is how often expired counters are removed.
const DefaultSweepInterval = 5 * time.Minute

// MemoryStore is a process-local Store. Counters are lost on restart and are
// not shared between replicas.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
	clock   Clock

	interval time.Duration
	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryStore creates an empty store. A nil clock uses RealClock and a
// non-positive interval uses DefaultSweepInterval. Call Start to run the sweeper.
func NewMemoryStore(clock Clock, sweepInterval time.Duration) *MemoryStore {
	if clock == nil {
		clock = RealClock{}
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &MemoryStore{
		entries:  make(map[string]*Entry),
		clock:    clock,
		interval: sweepInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Hit implements Store. The check-and-increment is atomic per store.
func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (Entry, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || now.After(e.ResetTime) {
		e = &Entry{ResetTime: now.Add(window)}
		s.entries[key] = e
	}
	e.Count++
	return *e, nil
}

// Sweep deletes every entry whose reset time is before now and returns the
// number removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if now.After(e.ResetTime) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live counters.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start runs the periodic sweeper until ctx is cancelled or Close is called.
// Repeated calls are no-ops.
func (s *MemoryStore) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run(ctx)
}

func (s *MemoryStore) run(ctx context.Context) {
	defer close(s.done)

	logger := log.WithComponent("ratelimit")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(s.clock.Now()); n > 0 {
				logger.Debug().
					Str(log.FieldEvent, "ratelimit.sweep").
					Int("removed", n).
					Msg("expired counters removed")
			}
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		}
	}
}

// Close stops the sweeper (if started) and waits for it to exit.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	}
	return nil
}
