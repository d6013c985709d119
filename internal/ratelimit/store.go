// SPDX-License-Identifier: MIT

package ratelimit

import (
	"context"
	"time"
)

// Entry is the fixed-window counter state for one key.
type Entry struct {
	Count     int
	ResetTime time.Time
}

// Store holds fixed-window counters.
type Store interface {
	// Hit increments the counter for key and returns the post-increment entry.
	// A missing or expired entry is replaced by {Count: 0, ResetTime: now+window}
	// before incrementing.
	Hit(ctx context.Context, key string, window time.Duration) (Entry, error)
	// Close releases background resources.
	Close() error
}
