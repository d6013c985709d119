// SPDX-License-Identifier: MIT

package ratelimit

import "errors"

// ErrStoreUnavailable wraps failures talking to the counter store.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")
