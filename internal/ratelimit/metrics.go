// SPDX-License-Identifier: MIT

package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAllowed = "allowed"
	outcomeLimited = "limited"
)

var (
	decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siteguard",
			Name:      "ratelimit_decisions_total",
			Help:      "Rate limit decisions by preset and outcome",
		},
		[]string{"preset", "outcome"},
	)

	storeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "siteguard",
			Name:      "ratelimit_store_errors_total",
			Help:      "Counter store failures (requests allowed through)",
		},
	)

	globalRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "siteguard",
			Name:      "ratelimit_global_rejected_total",
			Help:      "Requests rejected by the global admission gate",
		},
	)
)
