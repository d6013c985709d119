// SPDX-License-Identifier: MIT

package csrf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonOrigin = "origin"
	reasonToken  = "token"
)

var rejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "siteguard",
		Name:      "csrf_rejections_total",
		Help:      "Total state-changing requests rejected by the CSRF guard",
	},
	[]string{"reason"},
)
