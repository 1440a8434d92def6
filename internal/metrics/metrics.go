package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway admission outcomes, labeled by the taxonomy the API reports.
var (
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricegate",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Metered gateway requests by outcome.",
	}, []string{"outcome"})

	UpstreamFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricegate",
		Subsystem: "upstream",
		Name:      "fetches_total",
		Help:      "Upstream price feed fetches by result.",
	}, []string{"result"})
)

const (
	OutcomeAccepted        = "accepted"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeRateLimited     = "rate_limited"
	OutcomeQuotaExceeded   = "quota_exceeded"
	OutcomeUpstreamError   = "upstream_error"
)
