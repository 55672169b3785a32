package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ledger and HTTP metrics exposed on /metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "openwallet",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	BalanceMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openwallet",
		Subsystem: "ledger",
		Name:      "balance_mutations_total",
		Help:      "Balance mutations by transaction type and terminal status.",
	}, []string{"type", "status"})

	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openwallet",
		Subsystem: "ledger",
		Name:      "transfers_total",
		Help:      "Two-leg transfers by outcome.",
	}, []string{"outcome"})

	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openwallet",
		Subsystem: "ucp",
		Name:      "intents_total",
		Help:      "Processed commerce intents by kind and terminal status.",
	}, []string{"kind", "status"})
)

// Transfer outcomes.
const (
	TransferCompleted   = "completed"
	TransferFailed      = "failed"
	TransferCompensated = "compensated"
	TransferPartial     = "partial_failure"
)
