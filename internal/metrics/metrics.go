// Package metrics exposes Prometheus collectors for the wallet server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wallet"

var (
	// LedgerOperations counts ledger mutations by operation and outcome.
	LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_operations_total",
		Help:      "Ledger operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// WagePayments counts daily wage transactions appended by wage checks.
	WagePayments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wage_payments_total",
		Help:      "Daily wage transactions appended by wage checks.",
	})

	// WageDaysPaid counts the calendar days covered by wage payments.
	WageDaysPaid = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wage_days_paid_total",
		Help:      "Calendar days covered by daily wage payments.",
	})

	// RPCDuration observes handler latency by procedure and Connect code.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "RPC handler latency by procedure and code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure", "code"})

	// EventPublishFailures counts ledger events that could not be published.
	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Ledger events that failed to publish.",
	})
)

// Outcome labels for LedgerOperations.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ObserveLedger records one ledger operation.
func ObserveLedger(operation, outcome string) {
	LedgerOperations.WithLabelValues(operation, outcome).Inc()
}
