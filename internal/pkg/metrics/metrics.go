// Package metrics defines and registers all custom Prometheus metrics for the
// studio API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studio"

// ── Ledger metrics ────────────────────────────────────────────────────────────

// LedgerDebitsTotal counts debit attempts.
// Label:
//   - result: "ok", "insufficient" or "not_found"
var LedgerDebitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_debits_total",
		Help:      "Total number of coin debit attempts, by result.",
	},
	[]string{"result"},
)

// LedgerCreditsTotal counts applied credits.
// Label:
//   - reason: "credit", "daily_reward", "approval"
var LedgerCreditsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_credits_total",
		Help:      "Total number of coin credits applied, by reason.",
	},
	[]string{"reason"},
)

// TransactionsTotal counts payment submissions and their review outcome.
// Label:
//   - status: "pending" on submission, "approved" or "rejected" on review
var TransactionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Total number of payment transactions, by status reached.",
	},
	[]string{"status"},
)

// ── Paid operation metrics ────────────────────────────────────────────────────

// PaidOperationsTotal counts paid studio actions by their settled state.
// Labels:
//   - feature: "generate", "edit", "analyze"
//   - state:   "blocked", "settled_success", "settled_failure"
var PaidOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "paid_operations_total",
		Help:      "Total number of paid studio operations, by feature and final state.",
	},
	[]string{"feature", "state"},
)

// PaidOperationsInFlight tracks operations currently waiting on the image backend.
var PaidOperationsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "paid_operations_in_flight",
		Help:      "Current number of paid operations waiting on the image backend.",
	},
	[]string{"feature"},
)

// ImageBackendDuration measures the external call alone.
var ImageBackendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_backend_duration_seconds",
		Help:      "Duration of calls to the image model backend.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
	},
	[]string{"feature"},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// KVFallbackTotal counts storage operations served by the in-memory fallback.
// Label:
//   - op: "probe", "get", "set"
var KVFallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kv_fallback_total",
		Help:      "Total number of key-value operations that fell back to memory.",
	},
	[]string{"op"},
)

// KVCorruptTotal counts persisted collections discarded because they failed to parse.
var KVCorruptTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kv_corrupt_total",
		Help:      "Total number of corrupted persisted values discarded, by key.",
	},
	[]string{"key"},
)

// AuditEventsDropped counts ledger events dropped because a worker queue was full.
var AuditEventsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of ledger audit events dropped on a full queue.",
	},
)
