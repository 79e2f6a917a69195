// Package metrics defines and registers all custom Prometheus metrics for the
// portal core. It is the single source of truth for metric names, labels, and
// help strings; counters are incremented at the transport and queue layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pnice"

// ── Transition metrics ────────────────────────────────────────────────────────

// TransitionsTotal counts ledger appends that committed.
// Labels:
//   - status: the new wire status applied (e.g. "Recu📦")
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of shipment status transitions committed.",
	},
	[]string{"status"},
)

// TransitionErrorsTotal counts transitions that failed.
// Label:
//   - reason: short failure class (e.g. "not_found", "weight_required", "conflict", "notification")
var TransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_errors_total",
		Help:      "Total number of shipment transitions that failed.",
	},
	[]string{"reason"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsSentTotal counts delivered notifications.
// Labels:
//   - status: the status the message announced
//   - policy: "blocking" or "best_effort"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of status notifications delivered.",
	},
	[]string{"status", "policy"},
)

// NotificationsFailedTotal counts dispatches that exhausted their retries.
var NotificationsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Total number of notifications that failed after all retry attempts.",
	},
	[]string{"policy"},
)

// NotificationsSuppressedTotal counts best-effort sends skipped because the
// same (tracking, status) pair was mailed within the suppression window.
var NotificationsSuppressedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_suppressed_total",
		Help:      "Total number of duplicate best-effort notifications suppressed.",
	},
)

// NotificationsDroppedTotal counts best-effort jobs dropped because a worker
// channel was full.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of best-effort notifications dropped due to a full worker queue.",
	},
)

// NotificationQueueDepth tracks pending jobs per fan-out worker channel.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of jobs pending in each fan-out worker channel.",
	},
	[]string{"worker_id"},
)

// ── Delivery batch metrics ────────────────────────────────────────────────────

// BatchesCreatedTotal counts successful batch deliveries.
var BatchesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_created_total",
		Help:      "Total number of delivery batches created.",
	},
)

// BatchShipments measures how many shipments each batch carried.
var BatchShipments = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_shipments",
		Help:      "Number of shipments per delivery batch.",
		Buckets:   []float64{1, 2, 5, 10, 20, 50},
	},
)

// BatchTotalCost measures the billed total per batch in dollars.
var BatchTotalCost = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_total_cost_dollars",
		Help:      "Billed total cost per delivery batch.",
		Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500},
	},
)
