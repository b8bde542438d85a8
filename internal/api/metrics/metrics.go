// Package metrics defines the custom Prometheus metrics of the clinic
// reservation service. It is the single source of truth for metric names,
// labels and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic"

// ── Ledger metrics ────────────────────────────────────────────────────────────

// AppointmentOpsTotal counts ledger operations by outcome.
// Labels:
//   - op: "book", "cancel", "reschedule", "confirm", "add_slot", "remove"
//   - result: "ok", "slot_taken", "not_found", "error"
var AppointmentOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_operations_total",
		Help:      "Total number of appointment ledger operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// LoginsTotal counts authentication attempts.
// Label:
//   - result: "ok" or "invalid"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of authentication attempts, by result.",
	},
	[]string{"result"},
)

// ── Delivery metrics ──────────────────────────────────────────────────────────

// DeliveriesTotal counts out-of-band message deliveries.
// Label:
//   - result: "sent", "failed" or "dropped" (buffer full)
var DeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Total number of notification deliveries, by result.",
	},
	[]string{"result"},
)

// DeliveryQueueDepth tracks the number of messages waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var DeliveryQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "delivery_queue_depth",
		Help:      "Current number of messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// DeliveryDuration measures how long the gateway takes to send one message.
var DeliveryDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "delivery_duration_seconds",
		Help:      "Duration of a single gateway send.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Remote feed metrics ───────────────────────────────────────────────────────

// FeedRequestsTotal counts calls to the remote availability service.
// Labels:
//   - endpoint: "available" or "capacity"
//   - result: "ok" or "unavailable"
var FeedRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_requests_total",
		Help:      "Total number of remote availability feed requests, by endpoint and result.",
	},
	[]string{"endpoint", "result"},
)
