package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payflow"

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts served requests by route pattern, method and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by route, method and status code.",
}, []string{"route", "method", "status"})

// HTTPDuration observes request latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Allocations counts allocation engine runs by mode and outcome.
var Allocations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "allocations_total",
	Help:      "Allocation engine runs by mode (automatic, manual) and outcome (ok, clamped, rejected).",
}, []string{"mode", "outcome"})

// TransactionsRecorded counts persisted ledger transactions by type.
var TransactionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "transactions_recorded_total",
	Help:      "Ledger transactions recorded by type (CREDIT, PAYMENT).",
}, []string{"type"})

// ─── Reminders ──────────────────────────────────────────────────────────────

// RemindersGenerated counts reminders created by level.
var RemindersGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reminders",
	Name:      "generated_total",
	Help:      "Payment reminders generated by level (1=due soon, 2=overdue, 3=overdue late).",
}, []string{"level"})

// Deliveries counts outbound notification attempts by channel and status.
var Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reminders",
	Name:      "deliveries_total",
	Help:      "Outbound notification attempts by channel and final status.",
}, []string{"channel", "status"})

// PendingDeliveries tracks the size of the last fetched delivery batch.
var PendingDeliveries = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "reminders",
	Name:      "pending_batch_size",
	Help:      "Number of pending outbound notifications picked in the last batch.",
})

// ─── Realtime ───────────────────────────────────────────────────────────────

// WSConnections tracks open websocket connections on this instance.
var WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "ws",
	Name:      "connections",
	Help:      "Open websocket connections on this instance.",
})

// WSDropped counts events dropped because a client buffer was full.
var WSDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ws",
	Name:      "events_dropped_total",
	Help:      "Websocket events dropped on full send buffers.",
})

// HTTPPanics counts handler panics caught by the recover middleware.
var HTTPPanics = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "panics_total",
	Help:      "Handler panics recovered and answered with a 500.",
})

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
