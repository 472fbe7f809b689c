// Package metrics defines and registers all custom Prometheus metrics for the
// identity store. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// via promauto; the HTTP router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Storage metrics ───────────────────────────────────────────────────────────

// StoreOperationsTotal counts user collection round trips.
// Labels:
//   - operation: insert, delete, replace, find_one, find_many, set, set_many, add_to_set, all
//   - result: "ok", "not_found", "duplicate" or "error"
var StoreOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_operations_total",
		Help:      "Total number of user collection operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// StoreOperationDuration measures a single user collection round trip.
// Label:
//   - operation: same values as StoreOperationsTotal
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of user collection operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersCreatedTotal counts users created through registration or import.
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created.",
	},
)

// LoginAttemptsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_password", "locked_out" or "unknown_user"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// ── Import metrics ────────────────────────────────────────────────────────────

// ImportQueueDepth tracks the number of import requests waiting per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ImportQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "import_queue_depth",
		Help:      "Current number of user imports pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ImportErrorsTotal counts imports that failed.
// Label:
//   - reason: short description of the failure (e.g. "create_failed", "rejected")
var ImportErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_errors_total",
		Help:      "Total number of user imports that failed.",
	},
	[]string{"reason"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method: HTTP method
//   - route: registered route template (e.g. "/v1/users/:id")
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method and route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
