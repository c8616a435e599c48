// Package metrics defines and registers all custom Prometheus metrics for the
// checkout bridge. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "checkout"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionChecksTotal counts credential expiry evaluations.
// Label:
//   - result: "valid" or "expired"
var SessionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_total",
		Help:      "Total number of credential expiry checks, by result.",
	},
	[]string{"result"},
)

// SessionExpiryPromptsTotal counts session-expired prompts actually shown.
// Label:
//   - source: "timer", "api" (401/403 response) or "action" (pre-action check)
var SessionExpiryPromptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expiry_prompts_total",
		Help:      "Total number of session-expired prompts shown, by trigger.",
	},
	[]string{"source"},
)

// SessionLogoutsTotal counts forced logouts.
// Label:
//   - path: "callback" or "fallback"
var SessionLogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_logouts_total",
		Help:      "Total number of forced logouts, by path taken.",
	},
	[]string{"path"},
)

// ── Checkout metrics ──────────────────────────────────────────────────────────

// CheckoutsStartedTotal counts orders created with an approval link.
// Label:
//   - discount: "true" when a customer-type discount applied
var CheckoutsStartedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_started_total",
		Help:      "Total number of checkouts started.",
	},
	[]string{"discount"},
)

// NavigationsClassifiedTotal counts surface URLs by classification.
// Label:
//   - kind: "intermediate", "success" or "cancel"
var NavigationsClassifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "navigations_classified_total",
		Help:      "Total number of checkout surface URLs classified, by kind.",
	},
	[]string{"kind"},
)

// SurfaceEventsIgnoredTotal counts surface events dropped without action.
// Label:
//   - reason: "duplicate" (URL already processed) or "busy" (not awaiting approval)
var SurfaceEventsIgnoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "surface_events_ignored_total",
		Help:      "Total number of checkout surface events ignored, by reason.",
	},
	[]string{"reason"},
)

// CheckoutOutcomesTotal counts checkouts reaching a resting state.
// Label:
//   - outcome: "confirmed", "pending", "cancelled" or "error"
var CheckoutOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outcomes_total",
		Help:      "Total number of checkout outcomes.",
	},
	[]string{"outcome"},
)

// CaptureDuration measures the backend capture round trip.
// Label:
//   - result: "completed", "pending" or "error"
var CaptureDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "capture_duration_seconds",
		Help:      "Duration of the order capture call.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// PurchaseRegistrationsTotal counts purchase registration attempts.
// Label:
//   - result: "ok", "failed" or "duplicate" (blocked by the at-most-once guard)
var PurchaseRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_registrations_total",
		Help:      "Total number of purchase registration attempts, by result.",
	},
	[]string{"result"},
)

// SurfaceQueueDepth tracks events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var SurfaceQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "surface_queue_depth",
		Help:      "Current number of surface events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
