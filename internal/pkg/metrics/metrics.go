// Package metrics defines the custom Prometheus metrics for the eventboard
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics are registered on the default registry at init through
// promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventboard"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - op: "register" or "login"
//   - result: "ok", or the error kind on failure (e.g. "conflict", "unauthorized")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"op", "result"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventMutationsTotal counts successful event writes.
// Label:
//   - op: "create", "update" or "delete"
var EventMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_mutations_total",
		Help:      "Total number of successful event create, update and delete operations.",
	},
	[]string{"op"},
)

// RegistrationsTotal counts registration state changes.
// Label:
//   - op: "register" or "cancel"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successful registrations and cancellations.",
	},
	[]string{"op"},
)

// ── Cascade metrics ───────────────────────────────────────────────────────────

// CascadeRetriesTotal counts cascade retry attempts.
// Label:
//   - result: "ok", "failed" or "dropped" (budget exhausted or queue full)
var CascadeRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_retries_total",
		Help:      "Total number of registration cascade retry attempts, by result.",
	},
	[]string{"result"},
)

// CascadeQueueDepth tracks pending retries in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var CascadeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cascade_queue_depth",
		Help:      "Current number of cascade retries pending in each worker channel.",
	},
	[]string{"worker_id"},
)
