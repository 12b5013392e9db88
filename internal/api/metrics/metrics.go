// Package metrics defines and registers all custom Prometheus metrics for the
// care-home CMS API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default registry on package init via
// promauto and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cms"

// ── Auth metrics ─────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "locked", "rate_limited", "invalid_request" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AccountLockoutsTotal counts logins rejected because the account was locked.
var AccountLockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_lockouts_total",
		Help:      "Total number of login attempts rejected by an account lock.",
	},
)

// RateLimitedTotal counts requests rejected by a rate limiter.
// Label:
//   - scope: limiter name (e.g. "login", "public_submit")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by a rate limiter.",
	},
	[]string{"scope"},
)

// AuthzDeniedTotal counts requests rejected by authentication or authorization.
// Label:
//   - reason: "unauthenticated", "token_expired", "forbidden", "csrf"
var AuthzDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denied_total",
		Help:      "Total number of requests denied before reaching a handler.",
	},
	[]string{"reason"},
)

// ── Audit metrics ────────────────────────────────────────────────────────────

// AuditWriteFailuresTotal counts audit entries the sink failed to persist.
var AuditWriteFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of audit entries that could not be persisted.",
	},
)

// ── Background work metrics ──────────────────────────────────────────────────

// JobsTotal counts background jobs by outcome.
// Labels:
//   - kind: job kind (e.g. "email", "review_import")
//   - result: "ok", "error" or "dropped"
var JobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "background_jobs_total",
		Help:      "Total number of background jobs, by kind and result.",
	},
	[]string{"kind", "result"},
)

// JobQueueDepth tracks pending jobs per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var JobQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "job_queue_depth",
		Help:      "Current number of jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// JobDuration measures how long a background job takes.
var JobDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of background jobs from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// ReviewsImportedTotal counts reviews inserted by the importer.
// Label:
//   - location: configured location name
var ReviewsImportedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_imported_total",
		Help:      "Total number of external reviews imported, by location.",
	},
	[]string{"location"},
)

// ── Content metrics ──────────────────────────────────────────────────────────

// UploadsTotal counts accepted and rejected uploads.
// Labels:
//   - kind: "image", "video", "document" or "unknown"
//   - result: "ok" or "rejected"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of file uploads, by kind and result.",
	},
	[]string{"kind", "result"},
)
