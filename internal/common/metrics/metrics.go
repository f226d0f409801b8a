// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CandidatesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_evaluated_total",
			Help: "Number of universities scored by the matching engine",
		},
		[]string{"operation"},
	)

	ResultsRestricted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_results_restricted_total",
			Help: "Number of search responses trimmed by the access tier gate",
		},
		[]string{"reason"},
	)

	CatalogCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Redis cache lookups for catalog, profile and subscription reads",
		},
		[]string{"cache", "result"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of candidate queries against the catalog backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
)
