// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_jobs_completed_total",
			Help: "Total number of report jobs completed",
		},
		[]string{"task_type"},
	)

	ReportJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_jobs_failed_total",
			Help: "Total number of report jobs failed",
		},
		[]string{"task_type", "error_code"},
	)

	ReportJobsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_jobs_skipped_total",
			Help: "Total number of report jobs skipped as already done",
		},
		[]string{"task_type"},
	)

	ReportJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "report_job_duration_seconds",
			Help: "Duration of report job processing in seconds",
		},
		[]string{"task_type"},
	)

	ReportJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "report_jobs_active",
			Help: "Number of report jobs currently in flight",
		},
		[]string{"task_type"},
	)
)
