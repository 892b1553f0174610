// Package metrics provides observability for the verification oracle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks discovery, scoring and submission activity.
type Metrics struct {
	JobsEnqueued       *prometheus.CounterVec
	JobsCompleted      *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram
	FinalScore         prometheus.Histogram
	SubmissionDuration prometheus.Histogram
	SubmissionRetries  prometheus.Counter
	ActiveJobs         prometheus.Gauge
}

// New registers all oracle metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsEnqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_jobs_enqueued_total",
			Help: "Verification jobs accepted by the queue, by discovery origin",
		}, []string{"origin"}),
		JobsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_jobs_completed_total",
			Help: "Verification jobs resolved, by outcome",
		}, []string{"outcome"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oracle_pipeline_duration_seconds",
			Help:    "Duration of the full scoring pipeline per job",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		FinalScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oracle_final_score",
			Help:    "Distribution of aggregated trust scores",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		SubmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oracle_submission_duration_seconds",
			Help:    "Duration of on-chain submission including confirmation wait",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		SubmissionRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "oracle_submission_retries_total",
			Help: "Submission attempts beyond the first",
		}),
		ActiveJobs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "oracle_active_jobs",
			Help: "Identifiers currently queued or in-flight",
		}),
	}
}

// ObservePipeline records one pipeline run.
func (m *Metrics) ObservePipeline(start time.Time) {
	m.PipelineDuration.Observe(time.Since(start).Seconds())
}

// ObserveSubmission records one confirmed submission.
func (m *Metrics) ObserveSubmission(start time.Time) {
	m.SubmissionDuration.Observe(time.Since(start).Seconds())
}
