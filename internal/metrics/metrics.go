package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageOutcomes counts stage results by stage and status
	StageOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcribe_flow_stage_outcomes_total",
		Help: "Pipeline stage results by stage and status",
	}, []string{"stage", "status"})

	// StageDuration tracks how long stages that actually ran took
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transcribe_flow_stage_duration_seconds",
		Help:    "Duration of executed pipeline stages",
		Buckets: prometheus.ExponentialBuckets(0.5, 2.0, 14), // 0.5s to ~2h
	}, []string{"stage"})

	// Jobs counts finished jobs by result
	Jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcribe_flow_jobs_total",
		Help: "Finished pipeline jobs by result",
	}, []string{"result"})

	// JobsInFlight is the number of jobs currently running in watch mode
	JobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transcribe_flow_jobs_in_flight",
		Help: "Jobs currently being processed",
	})
)

// ObserveStage records one stage outcome. Durations are only recorded for
// stages that ran.
func ObserveStage(stage, status string, ran bool, elapsed time.Duration) {
	StageOutcomes.WithLabelValues(stage, status).Inc()
	if ran {
		StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	}
}

// ObserveJob records a finished job.
func ObserveJob(succeeded bool) {
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	Jobs.WithLabelValues(result).Inc()
}
