package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiapx_messages_published_total",
		Help: "Total number of events published, by transport, event type and result",
	}, []string{"transport", "event_type", "result"})

	MessagesConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiapx_messages_consumed_total",
		Help: "Total number of events received, by event type and outcome",
	}, []string{"event_type", "outcome"})

	ConnectAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiapx_connect_attempts_total",
		Help: "Total number of transport connect calls, by transport and result",
	}, []string{"transport", "result"})

	PipelineStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fiapx_pipeline_step_duration_seconds",
		Help:    "Duration of video processing pipeline steps",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"step"})

	PipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiapx_pipeline_runs_total",
		Help: "Total number of pipeline runs, by final status",
	}, []string{"status"})

	ActivePipelines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fiapx_active_pipelines",
		Help: "Number of videos currently being processed",
	})
)

// RecordDispatch counts one consumed message by event type and outcome.
func RecordDispatch(eventType, outcome string) {
	MessagesConsumedTotal.WithLabelValues(eventType, outcome).Inc()
}
