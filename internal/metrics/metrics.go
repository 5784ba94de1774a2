package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors of the catalog queue service. A nil *Metrics is a no-op.
type Metrics struct {
	PipelineRuns        *prometheus.CounterVec
	ValidationIssues    *prometheus.CounterVec
	QueueTransitions    *prometheus.CounterVec
	RemoteCallDuration  *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func New(prefix string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PipelineRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_draft_pipeline_runs_total",
			Help: "Number of draft edit batches applied, by outcome",
		}, []string{"outcome"}),
		ValidationIssues: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_validation_issues_total",
			Help: "Validation issues reported, by issue code",
		}, []string{"code"}),
		QueueTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_queue_transitions_total",
			Help: "Queue item status transitions, by target status",
		}, []string{"status"}),
		RemoteCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_remote_call_duration_seconds",
			Help:    "Duration of collaborator requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests to the ops server",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of ops HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) RecordPipeline(outcome string) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordIssue(code string) {
	if m == nil {
		return
	}
	m.ValidationIssues.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordTransition(status string) {
	if m == nil {
		return
	}
	m.QueueTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRemoteCall(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RemoteCallDuration.WithLabelValues(op, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, s).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, s).Observe(d.Seconds())
}
