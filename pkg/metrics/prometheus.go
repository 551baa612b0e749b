package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// Interview metrics
	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	TurnsTotal        *prometheus.CounterVec
	TransitionsTotal  *prometheus.CounterVec
	SelectionsTotal   *prometheus.CounterVec
	SelectionScore    prometheus.Histogram

	// Capability metrics
	CapabilityCalls   *prometheus.CounterVec
	CapabilityLatency *prometheus.HistogramVec
	FallbacksTotal    *prometheus.CounterVec

	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	FinalScore         prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// New registers every metric on a fresh registry, so several instances
// (one per test) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	scoreBuckets := prometheus.LinearBuckets(0, 1, 11)

	return &Metrics{
		Registry: reg,

		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "interview_sessions_started_total",
			Help: "Total number of interviews started",
		}),
		SessionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "interview_sessions_completed_total",
			Help: "Total number of interviews that reached completion",
		}),
		TurnsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_turns_total",
			Help: "Candidate turns processed, by phase at receipt",
		}, []string{"phase"}),
		TransitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_phase_transitions_total",
			Help: "Phase transitions",
		}, []string{"from", "to"}),
		SelectionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_question_selections_total",
			Help: "Factual questions selected, by topic and mode",
		}, []string{"topic", "mode"}),
		SelectionScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_question_similarity",
			Help:    "Similarity of selected questions to the candidate fingerprint",
			Buckets: prometheus.LinearBuckets(-1, 0.2, 11),
		}),

		CapabilityCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "capability_calls_total",
			Help: "External capability calls",
		}, []string{"capability", "status"}),
		CapabilityLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capability_latency_seconds",
			Help:    "External capability latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"capability"}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "capability_fallbacks_total",
			Help: "Degraded results substituted for failed capability calls",
		}, []string{"capability"}),

		EvaluationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Background evaluations, by outcome",
		}, []string{"status"}),
		EvaluationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evaluation_duration_seconds",
			Help:    "Time to grade and store one report",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		FinalScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evaluation_final_score",
			Help:    "Distribution of final weighted scores",
			Buckets: scoreBuckets,
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

func (m *Metrics) RecordSessionCompleted() {
	if m == nil {
		return
	}
	m.SessionsCompleted.Inc()
}

func (m *Metrics) RecordTurn(phase string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(phase).Inc()
}

func (m *Metrics) RecordTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.TransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordSelection records a selected question; score is nil when unranked.
func (m *Metrics) RecordSelection(topic, mode string, score *float64) {
	if m == nil {
		return
	}
	m.SelectionsTotal.WithLabelValues(topic, mode).Inc()
	if score != nil {
		m.SelectionScore.Observe(*score)
	}
}

// RecordCapability records one external call and its latency.
func (m *Metrics) RecordCapability(capability string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CapabilityCalls.WithLabelValues(capability, status).Inc()
	m.CapabilityLatency.WithLabelValues(capability).Observe(duration.Seconds())
}

func (m *Metrics) RecordFallback(capability string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(capability).Inc()
}

func (m *Metrics) RecordEvaluation(status string, duration time.Duration, finalScore float64) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(status).Inc()
	m.EvaluationDuration.Observe(duration.Seconds())
	if status == "ok" {
		m.FinalScore.Observe(finalScore)
	}
}

func (m *Metrics) RecordHTTP(route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, httpCode(code)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(duration.Seconds())
}

func httpCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
