package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	gatewayRequestsTotal  *prometheus.CounterVec
	gatewayLatencySeconds *prometheus.HistogramVec
	gatewayErrorsTotal    *prometheus.CounterVec
	codeRunsTotal         *prometheus.CounterVec
	codeRunSeconds        prometheus.Histogram
	interviewEventsTotal  *prometheus.CounterVec
	feedbackDeliveries    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the gateway.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gatewayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of gateway API requests served.",
		}, []string{"method", "route", "status"})

		gatewayLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_latency_seconds",
			Help:    "Latency distribution for gateway API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		gatewayErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_errors_total",
			Help: "Total number of error responses returned by gateway endpoints.",
		}, []string{"method", "route", "status"})

		codeRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "code_runs_total",
			Help: "Code executions submitted to the judge, by verdict category.",
		}, []string{"language", "category"})

		codeRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "code_run_seconds",
			Help:    "Wall time from submission to stabilized verdict.",
			Buckets: []float64{0.5, 1, 2, 3, 5, 8, 12},
		})

		interviewEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_events_total",
			Help: "Voice interview events processed, by event type.",
		}, []string{"type"})

		feedbackDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_deliveries_total",
			Help: "Interview feedback delivery attempts, by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			gatewayRequestsTotal,
			gatewayLatencySeconds,
			gatewayErrorsTotal,
			codeRunsTotal,
			codeRunSeconds,
			interviewEventsTotal,
			feedbackDeliveries,
		)
	})
}

// GatewayRequests exposes the counter for gateway requests.
func GatewayRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return gatewayRequestsTotal
}

// GatewayLatency exposes the latency histogram for gateway requests.
func GatewayLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gatewayLatencySeconds
}

// GatewayErrors exposes the counter for gateway error responses.
func GatewayErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return gatewayErrorsTotal
}

// CodeRuns exposes the counter for judged code executions.
func CodeRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return codeRunsTotal
}

// CodeRunDuration exposes the verdict wall-time histogram.
func CodeRunDuration() prometheus.Histogram {
	RegisterMetrics()
	return codeRunSeconds
}

// InterviewEvents exposes the counter for processed voice events.
func InterviewEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return interviewEventsTotal
}

// FeedbackDeliveries exposes the counter for feedback delivery outcomes.
func FeedbackDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return feedbackDeliveries
}
