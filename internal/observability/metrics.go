package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Submissions     *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	ViewCalls       *prometheus.CounterVec
	DecodeAnomalies *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "ledger",
		Name:      "submissions_total",
		Help:      "Signed transactions handed to the signer, by outcome.",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "logistics",
		Subsystem: "ledger",
		Name:      "submission_duration_ms",
		Help:      "Time spent waiting for the signer in milliseconds.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"operation"})
	views := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "ledger",
		Name:      "view_calls_total",
		Help:      "View calls against the read endpoint, by outcome.",
	}, []string{"function", "outcome"})
	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "ledger",
		Name:      "decode_anomalies_total",
		Help:      "View responses whose shape did not match the expected form.",
	}, []string{"function"})

	reg.MustRegister(submissions, latency, views, anomalies)
	return &Metrics{
		Submissions:     submissions,
		LatencyMS:       latency,
		ViewCalls:       views,
		DecodeAnomalies: anomalies,
	}
}

func (m *Metrics) ObserveSubmission(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(operation, outcome).Inc()
	m.LatencyMS.WithLabelValues(operation).Observe(float64(elapsed.Milliseconds()))
}

func (m *Metrics) ObserveView(function, outcome string) {
	if m == nil {
		return
	}
	m.ViewCalls.WithLabelValues(function, outcome).Inc()
}

func (m *Metrics) ObserveDecodeAnomaly(function string) {
	if m == nil {
		return
	}
	m.DecodeAnomalies.WithLabelValues(function).Inc()
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
