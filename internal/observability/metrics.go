package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	SessionEvents  *prometheus.CounterVec
	Turns          *prometheus.CounterVec
	OracleLatency  prometheus.Histogram
	OracleErrors   *prometheus.CounterVec
	Submissions    *prometheus.CounterVec
	ScoreDeltas    prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live tutoring sessions.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle events by type.",
		}, []string{"event"}),
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turn exchanges by outcome.",
		}, []string{"outcome"}),
		OracleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_latency_ms",
			Help:      "Completion oracle round-trip latency in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 16000, 30000},
		}),
		OracleErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_errors_total",
			Help:      "Oracle failures by code.",
		}, []string{"code"}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Finalized submissions by result.",
		}, []string{"result"}),
		ScoreDeltas: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_delta",
			Help:      "Committed score gain per successful turn.",
			Buckets:   []float64{0, 5, 10, 20, 30, 50, 75, 100},
		}),
	}
}

func (m *Metrics) ObserveOracleLatency(d time.Duration) {
	m.OracleLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
