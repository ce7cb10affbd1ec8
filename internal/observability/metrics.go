package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "safety_alert"

// Metrics holds the Prometheus collectors for the monitor, the alert slot and
// notification delivery.
type Metrics struct {
	Ticks              *prometheus.CounterVec // labels: outcome={raised,idle,failed,skipped,panic}
	FeedFetchDuration  prometheus.Histogram
	FeedFailures       prometheus.Counter
	MonitorRunning     prometheus.Gauge
	FallbackEngaged    prometheus.Gauge
	AlertsRaised       *prometheus.CounterVec // labels: classification
	AlertsDeduplicated prometheus.Counter
	AlertsCleared      prometheus.Counter
	StateConflicts     prometheus.Counter

	NotificationsSent    *prometheus.CounterVec // labels: channel, outcome={success,error}
	NotificationsDropped *prometheus.CounterVec // labels: channel

	UserClassifications *prometheus.CounterVec // labels: risk_level
}

func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Ticks,
		m.FeedFetchDuration,
		m.FeedFailures,
		m.MonitorRunning,
		m.FallbackEngaged,
		m.AlertsRaised,
		m.AlertsDeduplicated,
		m.AlertsCleared,
		m.StateConflicts,
		m.NotificationsSent,
		m.NotificationsDropped,
		m.UserClassifications,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitor_ticks_total",
			Help:      "Monitoring loop ticks by outcome.",
		}, []string{"outcome"}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of feed provider requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FeedFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_failures_total",
			Help:      "Feed requests that ended in ProviderUnavailable.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_running",
			Help:      "1 while the monitoring loop is scheduled.",
		}),
		FallbackEngaged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fallback_engaged",
			Help:      "1 once the monitor has demoted the feed to synthetic data.",
		}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Alerts that entered the active slot, by classification tier.",
		}, []string{"classification"}),
		AlertsDeduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_deduplicated_total",
			Help:      "Raise calls ignored because the alert id was already processed.",
		}),
		AlertsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_cleared_total",
			Help:      "All-clear transitions.",
		}),
		StateConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_conflicts_total",
			Help:      "Rejected lifecycle transitions (clear while idle, malformed alerts).",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Channel deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		NotificationsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Deliveries dropped because the dispatch queue was full.",
		}, []string{"channel"}),
		UserClassifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_classifications_total",
			Help:      "User risk classifications by resulting risk level.",
		}, []string{"risk_level"}),
	}
}
