package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus instruments.
type Metrics struct {
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	Events         *prometheus.CounterVec
	Patches        prometheus.Counter
	EventDuration  prometheus.Histogram
	Errors         *prometheus.CounterVec
}

// NewMetrics registers the server instruments with reg. Pass
// prometheus.DefaultRegisterer for a normal deployment, or a private
// registry in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quill",
			Subsystem: "server",
			Name:      "sessions_active",
			Help:      "Number of live panel sessions.",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quill",
			Subsystem: "server",
			Name:      "sessions_total",
			Help:      "Total sessions accepted since start.",
		}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quill",
			Subsystem: "server",
			Name:      "events_total",
			Help:      "Client events received, by event name.",
		}, []string{"name"}),
		Patches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quill",
			Subsystem: "server",
			Name:      "patches_total",
			Help:      "Patches streamed to clients.",
		}),
		EventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quill",
			Subsystem: "server",
			Name:      "event_duration_seconds",
			Help:      "Time from event receipt to flushed commit.",
			Buckets:   prometheus.DefBuckets,
		}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quill",
			Subsystem: "server",
			Name:      "errors_total",
			Help:      "Session errors, by kind.",
		}, []string{"kind"}),
	}
}
