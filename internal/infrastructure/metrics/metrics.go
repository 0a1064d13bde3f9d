package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wayfinder",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wayfinder",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	ProfileUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wayfinder",
			Subsystem: "profile",
			Name:      "updates_total",
			Help:      "Default-token profile update attempts by outcome",
		},
		[]string{"outcome"},
	)

	ProfileVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wayfinder",
			Subsystem: "profile",
			Name:      "version",
			Help:      "Current default-token profile version",
		},
	)

	ProfileMissingModels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wayfinder",
			Subsystem: "profile",
			Name:      "missing_models",
			Help:      "Configured model IDs absent from the live registry",
		},
	)

	RegistryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wayfinder",
			Subsystem: "registry",
			Name:      "requests_total",
			Help:      "Model registry snapshot fetches by status",
		},
		[]string{"status"},
	)

	CacheClearsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wayfinder",
			Subsystem: "cache",
			Name:      "clears_total",
			Help:      "Semantic cache clear operations by scope kind",
		},
		[]string{"kind"},
	)
)
