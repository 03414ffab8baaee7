// Package metrics exposes Prometheus collectors for the HTTP layer and the
// upstream gateways.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	// UpstreamRequestsTotal counts calls to AI and weather providers by outcome
	// (ok, rate_limited, billing, timeout, error).
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_upstream_requests_total",
			Help: "Total number of calls to external providers",
		},
		[]string{"service", "outcome"},
	)

	DiseaseParseFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_disease_parse_fallbacks_total",
			Help: "Disease analyses answered with a synthesized result",
		},
		[]string{"kind"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_notifications_created_total",
			Help: "Notifications persisted, by severity",
		},
		[]string{"severity"},
	)

	RecommendationsProduced = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "farm_recommendations_per_request",
			Help:    "Number of crops recommended for a soil test",
			Buckets: []float64{0, 1, 2, 3},
		},
	)

	ImagesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farm_images_uploaded_total",
			Help: "Crop images stored",
		},
	)

	GeocodeCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_geocode_cache_lookups_total",
			Help: "Geocode cache lookups by result",
		},
		[]string{"result"},
	)
)
