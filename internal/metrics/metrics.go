// package metrics registers the Prometheus collectors exported on /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moodify"

// Labels
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelOutcome  = "outcome"
	LabelProvider = "provider"
)

// Resolution outcomes
const (
	OutcomeExact    = "exact"
	OutcomeBroad    = "broad"
	OutcomeCached   = "cached"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// HTTP server metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

// Catalog client metrics
var (
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Requests issued to the catalog API by method and status class",
		},
		[]string{LabelMethod, LabelStatus},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	TrackResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_resolutions_total",
			Help:      "Song resolutions by outcome",
		},
		[]string{LabelOutcome},
	)
)

// Pipeline metrics
var (
	PlaylistsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playlists_created_total",
			Help:      "Playlists successfully assembled",
		},
	)

	SongsAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "songs_added_total",
			Help:      "Songs added to created playlists",
		},
	)

	SongsNotFoundTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "songs_not_found_total",
			Help:      "Recommended songs that could not be matched in the catalog",
		},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by provider and outcome",
		},
		[]string{LabelProvider, LabelOutcome},
	)
)

// StatusClass buckets an HTTP status for labels: "401" is kept apart from other 4xx responses.
func StatusClass(code int) string {
	switch {
	case code == 401:
		return "401"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "error"
	}
}
