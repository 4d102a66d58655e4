// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carlisting_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carlisting_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	RateLimitedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carlisting_rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
		[]string{"route"},
	)

	// Recommendations
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carlisting_recommendations_served_total",
			Help: "Recommendation responses served, by kind",
		},
		[]string{"kind"},
	)

	RecommendedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carlisting_recommended_items_total",
			Help: "Items returned by recommendation responses, by kind",
		},
		[]string{"kind"},
	)

	PopularityPaddedItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carlisting_popularity_padded_items_total",
			Help: "Slots of a most-popular page filled with unranked items",
		},
	)

	// CSV import
	CSVImports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carlisting_csv_imports_total",
			Help: "CSV uploads processed, by result",
		},
		[]string{"result"}, // "success", "malformed", "error"
	)

	CSVImportedItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carlisting_csv_imported_items_total",
			Help: "Items inserted through CSV uploads",
		},
	)

	// Events
	EventsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carlisting_events_recorded_total",
			Help: "Events appended to the event log",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carlisting_events_published_total",
			Help: "Events sent to Kafka, by result",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest observes one finished request. route is the gin route
// template, never the raw path.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func RecordCSVImport(result string, items int) {
	CSVImports.WithLabelValues(result).Inc()
	if items > 0 {
		CSVImportedItems.Add(float64(items))
	}
}

func RecordEventPublish(err error) {
	if err != nil {
		EventsPublished.WithLabelValues("error").Inc()
		return
	}
	EventsPublished.WithLabelValues("ok").Inc()
}

// RecommendationObserver feeds recommender activity into the collectors above.
type RecommendationObserver struct{}

func (RecommendationObserver) RecommendationServed(kind string, returned int) {
	RecommendationsServed.WithLabelValues(kind).Inc()
	RecommendedItems.WithLabelValues(kind).Add(float64(returned))
}

func (RecommendationObserver) PopularityPadded(missing int) {
	PopularityPaddedItems.Add(float64(missing))
}
