package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clientdir",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clientdir",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clientdir",
			Subsystem: "clients",
			Name:      "cache_lookups_total",
			Help:      "Client list reads served from cache (hit) or the users backend (miss).",
		},
		[]string{"result"},
	)

	mirrorFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clientdir",
			Subsystem: "clients",
			Name:      "mirror_failures_total",
			Help:      "Created clients whose copy to the users backend failed.",
		},
	)

	geocodeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clientdir",
			Subsystem: "geocoding",
			Name:      "resolutions_total",
			Help:      "Postal code resolutions by outcome.",
		},
		[]string{"outcome"},
	)

	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clientdir",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		cacheLookups,
		mirrorFailures,
		geocodeResults,
		loginAttempts,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func RecordMirrorFailure() {
	mirrorFailures.Inc()
}

// RecordGeocode counts a resolution; outcome is "resolved", "not_found" or
// "error".
func RecordGeocode(outcome string) {
	geocodeResults.WithLabelValues(outcome).Inc()
}

func RecordLogin(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}
