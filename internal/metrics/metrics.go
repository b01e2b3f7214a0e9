// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GeocodeRequestsTotal counts provider calls by outcome:
	// "ok", "error" (transport, status or decode failure) or "missing_key".
	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dongne_geocode_requests_total",
		Help: "Reverse-geocoding provider calls by outcome",
	}, []string{"outcome"})
	GeocodeDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dongne_geocode_duration_ms",
		Help:    "Reverse-geocoding provider call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	// RegionResolutionsTotal counts resolver results by depth and status.
	RegionResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dongne_region_resolutions_total",
		Help: "Region label resolutions by depth and status",
	}, []string{"depth", "status"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dongne_http_requests_total",
		Help: "HTTP requests by method and status code",
	}, []string{"method", "status"})
	HTTPRequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dongne_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
)

func init() {
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(RegionResolutionsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDurationMs)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
