// Package metrics provides Prometheus metrics for the honeypot.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"honeypot-lab/internal/domain/models"
)

const namespace = "honeypot"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	TurnsTotal      *prometheus.CounterVec
	TurnDuration    prometheus.Histogram
	ExtractedTotal  *prometheus.CounterVec
	AuthFailures    prometheus.Counter
	ReportFailures  prometheus.Counter
	RateLimited     prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

// DefaultMetrics is registered on the default Prometheus registry.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates and registers all metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TurnsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turns handled, by scam verdict",
		}, []string{"is_scam"}),
		TurnDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time spent classifying and extracting one turn",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
		}),
		ExtractedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_items_total",
			Help:      "Intelligence items extracted, by category",
		}, []string{"category"}),
		AuthFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Requests rejected for a missing or wrong API key",
		}),
		ReportFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_failures_total",
			Help:      "Intelligence reports that could not be stored or published",
		}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveTurn records one handled turn
func (m *Metrics) ObserveTurn(resp models.TurnResponse, elapsed time.Duration) {
	m.TurnsTotal.WithLabelValues(strconv.FormatBool(resp.IsScam)).Inc()
	m.TurnDuration.Observe(elapsed.Seconds())

	for _, category := range models.IntelCategories {
		if n := len(resp.ExtractedIntelligence.Get(category)); n > 0 {
			m.ExtractedTotal.WithLabelValues(string(category)).Add(float64(n))
		}
	}
}

// ObserveHTTP records one completed HTTP request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestTime.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
