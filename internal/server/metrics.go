package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "msme_risk"

// Metrics holds the server's Prometheus collectors on a private registry.
// It also records portfolio cache events.
type Metrics struct {
	registry      *prometheus.Registry
	loads         *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
	requests      *prometheus.CounterVec
	buildDuration prometheus.Histogram
}

// NewMetrics registers the server collectors plus the Go runtime collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "portfolio_loads_total",
			Help:      "Portfolio file loads by result.",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "portfolio_load_duration_seconds",
			Help:      "Time spent reading and parsing the portfolio file.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "portfolio_cache_lookups_total",
			Help:      "Portfolio cache lookups by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "dashboard_build_duration_seconds",
			Help:      "Time spent filtering and aggregating a dashboard.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loads,
		m.loadDuration,
		m.cacheLookups,
		m.requests,
		m.buildDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCache implements portfolio.Observer.
func (m *Metrics) ObserveCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveLoad implements portfolio.Observer.
func (m *Metrics) ObserveLoad(err error, elapsed time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.loads.WithLabelValues(result).Inc()
	m.loadDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeRequest(route string, status int) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeBuild(elapsed time.Duration) {
	m.buildDuration.Observe(elapsed.Seconds())
}
