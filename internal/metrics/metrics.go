package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/serroba/shortlink/internal/shortener"
)

const namespace = "shortlink"

// Metrics holds the service collectors, registered on their own registry.
type Metrics struct {
	registry        *prometheus.Registry
	resolutions     *prometheus.CounterVec
	allocations     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Short code resolutions by outcome.",
		}, []string{"outcome"}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Link allocations by outcome.",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		m.resolutions,
		m.allocations,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveResolution counts one Resolve call.
func (m *Metrics) ObserveResolution(res *shortener.Resolution, err error) {
	var outcome string

	switch {
	case err == nil:
		outcome = string(res.Source)
	case errors.Is(err, shortener.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, shortener.ErrGone):
		outcome = "gone"
	default:
		outcome = "error"
	}

	m.resolutions.WithLabelValues(outcome).Inc()
}

// ObserveAllocation counts one CreateLink call.
func (m *Metrics) ObserveAllocation(err error) {
	var outcome string

	switch {
	case err == nil:
		outcome = "created"
	case errors.Is(err, shortener.ErrInvalidInput), errors.Is(err, shortener.ErrInvalidCode):
		outcome = "invalid"
	case errors.Is(err, shortener.ErrCodeConflict):
		outcome = "conflict"
	default:
		outcome = "error"
	}

	m.allocations.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the latency of a served HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
