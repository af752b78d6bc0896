// Package metrics provides Prometheus instrumentation for the catalog server.
//
// A Metrics value owns its registry, so tests and the DI container can build
// as many as they need without colliding on the global one.
//
//	m := metrics.New()
//	r.Use(m.Middleware())
//	r.Handle("/metrics", m.Handler())
//
// It also implements service.ReconcileObserver, so product updates are
// counted by outcome and the size of each tag plan is recorded.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/listenupapp/catalog-server/internal/reconcile"
	"github.com/listenupapp/catalog-server/internal/service"
)

const namespace = "catalog"

// Metrics holds the collectors exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	requestInFlight prometheus.Gauge
	responseSize    *prometheus.HistogramVec

	productUpdates        *prometheus.CounterVec
	productUpdateDuration prometheus.Histogram
	tagRowsAdded          prometheus.Counter
	tagRowsRemoved        prometheus.Counter
}

// New creates a Metrics with Go runtime and process collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),

		requestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),

		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Response body sizes in bytes.",
			Buckets:   []float64{100, 1_000, 10_000, 100_000, 1_000_000},
		}, []string{"method", "route"}),

		productUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "products",
			Name:      "updates_total",
			Help:      "Product updates by outcome.",
		}, []string{"outcome"}),

		productUpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "products",
			Name:      "update_duration_seconds",
			Help:      "Duration of product updates, including the tag reconcile.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
		}),

		tagRowsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "products",
			Name:      "tag_rows_added_total",
			Help:      "Product-tag association rows inserted by updates.",
		}),

		tagRowsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "products",
			Name:      "tag_rows_removed_total",
			Help:      "Product-tag association rows deleted by updates.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.requestInFlight,
		m.responseSize,
		m.productUpdates,
		m.productUpdateDuration,
		m.tagRowsAdded,
		m.tagRowsRemoved,
	)
	return m
}

// Register adds a custom collector to the registry.
func (m *Metrics) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}

var _ service.ReconcileObserver = (*Metrics)(nil)

// ObserveProductUpdate records the outcome of a product update. Row counts
// are only added for applied updates since anything else rolled back.
func (m *Metrics) ObserveProductUpdate(outcome string, plan reconcile.Plan, elapsed time.Duration) {
	m.productUpdates.WithLabelValues(outcome).Inc()
	m.productUpdateDuration.Observe(elapsed.Seconds())
	if outcome == service.OutcomeApplied {
		m.tagRowsAdded.Add(float64(len(plan.ToAdd)))
		m.tagRowsRemoved.Add(float64(len(plan.ToRemove)))
	}
}

// responseRecorder wraps http.ResponseWriter to capture status code and size.
type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Middleware records duration, count, in-flight and response size for every
// request. Requests are labelled by chi route pattern so ids in the path do
// not create new series.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.requestInFlight.Inc()
			defer m.requestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			route := routePattern(r)
			status := strconv.Itoa(rr.status)

			m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			m.requestTotal.WithLabelValues(r.Method, route, status).Inc()
			m.responseSize.WithLabelValues(r.Method, route).Observe(float64(rr.size))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Handler exposes the registry in the Prometheus text and OpenMetrics formats.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
