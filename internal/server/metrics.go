package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the prometheus middleware and counters, adapted from the
// teacher's api/middlewares.go metrics type and retargeted at queue and
// dispatch activity instead of routing queries.
type Metrics struct {
	popTotal           *prometheus.CounterVec
	popDuration        *prometheus.HistogramVec
	sharedTilesSkipped prometheus.Counter
	pairsActive        prometheus.Gauge
	httpDuration       *prometheus.HistogramVec
	responseStatusCode *prometheus.CounterVec
	totalRequests      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		popTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rasterpq",
			Name:      "pop_total",
			Help:      "The total number of tiles popped from the raster tile priority queue",
		}, []string{"policy"}),
		popDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rasterpq",
			Name:      "pop_duration_seconds",
			Help:      "The duration of a single queue Pop, including the dedup skip loop",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"policy"}),
		sharedTilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rasterpq",
			Name:      "shared_tiles_skipped_total",
			Help:      "The total number of shared-tile copies dropped by SkipTilesReturnedByTwin",
		}),
		pairsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rasterpq",
			Name:      "pairs_active",
			Help:      "The number of layer pairs currently held by the queue",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rasterpq",
			Name:      "http_request_duration_seconds",
			Help:      "The duration of an HTTP request",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"method", "path"}),
		responseStatusCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rasterpq",
			Name:      "http_response_status_code",
			Help:      "The status code of an HTTP response",
		}, []string{"status", "method", "path"}),
		totalRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rasterpq",
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"path", "method", "status"}),
	}
	reg.MustRegister(m.popTotal, m.popDuration, m.sharedTilesSkipped, m.pairsActive,
		m.httpDuration, m.responseStatusCode, m.totalRequests)
	return m
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// PromHTTPMiddleware instruments every request with request duration and
// status-code counters, the same shape as the teacher's PromeHttpMiddleware.
func PromHTTPMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			rw := newResponseWriter(w)
			timer := prometheus.NewTimer(m.httpDuration.With(prometheus.Labels{"method": r.Method, "path": path}))
			next.ServeHTTP(rw, r)
			status := strconv.Itoa(rw.statusCode)
			m.responseStatusCode.With(prometheus.Labels{"status": status, "method": r.Method, "path": path}).Inc()
			m.totalRequests.With(prometheus.Labels{"path": path, "method": r.Method, "status": status}).Inc()
			timer.ObserveDuration()
		})
	}
}

func (m *Metrics) observePop(policy string, d time.Duration) {
	m.popTotal.With(prometheus.Labels{"policy": policy}).Inc()
	m.popDuration.With(prometheus.Labels{"policy": policy}).Observe(d.Seconds())
}

func (m *Metrics) setPairsActive(n int) {
	m.pairsActive.Set(float64(n))
}

func (m *Metrics) addSharedSkipped(n int) {
	m.sharedTilesSkipped.Add(float64(n))
}
