package devstore

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// metrics holds request instrumentation for one server. Each server has its
// own registry so several can run in one process.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	records  prometheus.GaugeFunc
}

func newMetrics(data *Memory) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "devstore_http_requests_total", Help: "Count of HTTP requests"},
			[]string{"path", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devstore_http_request_duration_seconds",
				Help:    "Latency of HTTP requests",
				Buckets: prometheus.DefBuckets,
			}, []string{"path", "method"},
		),
		records: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: "devstore_employees", Help: "Employees currently stored"},
			func() float64 { return float64(data.Len()) },
		),
	}
	m.registry.MustRegister(m.requests, m.latency, m.records)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument records status and latency per route. Item paths collapse to
// one label so ids don't explode cardinality.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := routeLabel(r.URL.Path)
		m.requests.WithLabelValues(path, r.Method, strconv.Itoa(rec.status)).Inc()
		m.latency.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

func routeLabel(path string) string {
	switch {
	case path == collectionPrefix || path == collectionPrefix+"/":
		return collectionPrefix
	case strings.HasPrefix(path, collectionPrefix+"/"):
		return collectionPrefix + "/{id}"
	case path == "/health":
		return path
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// rateLimit rejects requests beyond a global token bucket with 429.
// A zero limit disables it.
func rateLimit(limit float64, burst int, next http.Handler) http.Handler {
	if limit <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(limit), burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
