package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "recipehub",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipehub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recipehub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	crawlAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipehub",
			Subsystem: "crawler",
			Name:      "attempts_total",
			Help:      "Total number of page crawl attempts.",
		},
		[]string{"status"},
	)

	crawlDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recipehub",
			Subsystem: "crawler",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of page crawl attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"status"},
	)

	extractionItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipehub",
			Subsystem: "extraction",
			Name:      "items_total",
			Help:      "Total number of recipe texts run through extraction.",
		},
		[]string{"status"},
	)

	extractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recipehub",
			Subsystem: "extraction",
			Name:      "item_duration_seconds",
			Help:      "Duration of single-text extraction calls.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
		[]string{"status"},
	)

	directoryLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipehub",
			Subsystem: "directory",
			Name:      "lookups_total",
			Help:      "Total number of ingredient directory lookups.",
		},
		[]string{"source", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		crawlAttempts,
		crawlDuration,
		extractionItems,
		extractionDuration,
		directoryLookups,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordCrawlAttempt records metrics for one worker crawl attempt.
func RecordCrawlAttempt(status string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	crawlAttempts.WithLabelValues(status).Inc()
	crawlDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordExtraction records metrics for one extracted recipe text.
func RecordExtraction(status string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	extractionItems.WithLabelValues(status).Inc()
	extractionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordDirectoryLookup records one ingredient directory lookup. Source names
// the implementation that answered (http, cache, service).
func RecordDirectoryLookup(source string, success bool) {
	if source == "" {
		source = "unknown"
	}
	outcome := "error"
	if success {
		outcome = "ok"
	}
	directoryLookups.WithLabelValues(source, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "ingredients":
		if len(parts) == 1 {
			return "/ingredients"
		}
		if parts[1] == "tags" {
			return "/ingredients/tags"
		}
		return "/ingredients/:id"
	case "recipes":
		if len(parts) == 1 {
			return "/recipes"
		}
		return "/recipes/:id"
	case "crawl":
		if len(parts) >= 3 {
			return "/crawl/" + parts[1] + "/" + parts[2]
		}
		if len(parts) == 2 {
			return "/crawl/" + parts[1]
		}
		return "/crawl"
	default:
		return "/" + parts[0]
	}
}
