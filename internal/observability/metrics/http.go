package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	relaxRequestsTotal *prometheus.CounterVec
	relaxRounds        *prometheus.HistogramVec
	relaxCandidates    *prometheus.HistogramVec
	relaxMatches       *prometheus.HistogramVec
	relaxDuration      *prometheus.HistogramVec
	jobsSubmittedTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfdrelax",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfdrelax",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rfdrelax",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	relaxRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfdrelax",
			Subsystem: "relax",
			Name:      "requests_total",
			Help:      "Total completed relaxation requests by outcome.",
		},
		[]string{"service", "endpoint", "status"},
	)
	relaxRounds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfdrelax",
			Subsystem: "relax",
			Name:      "rounds",
			Help:      "Distribution of relaxation rounds per request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	relaxCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfdrelax",
			Subsystem: "relax",
			Name:      "candidates",
			Help:      "Distribution of ranked candidate dependencies per request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service", "endpoint"},
	)
	relaxMatches := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfdrelax",
			Subsystem: "relax",
			Name:      "matches",
			Help:      "Distribution of final match counts per request.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 250},
		},
		[]string{"service", "endpoint"},
	)
	relaxDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfdrelax",
			Subsystem: "relax",
			Name:      "duration_seconds",
			Help:      "Relaxation execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	jobsSubmittedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfdrelax",
			Subsystem: "jobs",
			Name:      "submitted_total",
			Help:      "Total relaxation jobs accepted for background processing.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		relaxRequestsTotal,
		relaxRounds,
		relaxCandidates,
		relaxMatches,
		relaxDuration,
		jobsSubmittedTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		relaxRequestsTotal: relaxRequestsTotal,
		relaxRounds:        relaxRounds,
		relaxCandidates:    relaxCandidates,
		relaxMatches:       relaxMatches,
		relaxDuration:      relaxDuration,
		jobsSubmittedTotal: jobsSubmittedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/relaxations/"):
		return "/v1/relaxations/{job_id}"
	default:
		return path
	}
}

// RecordRelaxation tracks one finished relaxation request. Status is the
// result status string (exact, relaxed or exhausted).
func (m *HTTPServerMetrics) RecordRelaxation(service, endpoint, status string, rounds, candidates, matches int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.relaxRequestsTotal.WithLabelValues(service, endpoint, status).Inc()
	m.relaxRounds.WithLabelValues(service, endpoint).Observe(float64(rounds))
	m.relaxCandidates.WithLabelValues(service, endpoint).Observe(float64(candidates))
	m.relaxMatches.WithLabelValues(service, endpoint).Observe(float64(matches))
	m.relaxDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordJobSubmitted(service string) {
	m.jobsSubmittedTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
