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

	questionsTotal   *prometheus.CounterVec
	questionDuration *prometheus.HistogramVec
	answerCitations  *prometheus.HistogramVec
	answerWarnings   *prometheus.CounterVec
	noContextTotal   *prometheus.CounterVec
	uploadsTotal     *prometheus.CounterVec
	uploadedBytes    *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cwd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cwd",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	questionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwd",
			Subsystem: "pipeline",
			Name:      "questions_total",
			Help:      "Total answered questions by outcome.",
		},
		[]string{"service", "status"},
	)
	questionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cwd",
			Subsystem: "pipeline",
			Name:      "question_duration_seconds",
			Help:      "End-to-end question answering duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	answerCitations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cwd",
			Subsystem: "pipeline",
			Name:      "answer_citations",
			Help:      "Distribution of cited documents per answer.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	answerWarnings := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwd",
			Subsystem: "pipeline",
			Name:      "answer_warnings_total",
			Help:      "Total answers carrying a validation warning.",
		},
		[]string{"service"},
	)
	noContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwd",
			Subsystem: "pipeline",
			Name:      "no_context_total",
			Help:      "Total answers produced without any cited source.",
		},
		[]string{"service"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwd",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total accepted document uploads.",
		},
		[]string{"service", "status"},
	)
	uploadedBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cwd",
			Subsystem: "ingest",
			Name:      "uploaded_bytes",
			Help:      "Distribution of uploaded document sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		questionsTotal,
		questionDuration,
		answerCitations,
		answerWarnings,
		noContextTotal,
		uploadsTotal,
		uploadedBytes,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		questionsTotal:   questionsTotal,
		questionDuration: questionDuration,
		answerCitations:  answerCitations,
		answerWarnings:   answerWarnings,
		noContextTotal:   noContextTotal,
		uploadsTotal:     uploadsTotal,
		uploadedBytes:    uploadedBytes,
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
	case strings.HasPrefix(path, "/v1/sessions/"):
		rest := strings.TrimPrefix(path, "/v1/sessions/")
		if idx := strings.Index(rest, "/"); idx >= 0 {
			return "/v1/sessions/{session_id}/" + rest[idx+1:]
		}
		return "/v1/sessions/{session_id}"
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

// RecordQuestion tracks one answered question: outcome, latency, how many
// documents the answer cited, and whether validation attached a warning.
func (m *HTTPServerMetrics) RecordQuestion(service, status string, citations int, warned bool, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.questionsTotal.WithLabelValues(service, status).Inc()
	m.questionDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.answerCitations.WithLabelValues(service).Observe(float64(citations))
	if warned {
		m.answerWarnings.WithLabelValues(service).Inc()
	}
	if citations == 0 {
		m.noContextTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, status string, sizeBytes int64) {
	if status == "" {
		status = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, status).Inc()
	if sizeBytes > 0 {
		m.uploadedBytes.WithLabelValues(service).Observe(float64(sizeBytes))
	}
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
