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

	uploadsTotal         *prometheus.CounterVec
	uploadBytes          *prometheus.HistogramVec
	mlCallsTotal         *prometheus.CounterVec
	mlCallDuration       *prometheus.HistogramVec
	exportsTotal         *prometheus.CounterVec
	workspaceClearsTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slidespace",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slidespace",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "slidespace",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slidespace",
			Subsystem: "workflow",
			Name:      "uploads_total",
			Help:      "Total accepted document uploads by detected type.",
		},
		[]string{"service", "mime_type"},
	)
	uploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slidespace",
			Subsystem: "workflow",
			Name:      "upload_bytes",
			Help:      "Distribution of accepted upload sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64*1024, 4, 8),
		},
		[]string{"service"},
	)
	mlCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slidespace",
			Subsystem: "ml",
			Name:      "calls_total",
			Help:      "Total calls to the slide service by operation and outcome.",
		},
		[]string{"service", "operation", "status"},
	)
	mlCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slidespace",
			Subsystem: "ml",
			Name:      "call_duration_seconds",
			Help:      "Slide service call duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 180, 300},
		},
		[]string{"service", "operation"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slidespace",
			Subsystem: "workflow",
			Name:      "exports_total",
			Help:      "Total PPTX exports by pipeline variant.",
		},
		[]string{"service", "variant"},
	)
	workspaceClearsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slidespace",
			Subsystem: "workflow",
			Name:      "workspace_clears_total",
			Help:      "Total workspace clear requests.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		uploadBytes,
		mlCallsTotal,
		mlCallDuration,
		exportsTotal,
		workspaceClearsTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		uploadsTotal:         uploadsTotal,
		uploadBytes:          uploadBytes,
		mlCallsTotal:         mlCallsTotal,
		mlCallDuration:       mlCallDuration,
		exportsTotal:         exportsTotal,
		workspaceClearsTotal: workspaceClearsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &metricsRecorder{
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

// normalizePath collapses resource ids so the path label stays low-cardinality.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 4 && parts[1] == "v1" {
		switch parts[2] {
		case "documents":
			parts[3] = "{document_id}"
		case "exports":
			parts[3] = "{export_id}"
		}
		return strings.Join(parts, "/")
	}
	return path
}

func (m *HTTPServerMetrics) RecordUpload(service, mimeType string, sizeBytes int) {
	if mimeType == "" {
		mimeType = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, mimeType).Inc()
	m.uploadBytes.WithLabelValues(service).Observe(float64(sizeBytes))
}

func (m *HTTPServerMetrics) RecordMLCall(service, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.mlCallsTotal.WithLabelValues(service, operation, status).Inc()
	m.mlCallDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordExport(service, variant string) {
	if variant == "" {
		variant = "unknown"
	}
	m.exportsTotal.WithLabelValues(service, variant).Inc()
}

func (m *HTTPServerMetrics) RecordWorkspaceClear(service string) {
	m.workspaceClearsTotal.WithLabelValues(service).Inc()
}

type metricsRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *metricsRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *metricsRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *metricsRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
