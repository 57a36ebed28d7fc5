package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_verify_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocr_verify_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Detection outcomes; reason is the seal reason code or valid/invalid
	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_verify_detections_total",
			Help: "Total number of identifier detections",
		},
		[]string{"kind", "reason"},
	)

	// OCR provider calls
	ocrRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_verify_ocr_requests_total",
			Help: "Total number of OCR provider requests",
		},
		[]string{"provider", "status"}, // status: success, error, cached, quota_exceeded
	)

	ocrDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocr_verify_ocr_duration_seconds",
			Help:    "OCR provider call duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 25, 50},
		},
		[]string{"provider"},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ocr_verify_upload_size_bytes",
			Help:    "Size of uploaded images in bytes",
			Buckets: []float64{10 * 1024, 100 * 1024, 512 * 1024, 1024 * 1024, 5 * 1024 * 1024, 10 * 1024 * 1024},
		},
	)
)

// ObserveHTTPRequest records one served request
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordDetection counts a detection outcome
func RecordDetection(kind, reason string) {
	detectionsTotal.WithLabelValues(kind, reason).Inc()
}

// RecordOCRRequest counts a provider call by outcome
func RecordOCRRequest(provider, status string) {
	ocrRequestsTotal.WithLabelValues(provider, status).Inc()
}

// ObserveOCRDuration records how long a provider call took
func ObserveOCRDuration(provider string, elapsed time.Duration) {
	ocrDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveUploadSize records the size of an uploaded image
func ObserveUploadSize(size int) {
	uploadSizeBytes.Observe(float64(size))
}
