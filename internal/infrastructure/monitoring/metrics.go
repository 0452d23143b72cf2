package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	PaymentAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_attempts_total",
			Help: "Total number of payment attempts",
		},
		[]string{"method"},
	)

	PaymentSuccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_success_total",
			Help: "Total number of successful payments",
		},
		[]string{"method"},
	)

	PaymentFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_failure_total",
			Help: "Total number of failed payments",
		},
		[]string{"method", "reason"},
	)

	PaymentConfirmationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_confirmation_duration_seconds",
			Help:    "Time from gateway initiation to confirmed payment",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 180, 300},
		},
	)
)

var (
	// OfflineQueueDepth backs the cashier-visible badge of queued sales.
	OfflineQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "offline_queue_depth",
			Help: "Number of sales queued locally awaiting synchronization",
		},
	)

	SyncDrainsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_drains_total",
			Help: "Total number of sync drain runs",
		},
	)

	SyncSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_submitted_total",
			Help: "Total number of queued sales confirmed by the remote API",
		},
	)

	SyncFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_failed_total",
			Help: "Total number of queued sale submissions that failed and were retained",
		},
	)
)

var (
	ConnectivityOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connectivity_online",
			Help: "1 when the remote API is reachable, 0 when offline",
		},
	)

	ConnectivityTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connectivity_transitions_total",
			Help: "Total number of connectivity state transitions",
		},
		[]string{"to"},
	)
)

func TimeHTTPRequest(handler, method string) func(statusCode string) {
	start := time.Now()
	return func(statusCode string) {
		duration := time.Since(start).Seconds()
		HTTPRequestDuration.WithLabelValues(handler, method, statusCode).Observe(duration)
		HTTPRequestsTotal.WithLabelValues(handler, method, statusCode).Inc()
	}
}

func SetOfflineQueueDepth(count int) {
	OfflineQueueDepth.Set(float64(count))
}

func SetConnectivityState(online bool) {
	if online {
		ConnectivityOnline.Set(1)
		ConnectivityTransitionsTotal.WithLabelValues("online").Inc()
	} else {
		ConnectivityOnline.Set(0)
		ConnectivityTransitionsTotal.WithLabelValues("offline").Inc()
	}
}
