package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by service, endpoint and status.",
		},
		[]string{"service", "endpoint", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by service and endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings admitted in WAITING state.",
		},
	)

	bookingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_decisions_total",
			Help:      "Owner decisions on bookings by resulting status.",
		},
		[]string{"status"},
	)

	forwardErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_forward_errors_total",
			Help:      "Gateway calls that failed to reach the core server.",
		},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_rate_limited_total",
			Help:      "Gateway calls rejected by the per-user rate limit.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			bookingsCreated,
			bookingDecisions,
			forwardErrors,
			rateLimited,
		)
	})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(service, endpoint string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(service, endpoint).Observe(elapsed.Seconds())
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingDecision(status string) {
	bookingDecisions.WithLabelValues(status).Inc()
}

func IncForwardError() {
	forwardErrors.Inc()
}

func IncRateLimited() {
	rateLimited.Inc()
}

// Serve exposes /metrics on port until ctx ends.
func Serve(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
