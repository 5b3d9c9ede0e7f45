package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Route guard

	GuardDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quoteweb",
		Name:      "guard_decisions_total",
		Help:      "Route guard outcomes, by resulting state.",
	}, []string{"state"})

	GuardChecksInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quoteweb",
		Name:      "guard_checks_in_flight",
		Help:      "Requests whose route guard is still in the checking state.",
	})

	// Outbound calls

	BackendRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quoteweb",
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of calls to the quotes backend API.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"endpoint", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quoteweb",
		Name:      "provider_request_duration_seconds",
		Help:      "Latency of calls to the billing provider API.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"endpoint", "status"})

	// Checkout

	CheckoutOpensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quoteweb",
		Name:      "checkout_opens_total",
		Help:      "Checkout overlay open requests, by outcome.",
	}, []string{"outcome"})

	CheckoutEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quoteweb",
		Name:      "checkout_events_total",
		Help:      "Widget events handled by the checkout bridge, by outcome.",
	}, []string{"outcome"})

	CheckoutBridgeReady = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quoteweb",
		Name:      "checkout_bridge_ready",
		Help:      "1 once the checkout widget is loaded and initialized.",
	})

	// Payment confirmation

	ConfirmationAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quoteweb",
		Name:      "confirmation_attempts_total",
		Help:      "Subscription confirmation calls, by endpoint and result.",
	}, []string{"endpoint", "result"})

	ConfirmationOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quoteweb",
		Name:      "confirmation_outcomes_total",
		Help:      "Terminal states reached by the confirmation poller.",
	}, []string{"state"})

	ConfirmationRetries = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quoteweb",
		Name:      "confirmation_retries",
		Help:      "Retries of the primary endpoint before the poller settled.",
		Buckets:   []float64{0, 1, 2, 3, 4, 5},
	})

	// Sessions

	SessionsSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quoteweb",
		Name:      "sessions_swept_total",
		Help:      "Expired sessions deleted by the sweeper.",
	})

	SessionSweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quoteweb",
		Name:      "session_sweep_duration_seconds",
		Help:      "Time taken for one sweep of expired sessions.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quoteweb",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quoteweb",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		GuardDecisionsTotal,
		GuardChecksInFlight,
		BackendRequestDuration,
		ProviderRequestDuration,
		CheckoutOpensTotal,
		CheckoutEventsTotal,
		CheckoutBridgeReady,
		ConfirmationAttemptsTotal,
		ConfirmationOutcomesTotal,
		ConfirmationRetries,
		SessionsSweptTotal,
		SessionSweepDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// HealthHandlers is the part of health.Checker the metrics server exposes.
type HealthHandlers interface {
	LivenessHandler() http.Handler
	ReadinessHandler() http.Handler
}

func NewServer(addr string, health HealthHandlers) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health.LivenessHandler())
	mux.Handle("/readyz", health.ReadinessHandler())
	return &http.Server{Addr: addr, Handler: mux}
}
