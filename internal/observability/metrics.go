package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus counters for the HTTP surface and the auth gate.
type Metrics struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	authRejections *prometheus.CounterVec
	loginThrottled prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barbershop_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barbershop_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barbershop_http_errors_total",
			Help: "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		authRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barbershop_auth_rejections_total",
			Help: "Requests rejected by the access gate.",
		}, []string{"reason"}),
		loginThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barbershop_login_throttled_total",
			Help: "Login attempts refused because of repeated failures.",
		}),
	}

	reg.MustRegister(m.requests, m.latency, m.errors, m.authRejections, m.loginThrottled)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordAuthRejection implements auth.RejectionRecorder.
func (m *Metrics) RecordAuthRejection(reason string) {
	if m == nil {
		return
	}
	m.authRejections.WithLabelValues(reason).Inc()
}

// RecordLoginThrottled counts refused logins.
func (m *Metrics) RecordLoginThrottled() {
	if m == nil {
		return
	}
	m.loginThrottled.Inc()
}
