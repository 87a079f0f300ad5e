package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WebhookDeliveries   *prometheus.CounterVec
	WebhookLatency      prometheus.Histogram
	SecretCacheLookups  *prometheus.CounterVec
	RefundTransitions   *prometheus.CounterVec
	LinkRedemptions     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		WebhookDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_delivery_outcomes_total",
				Help: "Webhook delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		WebhookLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webhook_delivery_duration_seconds",
				Help:    "Duration of outbound webhook HTTP calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		SecretCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_secret_cache_lookups_total",
				Help: "Secret cache lookups by result",
			},
			[]string{"result"},
		),
		RefundTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refund_transitions_total",
				Help: "Refund state transitions by target status",
			},
			[]string{"status"},
		),
		LinkRedemptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_link_redemptions_total",
				Help: "Payment link redemption attempts by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.WebhookDeliveries,
		m.WebhookLatency,
		m.SecretCacheLookups,
		m.RefundTransitions,
		m.LinkRedemptions,
	)
	return m
}

func (m *Metrics) ObserveHTTP(method, endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

func (m *Metrics) RecordDelivery(outcome string) {
	if m == nil {
		return
	}
	m.WebhookDeliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveWebhookLatency(seconds float64) {
	if m == nil {
		return
	}
	m.WebhookLatency.Observe(seconds)
}

func (m *Metrics) RecordSecretLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SecretCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordRefund(status string) {
	if m == nil {
		return
	}
	m.RefundTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRedemption(result string) {
	if m == nil {
		return
	}
	m.LinkRedemptions.WithLabelValues(result).Inc()
}
