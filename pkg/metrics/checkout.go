package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the checkout and reconciliation funnel.
type CheckoutMetrics struct {
	sessionsBegun    *prometheus.CounterVec
	ordersReconciled *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	sessionsBegun := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_begun",
		Help: "Checkout sessions requested, by result.",
	}, []string{"result"})
	ordersReconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_reconciled",
		Help: "Order reconciliation outcomes.",
	}, []string{"outcome"})
	providerLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_provider_duration_seconds",
		Help:    "Duration of payment provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(sessionsBegun, ordersReconciled, providerLatency)
	return &CheckoutMetrics{
		sessionsBegun:    sessionsBegun,
		ordersReconciled: ordersReconciled,
		providerLatency:  providerLatency,
	}
}

// IncSessionBegun increments the session counter for the given result.
func (c *CheckoutMetrics) IncSessionBegun(result string) {
	if c == nil || c.sessionsBegun == nil {
		return
	}
	c.sessionsBegun.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncOrderReconciled increments the reconciliation counter for the outcome.
func (c *CheckoutMetrics) IncOrderReconciled(outcome string) {
	if c == nil || c.ordersReconciled == nil {
		return
	}
	c.ordersReconciled.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveProviderCall records the latency of a payment provider operation.
func (c *CheckoutMetrics) ObserveProviderCall(operation string, duration time.Duration) {
	if c == nil || c.providerLatency == nil {
		return
	}
	c.providerLatency.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// Reconciliation outcome labels.
const (
	OutcomeCreated = "created"
	OutcomeReplay  = "replay"
	OutcomeError   = "error"
)

// Session result labels.
const (
	ResultOK        = "ok"
	ResultEmptyCart = "empty_cart"
	ResultError     = "error"
)
