package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks order placement outcomes per payment provider.
type CheckoutMetrics struct {
	placements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_placements_total",
		Help: "Order placements, labeled by payment provider and outcome.",
	}, []string{"provider", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_placement_duration_seconds",
		Help:    "Time spent placing an order, payment call included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	reg.MustRegister(placements, duration)
	return &CheckoutMetrics{
		placements: placements,
		duration:   duration,
	}
}

// ObservePlacement records one placement attempt.
func (c *CheckoutMetrics) ObservePlacement(provider, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.placements != nil {
		c.placements.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
	}
	if c.duration != nil {
		c.duration.WithLabelValues(normalizeLabel(provider)).Observe(elapsed.Seconds())
	}
}
