package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records checkout, coupon and newsletter activity.
type StorefrontMetrics struct {
	submissions    *prometheus.CounterVec
	submitDuration *prometheus.HistogramVec
	couponChecks   *prometheus.CounterVec
	newsletter     *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Time spent calling the order API during checkout.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"outcome"})
	couponChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_evaluations_total",
		Help: "Coupon evaluations by resulting status.",
	}, []string{"status"})
	newsletter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsletter_subscriptions_total",
		Help: "Newsletter subscription attempts by result.",
	}, []string{"result"})
	reg.MustRegister(submissions, submitDuration, couponChecks, newsletter)
	return &StorefrontMetrics{
		submissions:    submissions,
		submitDuration: submitDuration,
		couponChecks:   couponChecks,
		newsletter:     newsletter,
	}
}

// ObserveSubmission counts a finished submission and records how long it took.
func (m *StorefrontMetrics) ObserveSubmission(outcome string, duration time.Duration) {
	if m == nil || m.submissions == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.submissions.WithLabelValues(label).Inc()
	m.submitDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncCoupon counts a coupon evaluation.
func (m *StorefrontMetrics) IncCoupon(status string) {
	if m == nil || m.couponChecks == nil {
		return
	}
	m.couponChecks.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncNewsletter counts a subscription attempt (subscribed, masked, failed).
func (m *StorefrontMetrics) IncNewsletter(result string) {
	if m == nil || m.newsletter == nil {
		return
	}
	m.newsletter.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
