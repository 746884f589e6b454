package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	paymentEvents    *prometheus.CounterVec
	lettersGenerated *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
}

// New registers the domain instruments on the given registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		paymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexdraft_payment_events_total",
			Help: "Payment webhook events by provider, type and outcome.",
		}, []string{"provider", "event_type", "outcome"}),
		lettersGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexdraft_letters_generated_total",
			Help: "Letter generation attempts by outcome.",
		}, []string{"outcome"}),
		checkoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexdraft_checkout_sessions_total",
			Help: "Checkout sessions created by plan.",
		}, []string{"plan"}),
	}

	for _, c := range []prometheus.Collector{m.paymentEvents, m.lettersGenerated, m.checkoutSessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordPaymentEvent increments payment event counts.
func (m *Metrics) RecordPaymentEvent(provider, eventType, outcome string) {
	if m == nil {
		return
	}
	m.paymentEvents.WithLabelValues(
		strings.TrimSpace(provider),
		strings.TrimSpace(eventType),
		strings.TrimSpace(outcome),
	).Inc()
}

// RecordLetterGenerated increments letter generation counts.
func (m *Metrics) RecordLetterGenerated(outcome string) {
	if m == nil {
		return
	}
	m.lettersGenerated.WithLabelValues(strings.TrimSpace(outcome)).Inc()
}

// RecordCheckoutSession increments checkout session counts.
func (m *Metrics) RecordCheckoutSession(plan string) {
	if m == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(strings.TrimSpace(plan)).Inc()
}
