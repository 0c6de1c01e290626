package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking wizard.
type BookingMetrics struct {
	transitions        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	emailSends         *prometheus.CounterVec
	emailLatency       *prometheus.HistogramVec
	slotLoads          *prometheus.CounterVec
	reminders          *prometheus.CounterVec
	liveSessions       prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pitaya",
			Subsystem: "wizard",
			Name:      "transitions_total",
			Help:      "Wizard step changes by direction and destination step",
		}, []string{"direction", "step"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pitaya",
			Subsystem: "wizard",
			Name:      "validation_failures_total",
			Help:      "Blocked forward transitions by step and field",
		}, []string{"step", "field"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pitaya",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		emailSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pitaya",
			Subsystem: "email",
			Name:      "sends_total",
			Help:      "Outbound emails by provider, kind and status",
		}, []string{"provider", "kind", "status"}),
		emailLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pitaya",
			Subsystem: "email",
			Name:      "send_latency_seconds",
			Help:      "Latency of a single outbound email",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		slotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pitaya",
			Subsystem: "availability",
			Name:      "slot_loads_total",
			Help:      "Deferred slot computations by outcome",
		}, []string{"outcome"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pitaya",
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Appointment reminders by channel and status",
		}, []string{"channel", "status"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pitaya",
			Subsystem: "wizard",
			Name:      "live_sessions",
			Help:      "Wizards currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.validationFailures, m.submissions, m.emailSends,
		m.emailLatency, m.slotLoads, m.reminders, m.liveSessions)
	return m
}

func (m *BookingMetrics) ObserveTransition(direction, step string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(direction, step).Inc()
}

func (m *BookingMetrics) ObserveValidationFailure(step, field string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(step, field).Inc()
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveEmail(provider, kind string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.emailSends.WithLabelValues(provider, kind, status).Inc()
	m.emailLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *BookingMetrics) ObserveSlotLoad(outcome string) {
	if m == nil {
		return
	}
	m.slotLoads.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveReminder(channel string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.reminders.WithLabelValues(channel, status).Inc()
}

func (m *BookingMetrics) SetLiveSessions(n int) {
	if m == nil {
		return
	}
	m.liveSessions.Set(float64(n))
}
