package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var m dto.Metric
	require.NoError(t, (<-ch).Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestBookingMetricsObserve(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveTransition("next", "client_details")
	m.ObserveTransition("next", "client_details")
	m.ObserveValidationFailure("client_details", "phone")
	m.ObserveSubmission("success")
	m.ObserveEmail("http", "salon", true, 0.2)
	m.ObserveEmail("http", "customer", false, 0.4)
	m.ObserveSlotLoad("cancelled")
	m.ObserveReminder("sms", true)
	m.SetLiveSessions(3)

	assert.Equal(t, 2.0, counterValue(t, m.transitions.WithLabelValues("next", "client_details")))
	assert.Equal(t, 1.0, counterValue(t, m.validationFailures.WithLabelValues("client_details", "phone")))
	assert.Equal(t, 1.0, counterValue(t, m.emailSends.WithLabelValues("http", "customer", "failed")))
	assert.Equal(t, 1.0, counterValue(t, m.reminders.WithLabelValues("sms", "sent")))
	assert.Equal(t, 3.0, counterValue(t, m.liveSessions))
}

func TestBookingMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	defer func() { prometheus.DefaultRegisterer = prev }()

	m := NewBookingMetrics(nil)
	m.ObserveSubmission("failed")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pitaya_wizard_submissions_total")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveTransition("back", "preferences")
	m.ObserveValidationFailure("x", "y")
	m.ObserveSubmission("success")
	m.ObserveEmail("ses", "salon", true, 0.1)
	m.ObserveSlotLoad("delivered")
	m.ObserveReminder("email", false)
	m.SetLiveSessions(1)
}
