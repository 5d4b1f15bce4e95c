// Package metrics records notification pipeline counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	fanouts     prometheus.Counter
	delivered   prometheus.Counter
	emailsSent  prometheus.Counter
	emailErrors prometheus.Counter
	dropped     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		fanouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_notification_events_total",
			Help: "Events accepted by the fan-out worker.",
		}),
		delivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_notifications_created_total",
			Help: "Per-user inbox notifications created.",
		}),
		emailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_notification_emails_total",
			Help: "Notification emails handed to the mailer.",
		}),
		emailErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_notification_email_errors_total",
			Help: "Notification emails that failed to send.",
		}),
		dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_notification_events_dropped_total",
			Help: "Events dropped because the worker queue was full.",
		}),
	}
}

func (m *Metrics) IncFanouts() {
	if m == nil {
		return
	}
	m.fanouts.Inc()
}

func (m *Metrics) IncDelivered() {
	if m == nil {
		return
	}
	m.delivered.Inc()
}

func (m *Metrics) IncEmailsSent() {
	if m == nil {
		return
	}
	m.emailsSent.Inc()
}

func (m *Metrics) IncEmailErrors() {
	if m == nil {
		return
	}
	m.emailErrors.Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
