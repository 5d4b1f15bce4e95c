// Package metrics records authentication counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	logins         prometheus.Counter
	loginFailures  prometheus.Counter
	lockouts       prometheus.Counter
	passwordResets prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_logins_total",
			Help: "Successful logins.",
		}),
		loginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_login_failures_total",
			Help: "Rejected login attempts.",
		}),
		lockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_login_lockouts_total",
			Help: "Accounts locked after repeated failures.",
		}),
		passwordResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_password_resets_total",
			Help: "Completed password resets.",
		}),
	}
}

func (m *Metrics) IncLogins() {
	if m == nil {
		return
	}
	m.logins.Inc()
}

func (m *Metrics) IncLoginFailures() {
	if m == nil {
		return
	}
	m.loginFailures.Inc()
}

func (m *Metrics) IncLockouts() {
	if m == nil {
		return
	}
	m.lockouts.Inc()
}

func (m *Metrics) IncPasswordResets() {
	if m == nil {
		return
	}
	m.passwordResets.Inc()
}
