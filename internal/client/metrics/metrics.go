// Package metrics records client profile counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	profilesCreated prometheus.Counter
	accessShared    prometheus.Counter
	accessRevoked   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		profilesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_client_profiles_created_total",
			Help: "Client profiles created by tenants.",
		}),
		accessShared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_tenant_access_shared_total",
			Help: "TenantAccess grants created by clients.",
		}),
		accessRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_tenant_access_revoked_total",
			Help: "TenantAccess grants revoked by clients.",
		}),
	}
}

func (m *Metrics) IncProfilesCreated() {
	if m == nil {
		return
	}
	m.profilesCreated.Inc()
}

func (m *Metrics) IncAccessShared() {
	if m == nil {
		return
	}
	m.accessShared.Inc()
}

func (m *Metrics) IncAccessRevoked() {
	if m == nil {
		return
	}
	m.accessRevoked.Inc()
}
