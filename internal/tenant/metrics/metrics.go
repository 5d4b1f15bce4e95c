// Package metrics tracks tenant administration counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TenantsCreated   prometheus.Counter
	TenantsSuspended prometheus.Counter
	BrandingUpdates  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TenantsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_tenants_created_total",
			Help: "Total number of tenants created.",
		}),
		TenantsSuspended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_tenants_suspended_total",
			Help: "Total number of tenant suspensions.",
		}),
		BrandingUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vowline_branding_updates_total",
			Help: "Total number of branding updates.",
		}),
	}
}

func (m *Metrics) IncTenantsCreated() {
	if m != nil {
		m.TenantsCreated.Inc()
	}
}

func (m *Metrics) IncTenantsSuspended() {
	if m != nil {
		m.TenantsSuspended.Inc()
	}
}

func (m *Metrics) IncBrandingUpdates() {
	if m != nil {
		m.BrandingUpdates.Inc()
	}
}
