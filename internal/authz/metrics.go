package authz

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts authorization outcomes. A nil *Metrics records nothing.
type Metrics struct {
	decisions *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "library_authz_decisions_total",
		Help: "Authorization decisions by permission, outcome and deny reason.",
	}, []string{"permission", "outcome", "reason"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "library_authz_errors_total",
		Help: "Authorization checks that failed to read their snapshot.",
	}, []string{"permission"})
	reg.MustRegister(decisions, errs)
	return &Metrics{decisions: decisions, errors: errs}
}

func (m *Metrics) observe(permission string, d Decision) {
	if m == nil {
		return
	}
	outcome, reason := "allow", ""
	if !d.Allowed {
		outcome = "deny"
		switch d.Reason {
		case ReasonInactive, ReasonNoRole, ReasonNoGrant, ReasonNotAuthenticated:
			reason = d.Reason
		default:
			reason = "permission required"
		}
	}
	m.decisions.WithLabelValues(permission, outcome, reason).Inc()
}

func (m *Metrics) observeError(permission string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(permission).Inc()
}
