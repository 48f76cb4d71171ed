// AngelaMos | 2026
// metrics.go

package account

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	reasonDuplicateEmail = "duplicate_email"
	reasonInvalidInput   = "invalid_input"
)

// Metrics counts account creation outcomes. A nil *Metrics records nothing.
type Metrics struct {
	createdTotal  *prometheus.CounterVec
	rejectedTotal *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenant_accounts",
			Name:      "accounts_created_total",
			Help:      "Accounts created, by role.",
		}, []string{"role"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenant_accounts",
			Name:      "accounts_rejected_total",
			Help:      "Account creations rejected by a business rule, by reason.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{m.createdTotal, m.rejectedTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) created(role Role) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(role.String()).Inc()
}

func (m *Metrics) rejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
}
