package announce

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts announced units and bonded commitment transitions.
type Metrics struct {
	units       *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registerer when
// it is not nil.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apostille",
			Name:      "units_total",
			Help:      "Submission units announced, by unit kind and outcome",
		}, []string{"kind", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apostille",
			Name:      "bonded_transitions_total",
			Help:      "Bonded commitment state transitions, by target state",
		}, []string{"state"}),
	}

	if registerer != nil {
		for _, collector := range []prometheus.Collector{metrics.units, metrics.transitions} {
			if err := registerer.Register(collector); err != nil {
				return nil, err
			}
		}
	}
	return metrics, nil
}

func (m *Metrics) observeResult(result Result) {
	if m == nil {
		return
	}
	outcome := "success"
	if result.Err != nil {
		outcome = "failure"
	}
	m.units.WithLabelValues(result.Kind.String(), outcome).Inc()
}

func (m *Metrics) observeTransition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}
