package xsrf

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
}

// newMetrics registers the request counter on reg. A counter already
// registered there, e.g. by another Guard, is shared.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xsrf_requests_total",
			Help: "Requests seen by the XSRF guard, by outcome",
		},
		[]string{"outcome"},
	)
	if err := reg.Register(requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			panic(err)
		}
		requests = existing
	}
	return &metrics{requests: requests}
}

func (m *metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}
