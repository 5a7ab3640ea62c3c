package microphone

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeGranted        = "granted"
	outcomeDenied         = "denied"
	outcomeNotImplemented = "not_implemented"

	// methodOther labels every unrecognized method so that caller-chosen
	// names do not create new series.
	methodOther = "other"
)

// Metrics counts bridge traffic. A nil *Metrics records nothing.
type Metrics struct {
	// Calls counts replies by method and outcome.
	Calls *prometheus.CounterVec

	// Pending is the number of platform requests awaiting their callback.
	Pending prometheus.Gauge
}

// NewMetrics registers the bridge metrics with reg. A nil reg uses a
// private registry that is never exported.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Metrics{
		Calls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "micbridge_method_calls_total",
			Help: "Method calls answered by the microphone bridge, by outcome.",
		}, []string{"method", "outcome"}),

		Pending: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "micbridge_permission_requests_pending",
			Help: "Platform permission requests waiting for their completion callback.",
		}),
	}
}

func outcomeFor(granted bool) string {
	if granted {
		return outcomeGranted
	}
	return outcomeDenied
}

func (m *Metrics) observe(method, outcome string) {
	if m == nil {
		return
	}
	if method != MethodRequestPermission {
		method = methodOther
	}
	m.Calls.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) requestStarted() {
	if m != nil {
		m.Pending.Inc()
	}
}

func (m *Metrics) requestFinished() {
	if m != nil {
		m.Pending.Dec()
	}
}
