package ichspi

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics is nil when no registerer was given; every method tolerates that.
type metrics struct {
	cycles *prometheus.CounterVec
	errors *prometheus.CounterVec
	polls  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ichspi_cycles_total",
				Help: "Number of SPI controller cycles issued",
			},
			[]string{"engine", "op"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ichspi_cycle_errors_total",
				Help: "Number of SPI controller cycles that timed out or failed",
			},
			[]string{"engine", "kind"},
		),
		polls: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ichspi_poll_iterations",
				Help:    "Status polls needed for a cycle to complete",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}

	var err error
	if m.cycles, err = registerCounterVec(reg, m.cycles); err != nil {
		return nil, err
	}
	if m.errors, err = registerCounterVec(reg, m.errors); err != nil {
		return nil, err
	}
	if err := reg.Register(m.polls); err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if !errors.As(err, &are) {
			return nil, err
		}
		m.polls = are.ExistingCollector.(prometheus.Histogram)
	}
	return m, nil
}

// registerCounterVec registers v, reusing an identical collector registered
// by an earlier controller.
func registerCounterVec(reg prometheus.Registerer, v *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(v); err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return v, nil
}

func (m *metrics) cycle(engine, op string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(engine, op).Inc()
}

func (m *metrics) cycleError(engine string, err error) {
	if m == nil {
		return
	}
	kind := "transaction"
	if errors.Is(err, ErrTimeout) {
		kind = "timeout"
	}
	m.errors.WithLabelValues(engine, kind).Inc()
}

func (m *metrics) polled(n int) {
	if m == nil {
		return
	}
	m.polls.Observe(float64(n))
}
