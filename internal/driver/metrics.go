package driver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "searchtree"
	driverSubsystem  = "driver"
)

// Metrics counts what a driver did to its tree.
type Metrics struct {
	// Activations counts node activations, failed ones included.
	Activations prometheus.Counter
	// Failures counts activations that ended in a propagation failure.
	Failures prometheus.Counter
	// Solutions counts closed leaves.
	Solutions prometheus.Counter
	// Backtracks counts moves to a parent.
	Backtracks prometheus.Counter
}

// NewMetrics creates the driver counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Activations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "activations_total",
			Help:      "Total number of node activations",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "propagation_failures_total",
			Help:      "Total number of activations that failed propagation",
		}),
		Solutions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "solutions_total",
			Help:      "Total number of solutions found",
		}),
		Backtracks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "backtracks_total",
			Help:      "Total number of moves back to a parent node",
		}),
	}
}
