package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/soleng-dk/flexopt/core/metrics"
)

// PromSink records solve events in Prometheus metrics.
type PromSink struct {
	solves    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	objective *prometheus.GaugeVec
}

// NewPromSink registers solve metrics on the default Prometheus
// registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flexopt_solves_total",
		Help: "Total number of solve attempts",
	}, []string{"variant", "status", "optimal"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flexopt_solve_duration_seconds",
		Help:    "Wall time of the solver call",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant"})
	objective := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flexopt_objective_value",
		Help: "Objective value of the last optimal solve",
	}, []string{"variant", "scenario"})

	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(objective); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			objective = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{solves: solves, duration: duration, objective: objective}, nil
}

// RecordSolve updates the solve counters and histograms.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	variant := ev.Variant.String()
	s.solves.WithLabelValues(variant, ev.Status, strconv.FormatBool(ev.Optimal)).Inc()
	s.duration.WithLabelValues(variant).Observe(ev.Duration.Seconds())
	if ev.Optimal {
		s.objective.WithLabelValues(variant, ev.Scenario).Set(ev.Objective)
	}
	return nil
}
