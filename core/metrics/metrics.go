package metrics

import (
	"time"

	"github.com/soleng-dk/flexopt/core/model"
)

// SolveEvent captures the outcome of one build-solve-extract cycle.
type SolveEvent struct {
	Scenario  string
	Variant   model.Variant
	Status    string
	Optimal   bool
	Objective float64
	Duration  time.Duration
	Time      time.Time
}

// Sink records solve events for observability purposes.
type Sink interface {
	RecordSolve(ev SolveEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }
