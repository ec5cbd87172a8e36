// Package domain models the scan orchestrator's process-wide mutable
// state (spec §4.7, §5): a single statistics counter block, the only
// legitimate shared state besides the execution pipeline's own
// circuit breaker. Every field is updated through atomic operations
// from Stats, never through a module-level singleton.
package domain

import "sync/atomic"

// Stats accumulates scan-loop counters across iterations. All fields
// are updated via atomic operations so concurrent workers and the
// stats-reporting goroutine never race.
type Stats struct {
	IterationsRun       int64
	GasHolds            int64
	CandidatesEnumerated int64
	CandidatesEvaluated int64
	CandidatesErrored   int64
	SignalsEmitted      int64
	SignalsDropped      int64
	SignalsFailed       int64
}

// Snapshot is an immutable copy of Stats for reporting.
type Snapshot struct {
	IterationsRun        int64
	GasHolds             int64
	CandidatesEnumerated int64
	CandidatesEvaluated  int64
	CandidatesErrored    int64
	SignalsEmitted       int64
	SignalsDropped       int64
	SignalsFailed        int64
}

// AddIteration increments the completed-iteration counter.
func (s *Stats) AddIteration() { atomic.AddInt64(&s.IterationsRun, 1) }

// AddGasHold increments the gas-trend-hold counter.
func (s *Stats) AddGasHold() { atomic.AddInt64(&s.GasHolds, 1) }

// AddEnumerated adds n to the enumerated-candidate counter.
func (s *Stats) AddEnumerated(n int64) { atomic.AddInt64(&s.CandidatesEnumerated, n) }

// AddEvaluated increments the evaluated-candidate counter.
func (s *Stats) AddEvaluated() { atomic.AddInt64(&s.CandidatesEvaluated, 1) }

// AddErrored increments the evaluation-error counter.
func (s *Stats) AddErrored() { atomic.AddInt64(&s.CandidatesErrored, 1) }

// AddEmitted increments the signals-handed-to-the-execution-client counter.
func (s *Stats) AddEmitted() { atomic.AddInt64(&s.SignalsEmitted, 1) }

// AddDropped increments the backpressure-drop counter.
func (s *Stats) AddDropped() { atomic.AddInt64(&s.SignalsDropped, 1) }

// AddFailed increments the submit-failed counter.
func (s *Stats) AddFailed() { atomic.AddInt64(&s.SignalsFailed, 1) }

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		IterationsRun:        atomic.LoadInt64(&s.IterationsRun),
		GasHolds:             atomic.LoadInt64(&s.GasHolds),
		CandidatesEnumerated: atomic.LoadInt64(&s.CandidatesEnumerated),
		CandidatesEvaluated:  atomic.LoadInt64(&s.CandidatesEvaluated),
		CandidatesErrored:    atomic.LoadInt64(&s.CandidatesErrored),
		SignalsEmitted:       atomic.LoadInt64(&s.SignalsEmitted),
		SignalsDropped:       atomic.LoadInt64(&s.SignalsDropped),
		SignalsFailed:        atomic.LoadInt64(&s.SignalsFailed),
	}
}
