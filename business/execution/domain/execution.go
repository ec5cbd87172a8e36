// Package domain models the execution pipeline's shared types: the
// circuit breaker state, execution mode, and the result record
// returned from running a signal through all seven stages.
package domain

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fulcrumlabs/flashrelay/internal/circuitbreaker"
)

// Mode mirrors config.ExecutionMode but lives in this package so the
// pipeline doesn't import internal/config directly.
type Mode string

const (
	ModePaper Mode = "PAPER"
	ModeLive  Mode = "LIVE"
)

// Breaker counts consecutive post-Stage-4 failures and trips after the
// configured threshold, forcing Stage 5 to reject with
// CircuitBreakerOpen until the cooldown elapses (spec §4.9).
type Breaker struct {
	cb *circuitbreaker.CircuitBreaker[struct{}]
}

// NewBreaker builds a Breaker tripping after failureLimit consecutive
// failures, cooling down for cooldown.
func NewBreaker(failureLimit int, cooldown time.Duration) *Breaker {
	cfg := circuitbreaker.Config{
		Name:         "execution-pipeline",
		MaxRequests:  1,
		Interval:     0, // never reset the rolling window on its own; only on success/trip
		Timeout:      cooldown,
		FailureRatio: 0.999, // trips only once MinRequests consecutive failures accumulate
		MinRequests:  uint32(failureLimit),
	}
	return &Breaker{cb: circuitbreaker.New[struct{}](cfg)}
}

// Allow reports whether the breaker currently permits a signing
// attempt (Stage 5); it does not itself record success or failure.
func (b *Breaker) Allow() bool {
	return b.cb.State() != gobreaker.StateOpen
}

// RecordFailure marks a post-Stage-4 failure for breaker accounting.
// Crossing the configured consecutive-failure threshold opens the
// breaker for the configured cooldown.
func (b *Breaker) RecordFailure() {
	_, _ = b.cb.Execute(func() (struct{}, error) { return struct{}{}, errPostStage4Failure })
}

// RecordSuccess resets the breaker's consecutive-failure count, as
// required by spec §4.9 ("resetting the counter on success is
// required").
func (b *Breaker) RecordSuccess() {
	_, _ = b.cb.Execute(func() (struct{}, error) { return struct{}{}, nil })
}

var errPostStage4Failure = errors.New("execution: post-stage-4 failure")

// Stats is the process-wide counter set exposed at GET /stats (spec §3
// "Execution statistics").
type Stats struct {
	TotalSignals        int64
	PaperExecuted       int64
	LiveExecuted        int64
	Failed              int64
	ConsecutiveFailures int64
	CumulativeProfitUSD float64
}

// Result is the outcome of running one signal through the pipeline.
// ID is assigned once per Execute/Simulate call so a client watching
// the websocket event feed can correlate a broadcast event with the
// HTTP response that triggered it.
type Result struct {
	ID              string
	Success         bool
	Mode            Mode
	Stage           string
	TxHash          string
	SimulationGas   uint64
	SimulationError string
	ExpectedProfit  float64
	Timestamp       time.Time
	Error           string
}
