package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphDomain "github.com/fulcrumlabs/flashrelay/business/graph/domain"
	"github.com/fulcrumlabs/flashrelay/business/signal"
	tokendexApp "github.com/fulcrumlabs/flashrelay/business/tokendex/app"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

// newTestOrchestrator builds an Orchestrator whose only live dependency
// is an empty tokendex registry: every candidate fails closed on the
// first token lookup in evaluateIntraChain/evaluateCrossChain, which is
// enough to exercise the bounded fan-out and the drop-on-full queue
// behavior without wiring the rest of the scan pipeline's collaborators.
func newTestOrchestrator(t *testing.T, workerPoolWidth, queueSize int) *Orchestrator {
	t.Helper()
	o := &Orchestrator{
		cfg:         Config{WorkerPoolWidth: workerPoolWidth, SignalQueueSize: queueSize},
		tokens:      tokendexApp.New(asset.NewRegistry()),
		signalQueue: make(chan *signal.TradeSignal, queueSize),
		log:         logger.New(io.Discard, logger.LevelError, "scanner-test", nil),
	}
	require.NoError(t, o.initMetrics())
	return o
}

func TestEvaluateAll_BoundedPoolDrainsAllCandidates(t *testing.T) {
	o := newTestOrchestrator(t, 2, 8)

	candidates := make([]graphDomain.Candidate, 50)
	for i := range candidates {
		candidates[i] = graphDomain.Candidate{SourceChain: 1, DestChain: 1, TokenSymbol: "USDC", DexA: "a", DexB: "b"}
	}

	done := make(chan struct{})
	go func() {
		o.evaluateAll(context.Background(), candidates, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("evaluateAll did not drain within the cancellation-free budget")
	}

	snap := o.Stats()
	assert.EqualValues(t, len(candidates), snap.CandidatesEvaluated)
	assert.EqualValues(t, len(candidates), snap.CandidatesErrored, "every candidate fails closed on the empty tokendex registry")
}

func TestEvaluateAll_StopsFanOutOnCancellation(t *testing.T) {
	o := newTestOrchestrator(t, 1, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates := make([]graphDomain.Candidate, 10)
	for i := range candidates {
		candidates[i] = graphDomain.Candidate{SourceChain: 1, DestChain: 1, TokenSymbol: "USDC"}
	}

	done := make(chan struct{})
	go func() {
		o.evaluateAll(ctx, candidates, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("evaluateAll did not return promptly after cancellation")
	}
}

func TestEmit_DropsNewestWhenQueueFull(t *testing.T) {
	o := newTestOrchestrator(t, 1, 1)

	sig1 := &signal.TradeSignal{ChainID: 1, Token: "0xabc"}
	sig2 := &signal.TradeSignal{ChainID: 1, Token: "0xdef"}

	o.emit(context.Background(), sig1)
	o.emit(context.Background(), sig2)

	assert.EqualValues(t, 1, o.Stats().SignalsDropped)

	queued := <-o.signalQueue
	assert.Equal(t, sig1, queued)
}
