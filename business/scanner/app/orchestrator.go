package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	advisoryApp "github.com/fulcrumlabs/flashrelay/business/advisory/app"
	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	gasfeedDomain "github.com/fulcrumlabs/flashrelay/business/gasfeed/domain"
	graphApp "github.com/fulcrumlabs/flashrelay/business/graph/app"
	graphDomain "github.com/fulcrumlabs/flashrelay/business/graph/domain"
	pricingApp "github.com/fulcrumlabs/flashrelay/business/pricing/app"
	profitabilityApp "github.com/fulcrumlabs/flashrelay/business/profitability/app"
	profitabilityDomain "github.com/fulcrumlabs/flashrelay/business/profitability/domain"
	"github.com/fulcrumlabs/flashrelay/business/scanner/domain"
	"github.com/fulcrumlabs/flashrelay/business/signal"
	tokendexApp "github.com/fulcrumlabs/flashrelay/business/tokendex/app"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

const (
	tracerName = "github.com/fulcrumlabs/flashrelay/business/scanner/app"
	meterName  = "github.com/fulcrumlabs/flashrelay/business/scanner/app"

	gasHoldRetryDelay     = 2 * time.Second
	cancelDrainBudget     = 5 * time.Second
	defaultBridgeFeeBps   = 10 // 0.10%, conservative flat estimate (spec §1 non-goal: bridge aggregator quoting)
)

// Config holds the scan loop's tunables (spec §4.7).
type Config struct {
	ScanInterval        time.Duration
	GasSampleTimeout    time.Duration
	WorkerPoolWidth     int
	SignalQueueSize     int
	DefaultFlashSource  profitabilityDomain.FlashSource
	EstimatedGasUnits   uint64
	BridgeFeeBps        int
	MinProfitUSD        decimal.Decimal
}

// DefaultConfig returns the spec's default tunables.
func DefaultConfig() Config {
	return Config{
		ScanInterval:       2 * time.Second,
		GasSampleTimeout:   3 * time.Second,
		WorkerPoolWidth:    20,
		SignalQueueSize:    256,
		DefaultFlashSource: profitabilityDomain.FlashSourceBalancerV3,
		EstimatedGasUnits:  300_000,
		BridgeFeeBps:       defaultBridgeFeeBps,
		MinProfitUSD:       profitabilityApp.DefaultMinProfitUSD,
	}
}

type orchestratorMetrics struct {
	iterations   metric.Int64Counter
	candidates   metric.Int64Counter
	signals      metric.Int64Counter
	drops        metric.Int64Counter
	iterationMs  metric.Float64Histogram
}

// Orchestrator runs the fixed-interval scan loop tying together gas
// sampling, the advisory layer, candidate enumeration, pricing,
// profitability and execution-signal emission (spec §4.7).
type Orchestrator struct {
	cfg Config

	gas          GasSampler
	gasAdvisor   advisoryApp.GasAdvisor
	registry     *chainregistryApp.Registry
	graph        *graphApp.Service
	tokens       *tokendexApp.Registry
	router       *pricingApp.Router
	profit       *profitabilityApp.Service
	priceOracle  PriceOracle
	client       ExecutionClient

	stats       domain.Stats
	signalQueue chan *signal.TradeSignal

	log     logger.LoggerInterface
	tracer  trace.Tracer
	metrics *orchestratorMetrics
}

// New builds an Orchestrator.
func New(
	cfg Config,
	registry *chainregistryApp.Registry,
	graph *graphApp.Service,
	tokens *tokendexApp.Registry,
	router *pricingApp.Router,
	profit *profitabilityApp.Service,
	gas GasSampler,
	gasAdvisor advisoryApp.GasAdvisor,
	priceOracle PriceOracle,
	client ExecutionClient,
	log logger.LoggerInterface,
) (*Orchestrator, error) {
	if cfg.WorkerPoolWidth <= 0 {
		cfg.WorkerPoolWidth = 20
	}
	if cfg.SignalQueueSize <= 0 {
		cfg.SignalQueueSize = 256
	}
	if cfg.MinProfitUSD.IsZero() {
		cfg.MinProfitUSD = profitabilityApp.DefaultMinProfitUSD
	}

	o := &Orchestrator{
		cfg:         cfg,
		gas:         gas,
		gasAdvisor:  gasAdvisor,
		registry:    registry,
		graph:       graph,
		tokens:      tokens,
		router:      router,
		profit:      profit,
		priceOracle: priceOracle,
		client:      client,
		signalQueue: make(chan *signal.TradeSignal, cfg.SignalQueueSize),
		log:         log,
		tracer:      otel.Tracer(tracerName),
	}
	if err := o.initMetrics(); err != nil {
		return nil, fmt.Errorf("scanner: init metrics: %w", err)
	}
	return o, nil
}

func (o *Orchestrator) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error
	o.metrics = &orchestratorMetrics{}

	o.metrics.iterations, err = meter.Int64Counter("scanner_iterations_total", metric.WithDescription("Completed scan iterations"))
	if err != nil {
		return err
	}
	o.metrics.candidates, err = meter.Int64Counter("scanner_candidates_evaluated_total", metric.WithDescription("Candidates evaluated"))
	if err != nil {
		return err
	}
	o.metrics.signals, err = meter.Int64Counter("scanner_signals_emitted_total", metric.WithDescription("Profitable signals handed to the execution client"))
	if err != nil {
		return err
	}
	o.metrics.drops, err = meter.Int64Counter("scanner_signals_dropped_total", metric.WithDescription("Signals dropped due to a full execution queue"))
	if err != nil {
		return err
	}
	o.metrics.iterationMs, err = meter.Float64Histogram("scanner_iteration_latency_ms", metric.WithDescription("Scan iteration latency"), metric.WithUnit("ms"))
	return err
}

// Stats returns a snapshot of the scan loop's counters.
func (o *Orchestrator) Stats() domain.Snapshot {
	return o.stats.Snapshot()
}

// Run executes the scan loop until ctx is cancelled (spec §4.7).
// Cancellation drains in-flight workers within a ≤5 s budget, writes a
// final stats line, and returns nil (the caller decides the process
// exit code, per §4.7's "exit 0" requirement living in cmd/brain).
func (o *Orchestrator) Run(ctx context.Context) error {
	go o.dispatchLoop(ctx)

	for {
		if ctx.Err() != nil {
			o.logFinalStats(ctx)
			return nil
		}

		o.runIteration(ctx)

		select {
		case <-ctx.Done():
			o.logFinalStats(ctx)
			return nil
		case <-time.After(o.cfg.ScanInterval):
		}
	}
}

func (o *Orchestrator) logFinalStats(ctx context.Context) {
	snap := o.stats.Snapshot()
	o.log.Info(context.Background(), "scanner: final stats",
		"iterations", snap.IterationsRun,
		"candidates_evaluated", snap.CandidatesEvaluated,
		"signals_emitted", snap.SignalsEmitted,
		"signals_dropped", snap.SignalsDropped,
		"signals_failed", snap.SignalsFailed,
	)
}

// runIteration performs one pass of the §4.7 loop: gas fan-out,
// advisory hold, candidate enumeration, bounded-width evaluation.
func (o *Orchestrator) runIteration(ctx context.Context) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "scanner.iteration")
	defer span.End()

	chainIDs := o.chainIDs()
	span.SetAttributes(attribute.Int("chain_count", len(chainIDs)))
	samples := o.gas.SampleAll(ctx, chainIDs, o.cfg.GasSampleTimeout)
	if obs, ok := o.gasAdvisor.(interface {
		Observe(chainID uint64, gwei decimal.Decimal)
	}); ok {
		for id, s := range samples {
			if s != nil && s.GasPriceWei != nil {
				obs.Observe(id, decimal.NewFromBigInt(s.GasPriceWei, -9))
			}
		}
	}

	if o.shouldHold(ctx, chainIDs) {
		o.stats.AddGasHold()
		select {
		case <-ctx.Done():
		case <-time.After(gasHoldRetryDelay):
		}
		return
	}

	candidates := o.graph.Enumerate()
	o.stats.AddEnumerated(int64(len(candidates)))
	span.SetAttributes(attribute.Int("candidate_count", len(candidates)))

	o.evaluateAll(ctx, candidates, samples)

	o.stats.AddIteration()
	o.metrics.iterations.Add(ctx, 1)
	o.metrics.iterationMs.Record(ctx, float64(time.Since(start).Milliseconds()))
}

// shouldHold consults the gas-trend advisor for every chain observed
// this iteration; any chain voting to hold pauses the whole iteration,
// since a flash-loan route may span more than one of them.
func (o *Orchestrator) shouldHold(ctx context.Context, chainIDs []uint64) bool {
	for _, id := range chainIDs {
		if o.gasAdvisor.ShouldWait(ctx, id) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) chainIDs() []uint64 {
	all := o.registry.All()
	out := make([]uint64, 0, len(all))
	for _, d := range all {
		out = append(out, d.ChainID)
	}
	return out
}

// evaluateAll fans candidates out across a bounded worker pool (spec
// §4.7 step 4, default width 20). Evaluation errors are swallowed at
// the worker boundary, counted, and logged; they never stop the loop.
func (o *Orchestrator) evaluateAll(ctx context.Context, candidates []graphDomain.Candidate, samples map[uint64]*gasfeedDomain.Sample) {
	sem := make(chan struct{}, o.cfg.WorkerPoolWidth)
	var wg sync.WaitGroup

fanOut:
	for _, c := range candidates {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break fanOut
		}

		wg.Add(1)
		go func(candidate graphDomain.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()
			o.evaluateOne(ctx, candidate, samples)
		}(c)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(cancelDrainBudget):
		o.log.Warn(ctx, "scanner: worker drain exceeded cancellation budget")
	}
}

// evaluateOne runs one candidate through sizing, quoting and profit
// computation, and emits a trade signal if it clears the profit floor.
func (o *Orchestrator) evaluateOne(ctx context.Context, candidate graphDomain.Candidate, samples map[uint64]*gasfeedDomain.Sample) {
	o.stats.AddEvaluated()
	o.metrics.candidates.Add(ctx, 1)

	sig, err := o.evaluateCandidate(ctx, candidate, samples)
	if err != nil {
		o.stats.AddErrored()
		o.log.Debug(ctx, "scanner: candidate evaluation skipped", "source_chain", candidate.SourceChain, "dest_chain", candidate.DestChain, "token", candidate.TokenSymbol, "error", err)
		return
	}
	if sig == nil {
		return // priced, not profitable
	}

	o.emit(ctx, sig)
}

// emit hands a profitable signal to the execution client's queue,
// dropping the newest signal (not the oldest) when the queue is full
// (spec §5 backpressure) so execution latency never grows unbounded.
func (o *Orchestrator) emit(ctx context.Context, sig *signal.TradeSignal) {
	select {
	case o.signalQueue <- sig:
	default:
		o.stats.AddDropped()
		o.metrics.drops.Add(ctx, 1)
		o.log.Warn(ctx, "scanner: execution queue full, dropping newest signal", "dropped_total", o.stats.Snapshot().SignalsDropped, "chain_id", sig.ChainID, "token", sig.Token)
	}
}

// dispatchLoop drains the signal queue and submits each signal to the
// execution client independently (spec §4.7: "signals emitted within
// an iteration must be consumed independently").
func (o *Orchestrator) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-o.signalQueue:
			o.submit(ctx, sig)
		}
	}
}

func (o *Orchestrator) submit(ctx context.Context, sig *signal.TradeSignal) {
	result, err := o.client.Submit(ctx, sig)
	if err != nil {
		o.stats.AddFailed()
		o.log.Warn(ctx, "scanner: execution client submit failed", "chain_id", sig.ChainID, "token", sig.Token, "error", err)
		return
	}
	o.stats.AddEmitted()
	o.metrics.signals.Add(ctx, 1)
	if result != nil && !result.Success {
		o.log.Info(ctx, "scanner: executor rejected signal", "chain_id", sig.ChainID, "token", sig.Token, "reason", result.Error)
	}
}

// evaluateCandidate sizes the loan, quotes every hop, and computes net
// profit for one candidate. It returns (nil, nil) when the candidate
// prices cleanly but falls short of the profit floor, and a non-nil
// error for any upstream failure (unresolved token, unpriceable hop,
// insufficient vault liquidity), which the caller counts and logs.
func (o *Orchestrator) evaluateCandidate(ctx context.Context, candidate graphDomain.Candidate, samples map[uint64]*gasfeedDomain.Sample) (*signal.TradeSignal, error) {
	if candidate.IsCrossChain {
		return o.evaluateCrossChain(ctx, candidate, samples)
	}
	return o.evaluateIntraChain(ctx, candidate, samples)
}
