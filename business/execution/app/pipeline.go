// Package app implements the seven-stage execution pipeline (spec
// §4.9): the sequence every trade signal runs through, from wire
// validation to private bundle submission.
package app

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	chainregistryDomain "github.com/fulcrumlabs/flashrelay/business/chainregistry/domain"
	"github.com/fulcrumlabs/flashrelay/business/execution/domain"
	gasfeedDomain "github.com/fulcrumlabs/flashrelay/business/gasfeed/domain"
	"github.com/fulcrumlabs/flashrelay/business/pricing/infra/simulate"
	"github.com/fulcrumlabs/flashrelay/business/signal"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

const (
	tracerName = "github.com/fulcrumlabs/flashrelay/business/execution/app"
	meterName  = "github.com/fulcrumlabs/flashrelay/business/execution/app"

	minPriorityFeeGwei = 1.0

	// Stage identifiers recorded on domain.Result and the OTEL stage
	// counter. Only stageSimulate and stageSubmit count toward the
	// breaker's consecutive-failure accounting (spec §4.9): Stages 1-3
	// and the Stage 5 sub-gates are deterministic config/signal gates,
	// not stochastic execution failures.
	stageValidate  = "validate"
	stageChainGate = "chain-gate"
	stageBuild     = "build"
	stageSimulate  = "simulate"
	stageBlocked   = "blocked"
	stageSubmit    = "submit"
)

// GasSampler is the subset of gasfeed's app.Service the pipeline needs
// for Stage 3 fee computation. Accepting the narrow interface (not the
// concrete type) keeps pipeline tests free to stub it.
type GasSampler interface {
	SampleAll(ctx context.Context, chainIDs []uint64, timeout time.Duration) map[uint64]*gasfeedDomain.Sample
}

// Config holds the execution-wide safety parameters the pipeline
// enforces (mirrors internal/config.ExecutionConfig, kept decoupled so
// this package never imports internal/config directly).
type Config struct {
	Mode                domain.Mode
	MaxCalldataBytes    int
	MaxBaseFeeGwei      float64
	GasLimitMultiplier  float64
	BreakerFailureLimit int
	BreakerCooldown     time.Duration
}

type pipelineMetrics struct {
	stageFailures  metric.Int64Counter
	signalsTotal   metric.Int64Counter
	pipelineLatency metric.Float64Histogram
}

// Pipeline runs trade signals through the seven stages described in
// spec §4.9, short-circuiting after Stage 4 in PAPER mode.
type Pipeline struct {
	cfg Config

	registry  *chainregistryApp.Registry
	clients   *chainregistryApp.ClientPool
	simulator *simulate.Simulator
	gas       GasSampler
	signer    Signer
	relayer   Relayer
	breaker   *domain.Breaker

	stats   domain.Stats
	log     logger.LoggerInterface
	tracer  trace.Tracer
	metrics *pipelineMetrics
}

// New builds a Pipeline.
func New(cfg Config, registry *chainregistryApp.Registry, clients *chainregistryApp.ClientPool, simulator *simulate.Simulator, gas GasSampler, signer Signer, relayer Relayer, log logger.LoggerInterface) (*Pipeline, error) {
	p := &Pipeline{
		cfg:       cfg,
		registry:  registry,
		clients:   clients,
		simulator: simulator,
		gas:       gas,
		signer:    signer,
		relayer:   relayer,
		breaker:   domain.NewBreaker(cfg.BreakerFailureLimit, cfg.BreakerCooldown),
		log:       log,
		tracer:    otel.Tracer(tracerName),
	}
	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("execution: init metrics: %w", err)
	}
	return p, nil
}

func (p *Pipeline) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error
	p.metrics = &pipelineMetrics{}

	p.metrics.stageFailures, err = meter.Int64Counter("execution_stage_failures_total", metric.WithDescription("Pipeline failures by stage"))
	if err != nil {
		return err
	}
	p.metrics.signalsTotal, err = meter.Int64Counter("execution_signals_total", metric.WithDescription("Total trade signals run through the pipeline"))
	if err != nil {
		return err
	}
	p.metrics.pipelineLatency, err = meter.Float64Histogram("execution_pipeline_latency_ms", metric.WithDescription("End-to-end pipeline latency"), metric.WithUnit("ms"))
	return err
}

// Healthy reports whether the pipeline's circuit breaker currently
// permits submissions. A tripped breaker at process shutdown is the
// signal an operator's health check should surface as degraded.
func (p *Pipeline) Healthy() bool {
	return p.breaker.Allow()
}

// Stats returns a snapshot of the process-wide execution counters.
func (p *Pipeline) Stats() domain.Stats {
	return domain.Stats{
		TotalSignals:        atomic.LoadInt64(&p.stats.TotalSignals),
		PaperExecuted:       atomic.LoadInt64(&p.stats.PaperExecuted),
		LiveExecuted:        atomic.LoadInt64(&p.stats.LiveExecuted),
		Failed:              atomic.LoadInt64(&p.stats.Failed),
		ConsecutiveFailures: atomic.LoadInt64(&p.stats.ConsecutiveFailures),
	}
}

// Simulate runs Stages 1-4 only and reports whether the signal would
// execute without reverting (control plane POST /simulate).
func (p *Pipeline) Simulate(ctx context.Context, sig *signal.TradeSignal) (*domain.Result, error) {
	_, tx, stage, err := p.runToSimulation(ctx, sig)
	if err != nil {
		return &domain.Result{
			ID:        uuid.NewString(),
			Success:   false,
			Mode:      p.cfg.Mode,
			Stage:     stage,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, err
	}
	result, err := p.simulateTx(ctx, sig, &tx)
	if result != nil {
		result.ID = uuid.NewString()
	}
	return result, err
}

// Execute runs a signal through the full pipeline. In PAPER mode it
// stops after a successful Stage 4 simulation; in LIVE mode it
// proceeds through signing, bundling and relay submission.
func (p *Pipeline) Execute(ctx context.Context, sig *signal.TradeSignal) (*domain.Result, error) {
	start := time.Now()
	id := uuid.NewString()
	atomic.AddInt64(&p.stats.TotalSignals, 1)
	p.metrics.signalsTotal.Add(ctx, 1)

	ctx, span := p.tracer.Start(ctx, "pipeline.execute", trace.WithAttributes(
		attribute.Int64("chain.id", int64(sig.ChainID)),
		attribute.String("result.id", id),
	))
	defer span.End()

	descriptor, tx, stage, err := p.runToSimulation(ctx, sig)
	if err != nil {
		p.recordFailure(ctx, span, stage)
		result := &domain.Result{
			ID:        id,
			Success:   false,
			Mode:      p.cfg.Mode,
			Stage:     stage,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}
		return result, err
	}

	simResult, err := p.simulateTx(ctx, sig, &tx)
	if simResult != nil {
		simResult.ID = id
	}
	if err != nil {
		p.recordFailure(ctx, span, stageSimulate)
		return simResult, err
	}

	if p.cfg.Mode != domain.ModeLive {
		atomic.AddInt64(&p.stats.PaperExecuted, 1)
		atomic.StoreInt64(&p.stats.ConsecutiveFailures, 0)
		p.metrics.pipelineLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
		span.SetStatus(codes.Ok, "paper executed")
		return simResult, nil
	}

	result, stage, err := p.signAndSubmit(ctx, descriptor, tx, simResult)
	if result != nil {
		result.ID = id
		result.Stage = stage
	}
	p.metrics.pipelineLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		p.recordFailure(ctx, span, stage)
		return result, err
	}

	p.breaker.RecordSuccess()
	atomic.AddInt64(&p.stats.LiveExecuted, 1)
	atomic.StoreInt64(&p.stats.ConsecutiveFailures, 0)
	span.SetStatus(codes.Ok, "live executed")
	return result, nil
}

// runToSimulation performs Stages 1-3: signal validation, the chain
// execution gate, and EIP-1559 tx construction.
func (p *Pipeline) runToSimulation(ctx context.Context, sig *signal.TradeSignal) (chainregistryDomain.ChainDescriptor, TxParams, string, error) {
	known := p.knownChainIDs()
	if err := sig.Validate(known); err != nil {
		p.metrics.stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stageValidate)))
		return chainregistryDomain.ChainDescriptor{}, TxParams{}, stageValidate, err
	}

	descriptor, err := p.registry.Get(sig.ChainID)
	if err != nil {
		p.metrics.stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stageChainGate)))
		return chainregistryDomain.ChainDescriptor{}, TxParams{}, stageChainGate, err
	}
	switch descriptor.Status {
	case chainregistryDomain.ExecutionStatusEnabled:
		// proceed
	case chainregistryDomain.ExecutionStatusConfigured:
		p.metrics.stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stageChainGate)))
		return chainregistryDomain.ChainDescriptor{}, TxParams{}, stageChainGate, apperror.ExecutionBlocked(fmt.Sprintf("execution: chain-disabled chain=%d", sig.ChainID))
	default:
		p.metrics.stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stageChainGate)))
		return chainregistryDomain.ChainDescriptor{}, TxParams{}, stageChainGate, apperror.ExecutionBlocked(fmt.Sprintf("execution: chain-not-configured chain=%d", sig.ChainID))
	}

	tx, err := p.buildTx(ctx, sig, descriptor)
	if err != nil {
		p.metrics.stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stageBuild)))
		return chainregistryDomain.ChainDescriptor{}, TxParams{}, stageBuild, err
	}
	return descriptor, tx, "", nil
}

// buildTx implements Stage 3: ABI-encode the execute calldata and
// size EIP-1559 fee parameters from the freshest gas sample.
func (p *Pipeline) buildTx(ctx context.Context, sig *signal.TradeSignal, descriptor chainregistryDomain.ChainDescriptor) (TxParams, error) {
	route := Route{
		Protocols:    sig.Protocols,
		Routers:      make([]common.Address, len(sig.Routers)),
		TokenOutPath: make([]common.Address, len(sig.Path)),
		Extras:       make([][]byte, len(sig.Extras)),
	}
	for i, r := range sig.Routers {
		route.Routers[i] = common.HexToAddress(r)
	}
	for i, t := range sig.Path {
		route.TokenOutPath[i] = common.HexToAddress(t)
	}
	for i, e := range sig.Extras {
		if e == "" || e == "0x" {
			route.Extras[i] = []byte{}
			continue
		}
		b, err := hexDecodeExtra(e)
		if err != nil {
			return TxParams{}, apperror.InvalidSignal(fmt.Sprintf("execution: extras[%d] undecodable: %v", i, err))
		}
		route.Extras[i] = b
	}

	data, err := EncodeExecuteCalldata(uint8(sig.FlashSource), common.HexToAddress(sig.Token), sig.AmountRaw(), route)
	if err != nil {
		return TxParams{}, fmt.Errorf("execution: encode calldata: %w", err)
	}
	if len(data) > p.cfg.MaxCalldataBytes {
		return TxParams{}, apperror.CalldataTooLarge(fmt.Sprintf("execution: calldata %d bytes exceeds limit %d", len(data), p.cfg.MaxCalldataBytes))
	}

	maxFee, maxPriority := p.computeFees(ctx, sig.ChainID)

	return TxParams{
		ChainID:              sig.ChainID,
		To:                   descriptor.ExecutorAddress,
		Data:                 data,
		Value:                big.NewInt(0),
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: maxPriority,
	}, nil
}

// computeFees samples the current network fee and derives
// maxFeePerGas/maxPriorityFeePerGas, clamped to the configured cap.
func (p *Pipeline) computeFees(ctx context.Context, chainID uint64) (*big.Int, *big.Int) {
	samples := p.gas.SampleAll(ctx, []uint64{chainID}, 3*time.Second)
	capWei := gweiToWei(p.cfg.MaxBaseFeeGwei)

	sample, ok := samples[chainID]
	if !ok || sample.GasPriceWei == nil {
		fallback := gweiToWei(minPriorityFeeGwei * 2)
		if fallback.Cmp(capWei) > 0 {
			fallback = new(big.Int).Set(capWei)
		}
		return fallback, gweiToWei(minPriorityFeeGwei)
	}

	maxFee := new(big.Int).Set(sample.GasPriceWei)
	if sample.BaseFeeWei != nil {
		doubled := new(big.Int).Mul(sample.BaseFeeWei, big.NewInt(2))
		if doubled.Cmp(maxFee) > 0 {
			maxFee = doubled
		}
	}
	if maxFee.Cmp(capWei) > 0 {
		maxFee = new(big.Int).Set(capWei)
	}

	priority := gweiToWei(minPriorityFeeGwei)
	if sample.BaseFeeWei != nil {
		tip := new(big.Int).Sub(sample.GasPriceWei, sample.BaseFeeWei)
		if tip.Sign() > 0 && tip.Cmp(priority) > 0 {
			priority = tip
		}
	}
	if priority.Cmp(maxFee) > 0 {
		priority = new(big.Int).Set(maxFee)
	}

	return maxFee, priority
}

// simulateTx implements Stage 4: a pre-sign eth_call + eth_estimateGas
// through the shared simulator, from the signer's own address so the
// simulation matches what a live submission would actually execute.
func (p *Pipeline) simulateTx(ctx context.Context, sig *signal.TradeSignal, tx *TxParams) (*domain.Result, error) {
	from := p.signer.Address()
	simResult, err := p.simulator.Simulate(ctx, simulate.Request{
		ChainID:  tx.ChainID,
		From:     from,
		To:       tx.To,
		Data:     tx.Data,
		Value:    tx.Value,
		GasPrice: tx.MaxFeePerGas,
	})
	if err != nil {
		appErr, _ := err.(*apperror.AppError)
		msg := err.Error()
		if appErr != nil {
			msg = appErr.Message
		}
		return &domain.Result{
			Success:         false,
			Mode:            p.cfg.Mode,
			Stage:           stageSimulate,
			SimulationError: msg,
			ExpectedProfit:  sig.ExpectedProfit,
			Timestamp:       time.Now(),
			Error:           msg,
		}, err
	}

	gasLimit := applyMultiplier(simResult.GasUsed, p.cfg.GasLimitMultiplier)
	tx.GasLimit = gasLimit

	return &domain.Result{
		Success:        true,
		Mode:           p.cfg.Mode,
		SimulationGas:  simResult.GasUsed,
		ExpectedProfit: sig.ExpectedProfit,
		Timestamp:      time.Now(),
	}, nil
}

// signAndSubmit implements Stage 5 (three sub-gates), Stage 6 (Merkle
// bundle) and Stage 7 (private submission, with public fallback).
func (p *Pipeline) signAndSubmit(ctx context.Context, descriptor chainregistryDomain.ChainDescriptor, tx TxParams, simResult *domain.Result) (*domain.Result, string, error) {
	if !p.breaker.Allow() {
		return simResult, stageBlocked, apperror.CircuitBreakerOpen("execution: breaker open after repeated post-simulation failures")
	}

	// Sub-gate A: mode.
	if p.cfg.Mode != domain.ModeLive {
		return simResult, stageBlocked, apperror.ExecutionBlocked("execution: sub-gate-a mode-not-live")
	}
	// Sub-gate B: tx must target the single enabled execution chain.
	if !descriptor.IsTradable() || descriptor.ChainID != tx.ChainID {
		return simResult, stageBlocked, apperror.ExecutionBlocked(fmt.Sprintf("execution: sub-gate-b chain-not-enabled chain=%d", tx.ChainID))
	}
	// Sub-gate C: signing key must be configured.
	if !p.signer.Configured() {
		return simResult, stageBlocked, apperror.ExecutionBlocked("execution: sub-gate-c signing-key-not-configured")
	}

	signedTx, err := p.signer.Sign(ctx, tx)
	if err != nil {
		return simResult, stageSubmit, fmt.Errorf("execution: sign: %w", err)
	}

	rawTx, err := signedTx.MarshalBinary()
	if err != nil {
		p.signer.Release(tx.ChainID, signedTx.Nonce())
		return simResult, stageSubmit, fmt.Errorf("execution: marshal signed tx: %w", err)
	}

	tree, err := newMerkleTree([][]byte{rawTx})
	if err != nil {
		p.signer.Release(tx.ChainID, signedTx.Nonce())
		return simResult, stageSubmit, fmt.Errorf("execution: build merkle bundle: %w", err)
	}

	targetBlock := uint64(0)
	if client, cErr := p.clients.Client(ctx, tx.ChainID); cErr == nil {
		if head, hErr := client.BlockNumber(ctx); hErr == nil {
			targetBlock = head + 1
		}
	}

	bundle := Bundle{
		Transactions: []string{"0x" + common.Bytes2Hex(rawTx)},
		MerkleRoot:   "0x" + common.Bytes2Hex(tree),
		TargetBlock:  targetBlock,
		AvoidMempool: true,
	}

	if err := p.relayer.Submit(ctx, tx.ChainID, bundle, rawTx); err != nil {
		return simResult, stageSubmit, err
	}

	simResult.TxHash = signedTx.Hash().Hex()
	return simResult, "", nil
}

// recordFailure updates the failure counters for a failed stage. Only
// stageSimulate and stageSubmit count toward the breaker's consecutive-
// failure accounting (spec §4.9, Scenario E): Stage 1-3 validation/gate
// rejections and the Stage 5 sub-gates (stageBlocked) are deterministic,
// not stochastic execution failures, and must not trip the breaker.
func (p *Pipeline) recordFailure(ctx context.Context, span trace.Span, stage string) {
	atomic.AddInt64(&p.stats.Failed, 1)
	if stage == stageSimulate || stage == stageSubmit {
		atomic.AddInt64(&p.stats.ConsecutiveFailures, 1)
		p.breaker.RecordFailure()
	}
	span.SetStatus(codes.Error, stage)
}

func (p *Pipeline) knownChainIDs() map[uint64]bool {
	out := make(map[uint64]bool)
	for _, d := range p.registry.All() {
		out[d.ChainID] = true
	}
	return out
}

func applyMultiplier(gas uint64, multiplier float64) uint64 {
	if multiplier <= 0 {
		multiplier = 1.0
	}
	return uint64(math.Round(float64(gas) * multiplier))
}

func gweiToWei(gwei float64) *big.Int {
	wei := new(big.Float).Mul(big.NewFloat(gwei), big.NewFloat(1e9))
	out, _ := wei.Int(nil)
	return out
}
