// Package simulate runs pre-sign eth_call simulation for pipeline
// Stage 4: a transaction is never submitted to a relay before it has
// been proven to not revert, from the executor's own address, against
// the latest block.
package simulate

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/circuitbreaker"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

const (
	tracerName = "github.com/fulcrumlabs/flashrelay/business/pricing/infra/simulate"
	meterName  = "github.com/fulcrumlabs/flashrelay/business/pricing/infra/simulate"

	gasSafetyMarginPct = 10
)

// Request describes one candidate transaction to simulate.
type Request struct {
	ChainID  uint64
	From     common.Address
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasPrice *big.Int // nil to let the node estimate
}

// Result is the outcome of a successful simulation.
type Result struct {
	GasUsed    uint64
	ReturnData []byte
}

type simulatorMetrics struct {
	simulationsTotal  metric.Int64Counter
	simulationLatency metric.Float64Histogram
	revertsTotal      metric.Int64Counter
}

// Simulator runs eth_call and eth_estimateGas against the latest block
// before a transaction is ever signed.
type Simulator struct {
	clients *chainregistryApp.ClientPool

	logger  logger.LoggerInterface
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	tracer  trace.Tracer
	metrics *simulatorMetrics
}

// New builds a Simulator.
func New(clients *chainregistryApp.ClientPool, log logger.LoggerInterface) (*Simulator, error) {
	s := &Simulator{
		clients: clients,
		logger:  log,
		cb:      circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("tx-simulator")),
		tracer:  otel.Tracer(tracerName),
	}
	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return s, nil
}

func (s *Simulator) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &simulatorMetrics{}
	s.metrics.simulationsTotal, err = meter.Int64Counter("tx_simulations_total", metric.WithDescription("Total transaction simulations run"))
	if err != nil {
		return err
	}
	s.metrics.simulationLatency, err = meter.Float64Histogram("tx_simulation_latency_ms", metric.WithDescription("Transaction simulation latency"), metric.WithUnit("ms"))
	if err != nil {
		return err
	}
	s.metrics.revertsTotal, err = meter.Int64Counter("tx_simulation_reverts_total", metric.WithDescription("Total simulations that reverted"))
	return err
}

// Simulate performs eth_call against the latest block, then
// eth_estimateGas with a safety margin applied, same as the teacher's
// gas oracle does for live transactions. A revert surfaces as
// apperror.SimulationReverted so the pipeline can halt the candidate
// before it ever reaches the relay.
func (s *Simulator) Simulate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "simulate.run", trace.WithAttributes(
		attribute.Int64("chain.id", int64(req.ChainID)),
		attribute.String("to", req.To.Hex()),
	))
	defer span.End()

	client, err := s.clients.Client(ctx, req.ChainID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	s.metrics.simulationsTotal.Add(ctx, 1)

	msg := ethereum.CallMsg{
		From:     req.From,
		To:       &req.To,
		Data:     req.Data,
		Value:    req.Value,
		GasPrice: req.GasPrice,
	}

	returnData, err := s.cb.Execute(func() ([]byte, error) {
		return client.CallContract(ctx, msg, nil)
	})
	if err != nil {
		s.metrics.revertsTotal.Add(ctx, 1)
		span.SetStatus(codes.Error, "reverted")
		return nil, apperror.SimulationReverted(fmt.Sprintf("simulate: call to %s on chain %d reverted", req.To.Hex(), req.ChainID), err)
	}

	gasUsed, err := client.EstimateGas(ctx, msg)
	if err != nil {
		s.metrics.revertsTotal.Add(ctx, 1)
		span.SetStatus(codes.Error, "gas estimation failed")
		return nil, apperror.SimulationReverted(fmt.Sprintf("simulate: gas estimation failed for %s on chain %d", req.To.Hex(), req.ChainID), err)
	}
	gasUsed = gasUsed + (gasUsed*gasSafetyMarginPct)/100

	s.metrics.simulationLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	span.SetAttributes(attribute.Int64("gas_used", int64(gasUsed)))
	span.SetStatus(codes.Ok, "simulated")

	return &Result{GasUsed: gasUsed, ReturnData: returnData}, nil
}
