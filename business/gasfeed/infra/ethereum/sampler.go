// Package ethereum implements the gas-sampling infra adapter: one
// eth_gasPrice plus one eth_maxPriorityFeePerGas call per configured
// chain (the latter skipped on legacy chains that reject it), through
// the chain registry's shared client pool and a circuit breaker per
// chain.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	"github.com/fulcrumlabs/flashrelay/business/gasfeed/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/circuitbreaker"
)

const (
	tracerName = "github.com/fulcrumlabs/flashrelay/business/gasfeed/infra/ethereum"
	meterName  = "github.com/fulcrumlabs/flashrelay/business/gasfeed/infra/ethereum"

	sampleTimeout = 5 * time.Second
)

type samplerMetrics struct {
	samplesTotal  metric.Int64Counter
	sampleLatency metric.Float64Histogram
	samplesFailed metric.Int64Counter
}

// Sampler fetches one gas-price sample per chain via the shared
// client pool, each chain isolated behind its own circuit breaker.
type Sampler struct {
	pool *chainregistryApp.ClientPool

	mu       sync.Mutex
	breakers map[uint64]*circuitbreaker.CircuitBreaker[*domain.Sample]

	tracer  trace.Tracer
	metrics *samplerMetrics
}

// New builds a Sampler backed by pool.
func New(pool *chainregistryApp.ClientPool) *Sampler {
	s := &Sampler{
		pool:     pool,
		breakers: make(map[uint64]*circuitbreaker.CircuitBreaker[*domain.Sample]),
		tracer:   otel.Tracer(tracerName),
	}
	if err := s.initMetrics(); err != nil {
		panic("gasfeed: failed to init metrics: " + err.Error())
	}
	return s
}

func (s *Sampler) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error
	s.metrics = &samplerMetrics{}

	s.metrics.samplesTotal, err = meter.Int64Counter(
		"gasfeed_samples_total",
		metric.WithDescription("Total gas price samples attempted"),
	)
	if err != nil {
		return err
	}
	s.metrics.samplesFailed, err = meter.Int64Counter(
		"gasfeed_samples_failed_total",
		metric.WithDescription("Total gas price samples that failed or timed out"),
	)
	if err != nil {
		return err
	}
	s.metrics.sampleLatency, err = meter.Float64Histogram(
		"gasfeed_sample_latency_seconds",
		metric.WithDescription("Gas price sample round-trip latency"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5),
	)
	return err
}

func (s *Sampler) breakerFor(chainID uint64) *circuitbreaker.CircuitBreaker[*domain.Sample] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.breakers[chainID]; ok {
		return b
	}
	b := circuitbreaker.New[*domain.Sample](circuitbreaker.DefaultConfig(fmt.Sprintf("gasfeed-%d", chainID)))
	s.breakers[chainID] = b
	return b
}

// Sample fetches a single gas price sample for chainID. Callers
// supply a per-call context; Sample itself bounds the RPC round trip
// to sampleTimeout regardless of the caller's deadline.
func (s *Sampler) Sample(ctx context.Context, chainID uint64) (*domain.Sample, error) {
	ctx, span := s.tracer.Start(ctx, "Sample", trace.WithAttributes(attribute.Int64("chain_id", int64(chainID))))
	defer span.End()

	start := time.Now()
	breaker := s.breakerFor(chainID)

	sample, err := breaker.Execute(func() (*domain.Sample, error) {
		callCtx, cancel := context.WithTimeout(ctx, sampleTimeout)
		defer cancel()

		client, err := s.pool.Client(callCtx, chainID)
		if err != nil {
			return nil, err
		}

		price, err := client.SuggestGasPrice(callCtx)
		if err != nil {
			return nil, apperror.Rpc(fmt.Sprintf("gasfeed: eth_gasPrice on chain %d", chainID), err)
		}

		tip, err := client.SuggestGasTipCap(callCtx)
		if err != nil {
			// Legacy chains reject eth_maxPriorityFeePerGas; fall back
			// to the legacy price alone rather than failing the sample.
			return &domain.Sample{ChainID: chainID, GasPriceWei: price, SampledAt: time.Now()}, nil
		}

		// eth_gasPrice on an EIP-1559 chain is base fee plus suggested
		// tip, so the base fee is the difference.
		baseFee := new(big.Int).Sub(price, tip)
		if baseFee.Sign() < 0 {
			baseFee = new(big.Int)
		}
		return &domain.Sample{
			ChainID:     chainID,
			BaseFeeWei:  baseFee,
			GasPriceWei: price,
			SampledAt:   time.Now(),
		}, nil
	})

	s.metrics.samplesTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int64("chain_id", int64(chainID))))
	s.metrics.sampleLatency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.Int64("chain_id", int64(chainID))))

	if err != nil {
		s.metrics.samplesFailed.Add(ctx, 1, metric.WithAttributes(attribute.Int64("chain_id", int64(chainID))))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return sample, nil
}
