// Package app holds the chain registry service: the set of chains
// the system knows about, their current reachability, and the
// startup probe that decides whether an execution-enabled chain may
// be trusted.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fulcrumlabs/flashrelay/business/chainregistry/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

const (
	tracerName = "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	meterName  = "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
)

// Prober checks that a chain's RPC endpoint is alive and returns the
// chain ID it reports, so the registry can detect misconfiguration
// (e.g. an RPC URL pointing at the wrong network).
type Prober interface {
	Probe(ctx context.Context, rpcURL string) (chainID uint64, blockNumber uint64, err error)
}

type registryMetrics struct {
	probesTotal    metric.Int64Counter
	probeFailures  metric.Int64Counter
	probeLatency   metric.Float64Histogram
	chainsEnabled  metric.Int64Gauge
}

// Registry is the live view over all configured chains.
type Registry struct {
	mu     sync.RWMutex
	chains map[uint64]*domain.ChainDescriptor

	prober  Prober
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *registryMetrics
}

// New builds a Registry from a static descriptor list. Descriptors
// keep the Status they are given (the zero value is
// ExecutionStatusUnknown) until ProbeAll runs.
func New(descriptors []domain.ChainDescriptor, prober Prober, log logger.LoggerInterface) (*Registry, error) {
	chains := make(map[uint64]*domain.ChainDescriptor, len(descriptors))
	for i := range descriptors {
		d := descriptors[i]
		chains[d.ChainID] = &d
	}

	r := &Registry{
		chains: chains,
		prober: prober,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return r, nil
}

func (r *Registry) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &registryMetrics{}

	r.metrics.probesTotal, err = meter.Int64Counter(
		"chainregistry_probes_total",
		metric.WithDescription("Total chain health probes attempted"),
	)
	if err != nil {
		return err
	}

	r.metrics.probeFailures, err = meter.Int64Counter(
		"chainregistry_probe_failures_total",
		metric.WithDescription("Total chain health probe failures"),
	)
	if err != nil {
		return err
	}

	r.metrics.probeLatency, err = meter.Float64Histogram(
		"chainregistry_probe_latency_seconds",
		metric.WithDescription("Chain health probe latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	r.metrics.chainsEnabled, err = meter.Int64Gauge(
		"chainregistry_chains_enabled",
		metric.WithDescription("Number of chains currently execution-enabled"),
	)
	return err
}

// ProbeAll probes every configured chain. An execution-ready chain
// that fails its probe is a fatal startup error (spec §4.1: a chain
// marked for execution must be provably reachable before the system
// starts trading on it). An observation-only chain that fails its
// probe is downgraded to ExecutionStatusUnknown and logged, not fatal.
func (r *Registry) ProbeAll(ctx context.Context) error {
	r.mu.RLock()
	ids := make([]uint64, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	var enabledCount int64
	for _, id := range ids {
		if err := r.probeOne(ctx, id); err != nil {
			r.mu.RLock()
			d := r.chains[id]
			r.mu.RUnlock()
			if d.ExecutionReady {
				return apperror.Rpc(fmt.Sprintf("chainregistry: startup probe failed for execution-enabled chain %d (%s)", id, d.Name), err)
			}
			r.logger.Warn(ctx, "chain probe failed, downgrading to observation-only", "chain_id", id, "error", err.Error())
		}
	}

	r.mu.RLock()
	for _, d := range r.chains {
		if d.Status == domain.ExecutionStatusEnabled {
			enabledCount++
		}
	}
	r.mu.RUnlock()
	r.metrics.chainsEnabled.Record(ctx, enabledCount)

	return nil
}

func (r *Registry) probeOne(ctx context.Context, id uint64) error {
	ctx, span := r.tracer.Start(ctx, "chainregistry.probe", trace.WithAttributes(
		attribute.Int64("chain.id", int64(id)),
	))
	defer span.End()

	r.mu.RLock()
	d := r.chains[id]
	r.mu.RUnlock()

	start := time.Now()
	r.metrics.probesTotal.Add(ctx, 1)
	observedID, blockNumber, err := r.prober.Probe(ctx, d.RPCURL)
	r.metrics.probeLatency.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		r.metrics.probeFailures.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.downgrade(id)
		return err
	}

	if observedID != id {
		err := fmt.Errorf("rpc endpoint reports chain id %d, expected %d", observedID, id)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.downgrade(id)
		return err
	}

	r.mu.Lock()
	d.LastProbeAt = time.Now()
	d.LastProbeID = observedID
	if d.ExecutionReady {
		d.Status = domain.ExecutionStatusEnabled
	} else {
		d.Status = domain.ExecutionStatusConfigured
	}
	r.mu.Unlock()

	span.SetAttributes(attribute.Int64("chain.block_number", int64(blockNumber)))
	return nil
}

func (r *Registry) downgrade(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.chains[id]; ok {
		d.Status = domain.ExecutionStatusUnknown
	}
}

// Get returns the descriptor for chainID, or a Registry error if unknown.
func (r *Registry) Get(chainID uint64) (domain.ChainDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.chains[chainID]
	if !ok {
		return domain.ChainDescriptor{}, apperror.Registry(fmt.Sprintf("chainregistry: chain %d not registered", chainID))
	}
	return *d, nil
}

// All returns a snapshot of every configured chain.
func (r *Registry) All() []domain.ChainDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChainDescriptor, 0, len(r.chains))
	for _, d := range r.chains {
		out = append(out, *d)
	}
	return out
}

// Tradable returns every chain currently safe for the execution
// pipeline to build and submit transactions on.
func (r *Registry) Tradable() []domain.ChainDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChainDescriptor, 0, len(r.chains))
	for _, d := range r.chains {
		if d.IsTradable() {
			out = append(out, *d)
		}
	}
	return out
}
