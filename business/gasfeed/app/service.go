// Package app implements the gas feed service: fan-out gas-price
// sampling across every healthy chain with a bounded timeout (spec
// §4.7 step 1), feeding both the gas-trend advisor and Stage 3's fee
// parameters.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/fulcrumlabs/flashrelay/business/gasfeed/domain"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

// Sampler fetches one gas sample for a chain.
type Sampler interface {
	Sample(ctx context.Context, chainID uint64) (*domain.Sample, error)
}

// Service owns the per-iteration gas fan-out.
type Service struct {
	sampler Sampler
	log     logger.LoggerInterface
}

// New builds a Service over sampler.
func New(sampler Sampler, log logger.LoggerInterface) *Service {
	return &Service{sampler: sampler, log: log}
}

// SampleAll fans out Sample to every chain in chainIDs concurrently,
// bounded by timeout. Chains that fail or time out are omitted from
// the result rather than failing the whole call (spec §4.7 step 1:
// "chains that time out are skipped this iteration").
func (s *Service) SampleAll(ctx context.Context, chainIDs []uint64, timeout time.Duration) map[uint64]*domain.Sample {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var mu sync.Mutex
	results := make(map[uint64]*domain.Sample, len(chainIDs))

	var wg sync.WaitGroup
	for _, id := range chainIDs {
		wg.Add(1)
		go func(chainID uint64) {
			defer wg.Done()
			sample, err := s.sampler.Sample(ctx, chainID)
			if err != nil {
				s.log.Warn(ctx, "gasfeed: sample failed, skipping chain this iteration", "chain_id", chainID, "error", err)
				return
			}
			mu.Lock()
			results[chainID] = sample
			mu.Unlock()
		}(id)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn(ctx, "gasfeed: sample fan-out deadline exceeded, returning partial results")
	}

	mu.Lock()
	defer mu.Unlock()
	out := make(map[uint64]*domain.Sample, len(results))
	for k, v := range results {
		out[k] = v
	}
	return out
}
