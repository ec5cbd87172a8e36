package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fulcrumlabs/flashrelay/business/gasfeed/domain"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

type fakeSampler struct {
	delay map[uint64]time.Duration
	fail  map[uint64]bool
}

func (f fakeSampler) Sample(ctx context.Context, chainID uint64) (*domain.Sample, error) {
	if d, ok := f.delay[chainID]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail[chainID] {
		return nil, errors.New("rpc down")
	}
	return &domain.Sample{ChainID: chainID, SampledAt: time.Now()}, nil
}

func discardLogger() logger.LoggerInterface {
	return logger.New(discard{}, logger.LevelError, "test", nil)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestSampleAllSkipsFailedChains(t *testing.T) {
	svc := New(fakeSampler{fail: map[uint64]bool{2: true}}, discardLogger())
	results := svc.SampleAll(context.Background(), []uint64{1, 2, 3}, time.Second)
	require.Len(t, results, 2)
	require.Contains(t, results, uint64(1))
	require.Contains(t, results, uint64(3))
	require.NotContains(t, results, uint64(2))
}

func TestSampleAllReturnsPartialOnTimeout(t *testing.T) {
	svc := New(fakeSampler{delay: map[uint64]time.Duration{2: 200 * time.Millisecond}}, discardLogger())
	results := svc.SampleAll(context.Background(), []uint64{1, 2}, 20*time.Millisecond)
	require.Contains(t, results, uint64(1))
	require.NotContains(t, results, uint64(2))
}
