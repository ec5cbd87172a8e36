package infra

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// TrendGasAdvisor holds the scan loop when recent gas samples for a
// chain are rising fast enough that the next block is likely to price
// the opportunity out. It is the "trend filter" option named in spec
// §4.6, as distinct from an ML model or the constant-false default.
type TrendGasAdvisor struct {
	mu          sync.Mutex
	window      int
	riseBps     decimal.Decimal
	samples     map[uint64][]decimal.Decimal
}

// NewTrendGasAdvisor builds an advisor that holds when the latest
// sample is riseBps basis points or more above the window average.
func NewTrendGasAdvisor(window int, riseBps decimal.Decimal) *TrendGasAdvisor {
	if window < 2 {
		window = 2
	}
	return &TrendGasAdvisor{
		window:  window,
		riseBps: riseBps,
		samples: make(map[uint64][]decimal.Decimal),
	}
}

// Observe records a gas price sample (gwei) for a chain.
func (a *TrendGasAdvisor) Observe(chainID uint64, gwei decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf := append(a.samples[chainID], gwei)
	if len(buf) > a.window {
		buf = buf[len(buf)-a.window:]
	}
	a.samples[chainID] = buf
}

// ShouldWait reports whether the chain's latest sample has risen past
// the configured threshold relative to the window average excluding
// the latest sample. Fewer than two samples never triggers a hold.
func (a *TrendGasAdvisor) ShouldWait(ctx context.Context, chainID uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf := a.samples[chainID]
	if len(buf) < 2 {
		return false
	}

	latest := buf[len(buf)-1]
	prior := buf[:len(buf)-1]

	sum := decimal.Zero
	for _, s := range prior {
		sum = sum.Add(s)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(prior))))
	if avg.IsZero() {
		return false
	}

	riseBps := latest.Sub(avg).Div(avg).Mul(decimal.NewFromInt(10_000))
	return riseBps.GreaterThanOrEqual(a.riseBps)
}
