// Package rpcprobe implements app.Prober against a live JSON-RPC
// endpoint using eth_chainId and eth_blockNumber. Each probe runs
// under a per-call timeout and through one circuit breaker shared by
// every probe this Prober makes.
package rpcprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fulcrumlabs/flashrelay/internal/circuitbreaker"
)

// Prober dials a fresh ethclient per probe. Chains are probed
// infrequently (startup, and on operator-triggered rechecks), so
// paying a dial cost per call is simpler than pooling connections here.
type Prober struct {
	timeout time.Duration
	cb      *circuitbreaker.CircuitBreaker[probeResult]
}

type probeResult struct {
	chainID     uint64
	blockNumber uint64
}

// New builds an RPC Prober with a 5s per-call timeout.
func New() *Prober {
	cfg := circuitbreaker.DefaultConfig("chainregistry-rpc-probe")
	return &Prober{
		timeout: 5 * time.Second,
		cb:      circuitbreaker.New[probeResult](cfg),
	}
}

// Probe dials rpcURL and returns the chain ID and latest block number
// it reports.
func (p *Prober) Probe(ctx context.Context, rpcURL string) (uint64, uint64, error) {
	result, err := p.cb.Execute(func() (probeResult, error) {
		dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		client, err := ethclient.DialContext(dialCtx, rpcURL)
		if err != nil {
			return probeResult{}, fmt.Errorf("dial: %w", err)
		}
		defer client.Close()

		chainID, err := client.ChainID(dialCtx)
		if err != nil {
			return probeResult{}, fmt.Errorf("eth_chainId: %w", err)
		}

		blockNumber, err := client.BlockNumber(dialCtx)
		if err != nil {
			return probeResult{}, fmt.Errorf("eth_blockNumber: %w", err)
		}

		return probeResult{chainID: chainID.Uint64(), blockNumber: blockNumber}, nil
	})
	if err != nil {
		return 0, 0, err
	}
	return result.chainID, result.blockNumber, nil
}
