package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fulcrumlabs/flashrelay/internal/apperror"
)

// ClientPool lazily dials and caches one *ethclient.Client per chain.
// Every on-chain reader (quoters, simulation, tx building) shares the
// pool instead of dialing its own connection per call.
type ClientPool struct {
	mu       sync.RWMutex
	clients  map[uint64]*ethclient.Client
	registry *Registry
}

// NewClientPool builds an empty pool backed by registry for RPC URLs.
func NewClientPool(registry *Registry) *ClientPool {
	return &ClientPool{
		clients:  make(map[uint64]*ethclient.Client),
		registry: registry,
	}
}

// Client returns the cached client for chainID, dialing on first use.
func (p *ClientPool) Client(ctx context.Context, chainID uint64) (*ethclient.Client, error) {
	p.mu.RLock()
	c, ok := p.clients[chainID]
	p.mu.RUnlock()
	if ok {
		return c, nil
	}

	d, err := p.registry.Get(chainID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[chainID]; ok {
		return c, nil
	}

	client, err := ethclient.DialContext(ctx, d.RPCURL)
	if err != nil {
		return nil, apperror.Rpc(fmt.Sprintf("clientpool: dial chain %d", chainID), err)
	}
	p.clients[chainID] = client
	return client, nil
}

// Close closes every dialed client.
func (p *ClientPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		c.Close()
	}
	p.clients = make(map[uint64]*ethclient.Client)
	return nil
}
