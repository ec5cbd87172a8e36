// Package app implements the token & DEX registry service: fail-closed
// lookups of tokens by (chain, symbol) and DEXes by (chain, name),
// layered on top of internal/asset's identity model.
package app

import (
	"fmt"
	"sync"

	"github.com/fulcrumlabs/flashrelay/business/tokendex/domain"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
)

// Registry resolves tokens and DEXes. All lookups are fail-closed: an
// unknown token or DEX returns a apperror.Registry error rather than
// a zero value, so callers cannot silently treat "not found" as "zero
// amount" or "no liquidity".
type Registry struct {
	mu     sync.RWMutex
	assets *asset.Registry
	dexes  map[uint64]map[string]domain.DexDescriptor // chainID -> name -> descriptor
}

// New builds a Registry backed by assets for token lookups.
func New(assets *asset.Registry) *Registry {
	return &Registry{
		assets: assets,
		dexes:  make(map[uint64]map[string]domain.DexDescriptor),
	}
}

// RegisterDex adds a DEX deployment to the registry.
func (r *Registry) RegisterDex(d domain.DexDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dexes[d.ChainID] == nil {
		r.dexes[d.ChainID] = make(map[string]domain.DexDescriptor)
	}
	r.dexes[d.ChainID][d.Name] = d
}

// Token resolves a token by chain and symbol.
func (r *Registry) Token(chainID uint64, symbol string) (*asset.Asset, error) {
	a, ok := r.assets.GetBySymbolAndChain(symbol, chainID)
	if !ok {
		return nil, apperror.Registry(fmt.Sprintf("tokendex: token %s not registered on chain %d", symbol, chainID))
	}
	return a, nil
}

// NativeToken resolves the native coin of a chain.
func (r *Registry) NativeToken(chainID uint64) (*asset.Asset, error) {
	a, ok := r.assets.GetNative(chainID)
	if !ok {
		return nil, apperror.Registry(fmt.Sprintf("tokendex: no native asset registered for chain %d", chainID))
	}
	return a, nil
}

// Dex resolves a DEX by chain and name.
func (r *Registry) Dex(chainID uint64, name string) (domain.DexDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byName, ok := r.dexes[chainID]
	if !ok {
		return domain.DexDescriptor{}, apperror.Registry(fmt.Sprintf("tokendex: no DEXes registered on chain %d", chainID))
	}
	d, ok := byName[name]
	if !ok {
		return domain.DexDescriptor{}, apperror.Registry(fmt.Sprintf("tokendex: DEX %s not registered on chain %d", name, chainID))
	}
	return d, nil
}

// DexesForChain returns every DEX registered on a chain.
func (r *Registry) DexesForChain(chainID uint64) []domain.DexDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byName := r.dexes[chainID]
	out := make([]domain.DexDescriptor, 0, len(byName))
	for _, d := range byName {
		out = append(out, d)
	}
	return out
}

// TokensForChain returns every token registered on a chain, native
// coin included.
func (r *Registry) TokensForChain(chainID uint64) []*asset.Asset {
	out := make([]*asset.Asset, 0)
	for _, a := range r.assets.All() {
		if a.ChainID() == chainID {
			out = append(out, a)
		}
	}
	return out
}

// BridgeableTokens returns, for a chain, the subset of its registered
// tokens whose symbol is in the system-wide bridgeable set.
func (r *Registry) BridgeableTokens(chainID uint64) []*asset.Asset {
	out := make([]*asset.Asset, 0)
	for _, a := range r.assets.All() {
		if a.ChainID() == chainID && asset.IsBridgeableSymbol(a.Symbol()) {
			out = append(out, a)
		}
	}
	return out
}
