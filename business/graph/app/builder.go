// Package app builds the token graph and enumerates candidate
// opportunities over it (spec §4.3).
package app

import (
	"fmt"

	"github.com/fulcrumlabs/flashrelay/business/graph/domain"
	tokendexApp "github.com/fulcrumlabs/flashrelay/business/tokendex/app"
)

// Build constructs the token graph from the token & DEX registry: one
// node per registered (chain, symbol) pair, and a bridge edge between
// every two chains that both register the same bridgeable symbol.
// Construction is deterministic given the registry contents.
func Build(registry *tokendexApp.Registry, chainIDs []uint64) *domain.Graph {
	g := &domain.Graph{}

	nodeIndex := make(map[string]domain.NodeID)
	for _, chainID := range chainIDs {
		for _, tok := range registry.TokensForChain(chainID) {
			key := nodeKey(chainID, tok.Symbol())
			if _, exists := nodeIndex[key]; exists {
				continue
			}
			id := domain.NodeID(len(g.Nodes))
			g.Nodes = append(g.Nodes, domain.Node{ChainID: chainID, Symbol: tok.Symbol()})
			nodeIndex[key] = id
		}
	}

	for _, symbol := range bridgeableSymbols(registry, chainIDs) {
		for i := 0; i < len(chainIDs); i++ {
			for j := i + 1; j < len(chainIDs); j++ {
				u, okU := nodeIndex[nodeKey(chainIDs[i], symbol)]
				v, okV := nodeIndex[nodeKey(chainIDs[j], symbol)]
				if !okU || !okV {
					continue
				}
				g.Edges = append(g.Edges, domain.Edge{From: u, To: v})
				g.Edges = append(g.Edges, domain.Edge{From: v, To: u})
			}
		}
	}

	return g
}

func nodeKey(chainID uint64, symbol string) string {
	return fmt.Sprintf("%d/%s", chainID, symbol)
}

// bridgeableSymbols collects the distinct symbols present across the
// given chains' bridgeable token sets.
func bridgeableSymbols(registry *tokendexApp.Registry, chainIDs []uint64) []string {
	seen := make(map[string]bool)
	var out []string
	for _, chainID := range chainIDs {
		for _, tok := range registry.BridgeableTokens(chainID) {
			if !seen[tok.Symbol()] {
				seen[tok.Symbol()] = true
				out = append(out, tok.Symbol())
			}
		}
	}
	return out
}
