package app

import (
	"github.com/shopspring/decimal"

	"github.com/fulcrumlabs/flashrelay/business/graph/domain"
	tokendexApp "github.com/fulcrumlabs/flashrelay/business/tokendex/app"
)

// DefaultSizeSweepUSD is the trade-size sweep used when the operator
// has not configured one (spec §4.3).
var DefaultSizeSweepUSD = []decimal.Decimal{
	decimal.NewFromInt(500),
	decimal.NewFromInt(1000),
	decimal.NewFromInt(2000),
	decimal.NewFromInt(5000),
}

// Enumerate produces this iteration's candidates: intra-chain DEX
// pairs swept across sizeSweep, plus both directions of every bridge
// edge in the graph. Enumeration is deterministic given the registry
// and graph contents; no randomness.
func Enumerate(g *domain.Graph, registry *tokendexApp.Registry, chainIDs []uint64, sizeSweep []decimal.Decimal) []domain.Candidate {
	if len(sizeSweep) == 0 {
		sizeSweep = DefaultSizeSweepUSD
	}

	var out []domain.Candidate

	for _, chainID := range chainIDs {
		dexes := registry.DexesForChain(chainID)
		tokens := registry.TokensForChain(chainID)
		for _, tok := range tokens {
			for i := 0; i < len(dexes); i++ {
				for j := 0; j < len(dexes); j++ {
					if i == j {
						continue
					}
					for _, size := range sizeSweep {
						out = append(out, domain.Candidate{
							SourceChain:  chainID,
							DestChain:    chainID,
							IsCrossChain: false,
							TokenSymbol:  tok.Symbol(),
							DexA:         dexes[i].Name,
							DexB:         dexes[j].Name,
							TradeSizeUSD: size,
						})
					}
				}
			}
		}
	}

	for _, e := range g.Edges {
		from := g.Nodes[e.From]
		to := g.Nodes[e.To]
		for _, size := range sizeSweep {
			out = append(out, domain.Candidate{
				SourceChain:  from.ChainID,
				DestChain:    to.ChainID,
				IsCrossChain: true,
				TokenSymbol:  from.Symbol,
				TradeSizeUSD: size,
			})
		}
	}

	return out
}
