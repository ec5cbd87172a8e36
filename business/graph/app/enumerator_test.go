package app

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulcrumlabs/flashrelay/business/graph/domain"
	tokendexApp "github.com/fulcrumlabs/flashrelay/business/tokendex/app"
	tokendexDomain "github.com/fulcrumlabs/flashrelay/business/tokendex/domain"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
)

func TestEnumerate_IntraChainSweepsAllDexPairsAndSizes(t *testing.T) {
	const chainID = uint64(1)

	assets := asset.NewRegistry()
	assets.Register(asset.NewAsset(asset.NewTokenAssetID(chainID, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")), "USDC", 6))
	registry := tokendexApp.New(assets)
	registry.RegisterDex(tokendexDomain.DexDescriptor{Name: "uniswap-v2", ChainID: chainID, Family: tokendexDomain.ProtocolFamilyUniV2})
	registry.RegisterDex(tokendexDomain.DexDescriptor{Name: "sushiswap", ChainID: chainID, Family: tokendexDomain.ProtocolFamilyUniV2})

	sizeSweep := []decimal.Decimal{decimal.NewFromInt(1000), decimal.NewFromInt(5000)}
	candidates := Enumerate(&domain.Graph{}, registry, []uint64{chainID}, sizeSweep)

	// one token, two DEXes => 2 ordered pairs (i!=j), times 2 sizes
	require.Len(t, candidates, 4)
	for _, c := range candidates {
		assert.False(t, c.IsCrossChain)
		assert.Equal(t, chainID, c.SourceChain)
		assert.Equal(t, chainID, c.DestChain)
		assert.NotEqual(t, c.DexA, c.DexB)
	}
}

func TestEnumerate_CrossChainOneCandidatePerEdgePerSize(t *testing.T) {
	assets := asset.NewRegistry()
	registry := tokendexApp.New(assets)

	g := &domain.Graph{
		Nodes: []domain.Node{
			{ChainID: 1, Symbol: "USDC"},
			{ChainID: 137, Symbol: "USDC"},
		},
		Edges: []domain.Edge{{From: 0, To: 1}},
	}

	sizeSweep := []decimal.Decimal{decimal.NewFromInt(1000)}
	candidates := Enumerate(g, registry, nil, sizeSweep)

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.True(t, c.IsCrossChain)
	assert.Equal(t, uint64(1), c.SourceChain)
	assert.Equal(t, uint64(137), c.DestChain)
	assert.Empty(t, c.DexA)
	assert.Empty(t, c.DexB)
}

func TestEnumerate_EmptyRegistryAndGraphYieldNoCandidates(t *testing.T) {
	assets := asset.NewRegistry()
	registry := tokendexApp.New(assets)

	candidates := Enumerate(&domain.Graph{}, registry, nil, nil)
	assert.Empty(t, candidates)
}
