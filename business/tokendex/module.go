// Package tokendex implements the token & DEX registry bounded
// context described in spec §4.2: fail-closed token/DEX lookups keyed
// by (chain, symbol/name), built directly on internal/asset.
package tokendex

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	tokendexApp "github.com/fulcrumlabs/flashrelay/business/tokendex/app"
	tokendexDI "github.com/fulcrumlabs/flashrelay/business/tokendex/di"
	"github.com/fulcrumlabs/flashrelay/business/tokendex/domain"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
	"github.com/fulcrumlabs/flashrelay/internal/config"
	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the token & DEX registry bounded context.
type Module struct{}

// Canonical Uniswap V2/V3 deployment addresses. Uniswap V3's core
// contracts share the same address across Ethereum, Polygon,
// Arbitrum, Optimism and most EVM chains it deployed to directly.
var (
	uniV2RouterEthereum  = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	uniV2FactoryEthereum = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	uniV3Router          = common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564")
	uniV3Factory         = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	curvePoolEthereum    = common.HexToAddress("0xbEbc44782C7dB0a1A60Cb6fe97d0b483032FF1C7") // 3pool
)

// RegisterServices registers the token & DEX registry with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, tokendexDI.Registry, func(sr di.ServiceRegistry) *tokendexApp.Registry {
		cfg := di.Resolve[*config.Config](sr, "config")
		assets := di.Resolve[*asset.Registry](sr, "assetRegistry")

		registry := tokendexApp.New(assets)
		for _, ch := range cfg.Chains {
			seedDexes(registry, ch.ChainID)
		}
		return registry
	})
	return nil
}

// seedDexes registers the DEX deployments this system knows how to
// quote on chainID. Chains without a known deployment for a given
// family are simply skipped; the graph engine only enumerates DEXes
// that are actually registered.
func seedDexes(registry *tokendexApp.Registry, chainID uint64) {
	switch chainID {
	case asset.ChainIDEthereum:
		registry.RegisterDex(domain.DexDescriptor{
			Name: "uniswap-v2", ChainID: chainID, Family: domain.ProtocolFamilyUniV2,
			RouterAddress: uniV2RouterEthereum, FactoryAddress: uniV2FactoryEthereum,
		})
		registry.RegisterDex(domain.DexDescriptor{
			Name: "uniswap-v3", ChainID: chainID, Family: domain.ProtocolFamilyUniV3,
			RouterAddress: uniV3Router, FactoryAddress: uniV3Factory,
		})
		registry.RegisterDex(domain.DexDescriptor{
			Name: "curve-3pool", ChainID: chainID, Family: domain.ProtocolFamilyCurve,
			RouterAddress: curvePoolEthereum,
			CurvePoolIndices: map[string]int{
				"DAI": 0, "USDC": 1, "USDT": 2,
			},
		})
	case asset.ChainIDPolygon, asset.ChainIDArbitrum, asset.ChainIDOptimism, asset.ChainIDBase:
		registry.RegisterDex(domain.DexDescriptor{
			Name: "uniswap-v3", ChainID: chainID, Family: domain.ProtocolFamilyUniV3,
			RouterAddress: uniV3Router, FactoryAddress: uniV3Factory,
		})
	}
}

// Startup is a no-op: all registration happens in RegisterServices,
// since DEX deployments are static config, not a live dependency.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	return nil
}
