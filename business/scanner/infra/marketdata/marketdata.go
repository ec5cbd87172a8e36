// Package marketdata supplies the two market-data inputs the scan
// orchestrator and the profitability engine need but that a live price
// feed or vault-depth oracle would normally provide: a USD price per
// token and a flash-loan source's available USD liquidity. Both are
// explicit Non-goals of this system (§1: DEX/bridge aggregator REST
// implementations, external price feeds) so they are backed here by a
// small static table rather than a live integration; either function
// is a drop-in replacement point once a real feed is wired.
package marketdata

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	profitabilityDomain "github.com/fulcrumlabs/flashrelay/business/profitability/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
)

// staticUSDPrices holds an indicative USD price per symbol. Stablecoins
// are pegged at 1; WETH/WBTC/native coins carry a rough figure meant
// to keep profitability arithmetic in the right order of magnitude
// until a real price feed is wired.
var staticUSDPrices = map[string]decimal.Decimal{
	"USDC": decimal.NewFromInt(1),
	"USDT": decimal.NewFromInt(1),
	"DAI":  decimal.NewFromInt(1),
	"WETH": decimal.NewFromInt(3_000),
	"ETH":  decimal.NewFromInt(3_000),
	"WBTC": decimal.NewFromInt(60_000),
	"MATIC": decimal.NewFromFloat(0.7),
	"BNB":  decimal.NewFromInt(500),
}

// staticVaultUSD holds an indicative per-source, per-symbol vault
// balance in USD, deep enough that the 20% cap rarely binds for the
// default size sweep but still enforces the floor for exotic symbols.
var staticVaultUSD = map[profitabilityDomain.FlashSource]map[string]decimal.Decimal{
	profitabilityDomain.FlashSourceBalancerV3: {
		"USDC": decimal.NewFromInt(50_000_000),
		"USDT": decimal.NewFromInt(30_000_000),
		"DAI":  decimal.NewFromInt(20_000_000),
		"WETH": decimal.NewFromInt(40_000_000),
	},
	profitabilityDomain.FlashSourceAaveV3: {
		"USDC": decimal.NewFromInt(80_000_000),
		"USDT": decimal.NewFromInt(60_000_000),
		"DAI":  decimal.NewFromInt(25_000_000),
		"WETH": decimal.NewFromInt(70_000_000),
		"WBTC": decimal.NewFromInt(15_000_000),
	},
}

// Provider answers USD price and vault-depth queries from the static
// tables above.
type Provider struct{}

// New builds a Provider.
func New() *Provider {
	return &Provider{}
}

// USDPrice returns the indicative USD price of one unit of a.
func (p *Provider) USDPrice(ctx context.Context, a *asset.Asset) (decimal.Decimal, error) {
	price, ok := staticUSDPrices[a.Symbol()]
	if !ok {
		return decimal.Zero, apperror.Unpriceable(fmt.Sprintf("marketdata: no indicative USD price for %s", a.Symbol()))
	}
	return price, nil
}

// VaultBalance implements profitability/app.VaultBalanceFunc.
func (p *Provider) VaultBalance(ctx context.Context, source profitabilityDomain.FlashSource, chainID uint64, tokenSymbol string) (decimal.Decimal, error) {
	bySymbol, ok := staticVaultUSD[source]
	if !ok {
		return decimal.Zero, apperror.InsufficientLiquidity(fmt.Sprintf("marketdata: no vault data for flash source %d", source))
	}
	balance, ok := bySymbol[tokenSymbol]
	if !ok {
		return decimal.Zero, apperror.InsufficientLiquidity(fmt.Sprintf("marketdata: no vault data for %s on flash source %d", tokenSymbol, source))
	}
	return balance, nil
}
