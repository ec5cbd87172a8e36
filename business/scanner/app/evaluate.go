package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	gasfeedDomain "github.com/fulcrumlabs/flashrelay/business/gasfeed/domain"
	graphDomain "github.com/fulcrumlabs/flashrelay/business/graph/domain"
	profitabilityDomain "github.com/fulcrumlabs/flashrelay/business/profitability/domain"
	"github.com/fulcrumlabs/flashrelay/business/signal"
	tokendexDomain "github.com/fulcrumlabs/flashrelay/business/tokendex/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
)

// evaluateIntraChain prices a token→native→token round trip through two
// DEXes on the same chain (spec §4.4, §4.7 step 4a): DexA sells the loan
// token for the chain's native coin, DexB sells that native coin back.
func (o *Orchestrator) evaluateIntraChain(ctx context.Context, candidate graphDomain.Candidate, samples map[uint64]*gasfeedDomain.Sample) (*signal.TradeSignal, error) {
	chainID := candidate.SourceChain

	token, err := o.tokens.Token(chainID, candidate.TokenSymbol)
	if err != nil {
		return nil, err
	}
	native, err := o.tokens.NativeToken(chainID)
	if err != nil {
		return nil, err
	}
	dexA, err := o.tokens.Dex(chainID, candidate.DexA)
	if err != nil {
		return nil, err
	}
	dexB, err := o.tokens.Dex(chainID, candidate.DexB)
	if err != nil {
		return nil, err
	}

	loan, amountIn, err := o.sizeLoan(ctx, chainID, token, candidate.TradeSizeUSD)
	if err != nil {
		return nil, err
	}

	hop1, err := o.router.Quote(ctx, dexA, token, native, amountIn)
	if err != nil {
		return nil, err
	}
	hop2, err := o.router.Quote(ctx, dexB, native, token, hop1.Out())
	if err != nil {
		return nil, err
	}

	finalUSD, err := o.amountUSD(ctx, hop2.Out())
	if err != nil {
		return nil, err
	}

	gasUSD, err := o.gasCostUSD(ctx, chainID, samples)
	if err != nil {
		return nil, err
	}

	result := o.profit.NetProfit(finalUSD, loan.ApprovedUSD, decimal.Zero, gasUSD, o.flashloanFeeUSD(loan.ApprovedUSD), o.cfg.MinProfitUSD)
	if !result.IsProfitable {
		return nil, nil
	}

	return &signal.TradeSignal{
		ChainID:        chainID,
		Token:          token.Address().Hex(),
		Amount:         amountIn.Raw().String(),
		FlashSource:    signal.FlashSource(o.cfg.DefaultFlashSource),
		Protocols:      []uint8{uint8(dexA.Family), uint8(dexB.Family)},
		Routers:        []string{dexA.RouterAddress.Hex(), dexB.RouterAddress.Hex()},
		Path:           []string{native.Address().Hex(), token.Address().Hex()},
		Extras:         []string{"0x", "0x"},
		ExpectedProfit: result.NetProfitUSD.InexactFloat64(),
	}, nil
}

// evaluateCrossChain prices a bridge leg between two chains holding the
// same bridgeable symbol (spec §4.4, §4.7 step 4b). Real bridge-aggregator
// quoting is out of scope (§1 non-goal), so the leg is priced as the
// loan amount less a flat basis-point fee, carried at par across chains.
func (o *Orchestrator) evaluateCrossChain(ctx context.Context, candidate graphDomain.Candidate, samples map[uint64]*gasfeedDomain.Sample) (*signal.TradeSignal, error) {
	sourceChain := candidate.SourceChain
	destChain := candidate.DestChain

	sourceToken, err := o.tokens.Token(sourceChain, candidate.TokenSymbol)
	if err != nil {
		return nil, err
	}
	destToken, err := o.tokens.Token(destChain, candidate.TokenSymbol)
	if err != nil {
		return nil, err
	}

	loan, amountIn, err := o.sizeLoan(ctx, sourceChain, sourceToken, candidate.TradeSizeUSD)
	if err != nil {
		return nil, err
	}

	bridgeFeeUSD := loan.ApprovedUSD.Mul(decimal.NewFromInt(int64(o.cfg.BridgeFeeBps))).Div(decimal.NewFromInt(10_000))
	netBridgedUSD := loan.ApprovedUSD.Sub(bridgeFeeUSD)

	destPrice, err := o.priceOracle.USDPrice(ctx, destToken)
	if err != nil {
		return nil, err
	}
	if destPrice.IsZero() {
		return nil, apperror.Unpriceable(fmt.Sprintf("scanner: zero USD price for %s on chain %d", destToken.Symbol(), destChain))
	}
	bridgedOut, err := asset.ParseDecimal(destToken, netBridgedUSD.Div(destPrice))
	if err != nil {
		return nil, apperror.Unpriceable(fmt.Sprintf("scanner: bridged amount for %s undersized for decimals: %v", destToken.Symbol(), err))
	}
	finalUSD, err := o.amountUSD(ctx, bridgedOut)
	if err != nil {
		return nil, err
	}

	gasSourceUSD, err := o.gasCostUSD(ctx, sourceChain, samples)
	if err != nil {
		return nil, err
	}
	gasDestUSD, err := o.gasCostUSD(ctx, destChain, samples)
	if err != nil {
		return nil, err
	}

	result := o.profit.NetProfit(finalUSD, loan.ApprovedUSD, bridgeFeeUSD, gasSourceUSD.Add(gasDestUSD), o.flashloanFeeUSD(loan.ApprovedUSD), o.cfg.MinProfitUSD)
	if !result.IsProfitable {
		return nil, nil
	}

	return &signal.TradeSignal{
		ChainID:        sourceChain,
		Token:          sourceToken.Address().Hex(),
		Amount:         amountIn.Raw().String(),
		FlashSource:    signal.FlashSource(o.cfg.DefaultFlashSource),
		Protocols:      []uint8{uint8(tokendexDomain.ProtocolFamilyUniV2)},
		Routers:        []string{sourceToken.Address().Hex()},
		Path:           []string{destToken.Address().Hex()},
		Extras:         []string{fmt.Sprintf("0x%x", destChain)},
		ExpectedProfit: result.NetProfitUSD.InexactFloat64(),
	}, nil
}

// sizeLoan caps the candidate's trade size against vault depth and
// converts the approved USD amount into raw token units.
func (o *Orchestrator) sizeLoan(ctx context.Context, chainID uint64, token *asset.Asset, tradeSizeUSD decimal.Decimal) (profitabilityDomain.LoanSizing, asset.Amount, error) {
	loan, err := o.profit.SafeLoanSize(ctx, o.cfg.DefaultFlashSource, chainID, token.Symbol(), tradeSizeUSD)
	if err != nil {
		return profitabilityDomain.LoanSizing{}, asset.Amount{}, err
	}

	price, err := o.priceOracle.USDPrice(ctx, token)
	if err != nil {
		return profitabilityDomain.LoanSizing{}, asset.Amount{}, err
	}
	if price.IsZero() {
		return profitabilityDomain.LoanSizing{}, asset.Amount{}, apperror.Unpriceable(fmt.Sprintf("scanner: zero USD price for %s", token.Symbol()))
	}

	amountIn, err := asset.ParseDecimal(token, loan.ApprovedUSD.Div(price))
	if err != nil {
		return profitabilityDomain.LoanSizing{}, asset.Amount{}, apperror.Unpriceable(fmt.Sprintf("scanner: loan size for %s undersized for decimals: %v", token.Symbol(), err))
	}
	return loan, amountIn, nil
}

// amountUSD converts a token-denominated amount into its indicative USD value.
func (o *Orchestrator) amountUSD(ctx context.Context, amt asset.Amount) (decimal.Decimal, error) {
	price, err := o.priceOracle.USDPrice(ctx, amt.Asset())
	if err != nil {
		return decimal.Zero, err
	}
	return amt.ToDecimal().Mul(price), nil
}

// gasCostUSD estimates the USD cost of one execute() call on chainID
// from the freshest gas sample and the configured gas-unit estimate,
// priced against the chain's native coin.
func (o *Orchestrator) gasCostUSD(ctx context.Context, chainID uint64, samples map[uint64]*gasfeedDomain.Sample) (decimal.Decimal, error) {
	sample, ok := samples[chainID]
	if !ok || sample.GasPriceWei == nil {
		return decimal.Zero, apperror.Rpc(fmt.Sprintf("scanner: no gas sample for chain %d", chainID), nil)
	}

	native, err := o.tokens.NativeToken(chainID)
	if err != nil {
		return decimal.Zero, err
	}
	nativePrice, err := o.priceOracle.USDPrice(ctx, native)
	if err != nil {
		return decimal.Zero, err
	}

	weiCost := decimal.NewFromBigInt(sample.GasPriceWei, 0).Mul(decimal.NewFromInt(int64(o.cfg.EstimatedGasUnits)))
	nativeCost := weiCost.Shift(-int32(native.Decimals()))
	return nativeCost.Mul(nativePrice), nil
}

// flashloanFeeUSD applies the flash source's principal fee, expressed
// as a percentage (spec §4.5), to the approved loan size.
func (o *Orchestrator) flashloanFeeUSD(approvedUSD decimal.Decimal) decimal.Decimal {
	return approvedUSD.Mul(o.cfg.DefaultFlashSource.FeeBps()).Div(decimal.NewFromInt(100))
}
