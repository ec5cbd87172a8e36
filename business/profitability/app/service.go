// Package app implements the profitability engine: safe loan sizing
// against vault depth (spec §4.5 "Safe loan sizing") and net-profit
// arithmetic (spec §4.5 "Net profit computation"), grounded on the
// teacher's domain.NewProfitResultWithFees rounding/sign shape.
package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fulcrumlabs/flashrelay/business/profitability/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

const tracerName = "github.com/fulcrumlabs/flashrelay/business/profitability/app"

// DefaultLoanCapFraction is the fraction of vault balance a single
// loan may never exceed (spec §4.5, default 20%).
var DefaultLoanCapFraction = decimal.NewFromFloat(0.20)

// DefaultMinLoanUSD is the USD floor below which a loan is rejected
// rather than scaled down further (spec §4.5, default $10,000).
var DefaultMinLoanUSD = decimal.NewFromInt(10_000)

// DefaultMinProfitUSD is the net-profit floor used when the caller
// does not supply one explicitly (spec §4.5, default $5).
var DefaultMinProfitUSD = decimal.NewFromInt(5)

// VaultBalanceFunc resolves a flash-loan source's available USD
// liquidity for a token on a chain. Implemented by whatever queries
// the source's vault contract; this package stays agnostic of that.
type VaultBalanceFunc func(ctx context.Context, source domain.FlashSource, chainID uint64, tokenSymbol string) (decimal.Decimal, error)

// Service computes safe loan sizes and net profit. It holds no
// per-candidate state; every call is independent.
type Service struct {
	vaultBalance VaultBalanceFunc
	capFraction  decimal.Decimal
	minLoanUSD   decimal.Decimal
	log          logger.LoggerInterface
	tracer       trace.Tracer
}

// New builds a Service. vaultBalance supplies the liquidity figure
// SafeLoanSize caps against.
func New(vaultBalance VaultBalanceFunc, log logger.LoggerInterface) *Service {
	return &Service{
		vaultBalance: vaultBalance,
		capFraction:  DefaultLoanCapFraction,
		minLoanUSD:   DefaultMinLoanUSD,
		log:          log,
		tracer:       otel.Tracer(tracerName),
	}
}

// SafeLoanSize caps requestedUSD at capFraction of the source's vault
// balance for tokenSymbol on chainID, and rejects (zero, error) if the
// resulting loan would fall below minLoanUSD.
func (s *Service) SafeLoanSize(ctx context.Context, source domain.FlashSource, chainID uint64, tokenSymbol string, requestedUSD decimal.Decimal) (domain.LoanSizing, error) {
	ctx, span := s.tracer.Start(ctx, "SafeLoanSize", trace.WithAttributes(
		attribute.Int64("chain_id", int64(chainID)),
		attribute.String("token", tokenSymbol),
	))
	defer span.End()

	balance, err := s.vaultBalance(ctx, source, chainID, tokenSymbol)
	if err != nil {
		return domain.LoanSizing{}, apperror.Rpc(fmt.Sprintf("profitability: vault balance query for %s on chain %d", tokenSymbol, chainID), err)
	}

	cap := balance.Mul(s.capFraction)
	approved := requestedUSD
	if approved.GreaterThan(cap) {
		approved = cap
	}

	if approved.LessThan(s.minLoanUSD) {
		s.log.Debug(ctx, "loan below floor after cap", "requested", requestedUSD.String(), "cap", cap.String(), "floor", s.minLoanUSD.String())
		return domain.LoanSizing{
			RequestedUSD: requestedUSD,
			ApprovedUSD:  decimal.Zero,
			Rejected:     true,
			Reason:       "below minimum loan floor after vault cap",
		}, apperror.InsufficientLiquidity(fmt.Sprintf("profitability: safe loan size for %s on chain %d fell below $%s floor", tokenSymbol, chainID, s.minLoanUSD.String()))
	}

	return domain.LoanSizing{
		RequestedUSD: requestedUSD,
		ApprovedUSD:  approved,
		Rejected:     false,
	}, nil
}

// NetProfit computes net profit from gross revenue and a breakdown of
// costs, all in USD decimal. minProfitUSD selects the profitability
// threshold; pass decimal.Zero to use DefaultMinProfitUSD.
func (s *Service) NetProfit(grossRevenue, costUSD, bridgeFeeUSD, gasCostUSD, flashloanFeeUSD, minProfitUSD decimal.Decimal) domain.ProfitResult {
	if minProfitUSD.IsZero() {
		minProfitUSD = DefaultMinProfitUSD
	}

	totalCosts := costUSD.Add(bridgeFeeUSD).Add(gasCostUSD).Add(flashloanFeeUSD)
	net := grossRevenue.Sub(totalCosts)

	return domain.ProfitResult{
		GrossProfit:     grossRevenue,
		GasCostUSD:      gasCostUSD,
		BridgeFeeUSD:    bridgeFeeUSD,
		FlashloanFeeUSD: flashloanFeeUSD,
		TotalCosts:      totalCosts,
		NetProfitUSD:    net,
		IsProfitable:    net.GreaterThanOrEqual(minProfitUSD),
	}
}
