package app

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fulcrumlabs/flashrelay/business/profitability/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(nopWriter{}, logger.LevelError, "test", nil)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestNetProfit(t *testing.T) {
	tests := []struct {
		name         string
		gross        string
		cost         string
		bridge       string
		gas          string
		flashloan    string
		minProfit    string
		wantNet      string
		wantProfit   bool
	}{
		{"profitable_after_all_costs", "100", "0", "0", "17", "0", "5", "83", true},
		{"bridge_and_flashloan_fees_eat_margin", "100", "0", "30", "17", "5", "5", "48", true},
		{"below_min_profit_floor", "20", "0", "0", "16", "0", "5", "4", false},
		{"exact_floor_is_profitable", "25", "0", "0", "20", "0", "5", "5", true},
		{"negative_net", "10", "0", "0", "50", "0", "5", "-40", false},
	}

	svc := New(nil, testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.NetProfit(
				decimal.RequireFromString(tt.gross),
				decimal.RequireFromString(tt.cost),
				decimal.RequireFromString(tt.bridge),
				decimal.RequireFromString(tt.gas),
				decimal.RequireFromString(tt.flashloan),
				decimal.RequireFromString(tt.minProfit),
			)
			require.True(t, result.NetProfitUSD.Equal(decimal.RequireFromString(tt.wantNet)), "net = %s, want %s", result.NetProfitUSD, tt.wantNet)
			require.Equal(t, tt.wantProfit, result.IsProfitable)
		})
	}
}

func TestNetProfitDefaultsMinProfitWhenZero(t *testing.T) {
	svc := New(nil, testLogger())
	result := svc.NetProfit(decimal.NewFromInt(8), decimal.Zero, decimal.Zero, decimal.NewFromInt(3), decimal.Zero, decimal.Zero)
	require.True(t, result.IsProfitable, "net of 5 should clear the $5 default floor")
}

func TestSafeLoanSizeCapsAtVaultFraction(t *testing.T) {
	svc := New(func(ctx context.Context, source domain.FlashSource, chainID uint64, symbol string) (decimal.Decimal, error) {
		return decimal.NewFromInt(1_000_000), nil
	}, testLogger())

	sizing, err := svc.SafeLoanSize(context.Background(), domain.FlashSourceBalancerV3, 137, "USDC", decimal.NewFromInt(500_000))
	require.NoError(t, err)
	require.True(t, sizing.ApprovedUSD.Equal(decimal.NewFromInt(200_000)), "expected 20%% cap of 1,000,000, got %s", sizing.ApprovedUSD)
}

func TestSafeLoanSizeRejectsBelowFloor(t *testing.T) {
	svc := New(func(ctx context.Context, source domain.FlashSource, chainID uint64, symbol string) (decimal.Decimal, error) {
		return decimal.NewFromInt(1_000), nil
	}, testLogger())

	_, err := svc.SafeLoanSize(context.Background(), domain.FlashSourceAaveV3, 1, "WETH", decimal.NewFromInt(500))
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	require.Equal(t, apperror.CodeInsufficientLiquidity, appErr.Code)
}
