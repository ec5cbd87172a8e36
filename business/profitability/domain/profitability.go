// Package domain contains the core domain types for the profitability
// engine: safe loan sizing and net-profit arithmetic over USD-denominated
// decimal amounts. No float ever enters this package; decimal.Decimal
// carries every figure, following internal/asset's raw/decimal boundary.
package domain

import "github.com/shopspring/decimal"

// FlashSource identifies the flash-loan provider a signal borrows from.
type FlashSource uint8

const (
	FlashSourceBalancerV3 FlashSource = 1
	FlashSourceAaveV3     FlashSource = 2
)

// FeeBps returns the provider's principal fee as a percentage of the
// principal (0.09 means 0.09%, i.e. 9 bps); callers divide by 100.
// Balancer V3 flash loans are fee-free; Aave V3 charges 5-9 bps on the
// principal; the upper bound is used as the conservative default.
func (f FlashSource) FeeBps() decimal.Decimal {
	switch f {
	case FlashSourceAaveV3:
		return decimal.NewFromFloat(0.09)
	default:
		return decimal.Zero
	}
}

// LoanSizing is the result of capping a requested loan against vault
// depth and the USD floor.
type LoanSizing struct {
	RequestedUSD decimal.Decimal
	ApprovedUSD  decimal.Decimal
	Rejected     bool
	Reason       string
}

// ProfitResult is the net-profit computation's output. Mirrors the
// teacher's ProfitResult shape, generalized from "gas + exchange fees"
// to "gas + bridge + flashloan fees" per spec §4.5.
type ProfitResult struct {
	GrossProfit    decimal.Decimal
	GasCostUSD     decimal.Decimal
	BridgeFeeUSD   decimal.Decimal
	FlashloanFeeUSD decimal.Decimal
	TotalCosts     decimal.Decimal
	NetProfitUSD   decimal.Decimal
	IsProfitable   bool
}
