// Package domain models gas-price samples used by both the scan
// orchestrator's parallel gas fan-out (spec §4.7 step 1) and Stage 3's
// EIP-1559 transaction building.
package domain

import (
	"math/big"
	"time"
)

// Sample is a single chain's gas price observation.
type Sample struct {
	ChainID       uint64
	BaseFeeWei    *big.Int // nil on legacy (non-EIP-1559) chains
	GasPriceWei   *big.Int // legacy gas price, or suggested tip-inclusive price
	SampledAt     time.Time
}

// Gwei converts a wei value to a float64 gwei figure for display and
// advisory-layer consumption only; on-chain arithmetic always stays
// in wei.
func Gwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e9))
	out, _ := f.Float64()
	return out
}
