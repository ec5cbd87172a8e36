// Package domain holds the chain descriptor model shared by every
// component that needs to reason about "which chains are we running
// on and how do we talk to them".
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// GasPricingMode distinguishes EIP-1559 chains from legacy gas-price chains.
type GasPricingMode int

const (
	GasPricingLegacy GasPricingMode = iota
	GasPricingEIP1559
)

// ExecutionStatus reflects how much a chain can be trusted for
// execution, as of the last health probe.
type ExecutionStatus int

const (
	// ExecutionStatusUnknown means no successful probe has run yet.
	ExecutionStatusUnknown ExecutionStatus = iota
	// ExecutionStatusConfigured means the chain is reachable but not
	// marked execution-ready in config (observation only).
	ExecutionStatusConfigured
	// ExecutionStatusEnabled means the chain is reachable and
	// execution-ready: it has a valid executor address and passed its
	// startup probe.
	ExecutionStatusEnabled
)

func (s ExecutionStatus) String() string {
	switch s {
	case ExecutionStatusEnabled:
		return "enabled"
	case ExecutionStatusConfigured:
		return "configured"
	default:
		return "unknown"
	}
}

// ChainDescriptor is the static + probed description of a chain the
// system can observe or execute on.
type ChainDescriptor struct {
	ChainID         uint64
	Name            string
	RPCURL          string
	RPCBackupURL    string
	WSURL           string
	ExecutorAddress common.Address
	NativeSymbol    string
	GasPricing      GasPricingMode
	BlockTimeHint   time.Duration
	UniswapV3Quoter common.Address

	// ExecutionReady reflects the operator's config intent: this chain
	// was configured with a valid executor address and is meant to be
	// tradable, independent of current reachability.
	ExecutionReady bool

	Status      ExecutionStatus
	LastProbeAt time.Time
	LastProbeID uint64 // chain id observed by the probe, for mismatch detection
}

// IsTradable reports whether the pipeline may build and submit
// transactions on this chain right now.
func (d ChainDescriptor) IsTradable() bool {
	return d.ExecutionReady && d.Status == ExecutionStatusEnabled
}
