// Package domain models the DEXes the graph & pricing engines can
// route through, on top of the shared asset package's token model.
package domain

import "github.com/ethereum/go-ethereum/common"

// ProtocolFamily identifies the AMM math a DEX uses, which in turn
// determines which quoter infra package can price it.
type ProtocolFamily int

const (
	ProtocolFamilyUniV2 ProtocolFamily = iota
	ProtocolFamilyUniV3
	ProtocolFamilyCurve
)

func (p ProtocolFamily) String() string {
	switch p {
	case ProtocolFamilyUniV2:
		return "uniswap-v2"
	case ProtocolFamilyUniV3:
		return "uniswap-v3"
	case ProtocolFamilyCurve:
		return "curve"
	default:
		return "unknown"
	}
}

// DexDescriptor is the static description of one DEX deployment on one chain.
type DexDescriptor struct {
	Name           string
	ChainID        uint64
	Family         ProtocolFamily
	RouterAddress  common.Address
	FactoryAddress common.Address
	// CurvePoolIndices maps "tokenSymbol" -> coin index, for Curve pools
	// where the pool's token ordering must be known ahead of time
	// (spec §9 Open Question: Curve pool index resolution).
	CurvePoolIndices map[string]int
}
