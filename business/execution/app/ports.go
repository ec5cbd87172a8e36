package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxParams carries the fields the pipeline computes for the Stage 3
// EIP-1559 transaction before it is handed to a Signer.
type TxParams struct {
	ChainID              uint64
	To                   common.Address
	Data                 []byte
	Value                *big.Int
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Signer turns Stage 3's tx params into a signed transaction. It owns
// nonce assignment for its address so two concurrent signals never
// collide on the same nonce (spec §4.9 Stage 5 sub-gate C).
type Signer interface {
	// Configured reports whether a usable signing key is loaded.
	Configured() bool
	// Address returns the signer's public address.
	Address() common.Address
	// Sign assigns the next nonce and returns a signed transaction. If
	// the caller does not go on to submit it, Release must be called
	// with the returned nonce so it is not lost.
	Sign(ctx context.Context, params TxParams) (*types.Transaction, error)
	// Release returns an assigned nonce to the pool; call only when
	// signing succeeded but submission never happened.
	Release(chainID uint64, nonce uint64)
}

// Bundle is the Stage 6 Merkle-anchored submission payload.
type Bundle struct {
	Transactions []string // RLP-encoded, 0x-hex signed transactions
	MerkleRoot   string
	TargetBlock  uint64
	AvoidMempool bool
}

// Relayer submits a Stage 6 bundle through a private channel, falling
// back to the public mempool when configured to do so.
type Relayer interface {
	Submit(ctx context.Context, chainID uint64, bundle Bundle, rawFallbackTx []byte) error
}
