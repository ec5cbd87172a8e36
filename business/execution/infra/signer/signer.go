// Package signer implements the execution Signer port: ECDSA signing
// of Stage 3 transactions plus the per-chain monotonic nonce
// discipline Stage 5 sub-gate C depends on (spec §4.9).
package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	executionApp "github.com/fulcrumlabs/flashrelay/business/execution/app"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
)

// placeholderKeys are well-known test private keys that must never be
// treated as a configured signing key in LIVE mode (Stage 5 sub-gate C).
var placeholderKeys = map[string]bool{
	"0000000000000000000000000000000000000000000000000000000000000000": true,
	"1111111111111111111111111111111111111111111111111111111111111111": true,
}

type chainNonces struct {
	mu   sync.Mutex
	next uint64
	seen bool
}

// Signer holds a single ECDSA key and a per-chain nonce counter. One
// Signer instance is the system's single logical sender.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	hexKey  string

	mu     sync.Mutex
	nonces map[uint64]*chainNonces

	clients *chainregistryApp.ClientPool
}

// New loads privateKeyHex (with or without a 0x prefix). An empty or
// placeholder key produces a Signer that reports Configured()==false
// instead of erroring, so PAPER-mode startup never needs a real key.
func New(privateKeyHex string, clients *chainregistryApp.ClientPool) *Signer {
	s := &Signer{
		nonces:  make(map[uint64]*chainNonces),
		clients: clients,
		hexKey:  strings.TrimPrefix(strings.ToLower(privateKeyHex), "0x"),
	}
	if s.hexKey == "" || placeholderKeys[s.hexKey] || len(s.hexKey) != 64 {
		return s
	}
	key, err := crypto.HexToECDSA(s.hexKey)
	if err != nil {
		return s
	}
	s.key = key
	s.address = crypto.PubkeyToAddress(key.PublicKey)
	return s
}

// Configured reports whether a usable, non-placeholder 32-byte key is loaded.
func (s *Signer) Configured() bool {
	return s.key != nil
}

// Address returns the signer's address, or the zero address if unconfigured.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign assigns the next nonce for tx.ChainID and returns a signed
// EIP-1559 transaction.
func (s *Signer) Sign(ctx context.Context, tx executionApp.TxParams) (*types.Transaction, error) {
	if s.key == nil {
		return nil, apperror.ExecutionBlocked("signer: no signing key configured")
	}

	nonce, err := s.nextNonce(ctx, tx.ChainID)
	if err != nil {
		return nil, err
	}

	inner := &types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(tx.ChainID),
		Nonce:     nonce,
		GasTipCap: tx.MaxPriorityFeePerGas,
		GasFeeCap: tx.MaxFeePerGas,
		Gas:       tx.GasLimit,
		To:        &tx.To,
		Value:     tx.Value,
		Data:      tx.Data,
	}

	signer := types.LatestSignerForChainID(inner.ChainID)
	signedTx, err := types.SignNewTx(s.key, signer, inner)
	if err != nil {
		s.Release(tx.ChainID, nonce)
		return nil, apperror.NonceCollision(fmt.Sprintf("signer: sign failed chain=%d nonce=%d", tx.ChainID, nonce), err)
	}
	return signedTx, nil
}

// Release returns a previously assigned nonce to the pool. Only valid
// immediately after Sign when the caller never submitted the tx.
func (s *Signer) Release(chainID uint64, nonce uint64) {
	s.mu.Lock()
	cn, ok := s.nonces[chainID]
	s.mu.Unlock()
	if !ok {
		return
	}
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.next == nonce+1 {
		cn.next = nonce
	}
}

func (s *Signer) nextNonce(ctx context.Context, chainID uint64) (uint64, error) {
	s.mu.Lock()
	cn, ok := s.nonces[chainID]
	if !ok {
		cn = &chainNonces{}
		s.nonces[chainID] = cn
	}
	s.mu.Unlock()

	cn.mu.Lock()
	defer cn.mu.Unlock()

	if !cn.seen {
		client, err := s.clients.Client(ctx, chainID)
		if err != nil {
			return 0, err
		}
		pending, err := client.PendingNonceAt(ctx, s.address)
		if err != nil {
			return 0, apperror.Rpc(fmt.Sprintf("signer: fetch nonce chain=%d", chainID), err)
		}
		cn.next = pending
		cn.seen = true
	}

	n := cn.next
	cn.next++
	return n, nil
}
