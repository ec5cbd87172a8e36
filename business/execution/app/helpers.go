package app

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/fulcrumlabs/flashrelay/internal/merkle"
)

func hexDecodeExtra(s string) ([]byte, error) {
	return hexutil.Decode(s)
}

// newMerkleTree builds a single-purpose Merkle tree over the bundle's
// raw transactions and returns its root (Stage 6, spec §4.9).
func newMerkleTree(leaves [][]byte) ([]byte, error) {
	tree, err := merkle.New(leaves)
	if err != nil {
		return nil, err
	}
	return tree.Root(), nil
}
