// Package merkle implements a binary keccak-256 Merkle tree over
// opaque byte leaves, used to attest the integrity of a bundle of
// signed transactions before private submission.
package merkle

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// ErrEmptyLeaves is returned by Root/Proof when called with no leaves.
var ErrEmptyLeaves = errors.New("merkle: no leaves")

// ErrIndexOutOfRange is returned by Proof when the requested leaf
// index does not exist.
var ErrIndexOutOfRange = errors.New("merkle: index out of range")

// Tree is a binary Merkle tree built once over a fixed leaf set.
// levels[0] holds the leaf hashes; the last level holds the root.
type Tree struct {
	levels [][][]byte
}

// New hashes each leaf with keccak-256 and builds the tree bottom-up,
// duplicating the last node of any odd-length level.
func New(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyLeaves
	}

	level := make([][]byte, len(leaves))
	for i, l := range leaves {
		level[i] = crypto.Keccak256(l)
	}

	levels := [][][]byte{level}
	for len(level) > 1 {
		level = nextLevel(level)
		levels = append(levels, level)
	}

	return &Tree{levels: levels}, nil
}

func nextLevel(level [][]byte) [][]byte {
	if len(level)%2 == 1 {
		level = append(level, level[len(level)-1])
	}
	next := make([][]byte, 0, len(level)/2)
	for i := 0; i < len(level); i += 2 {
		next = append(next, crypto.Keccak256(level[i], level[i+1]))
	}
	return next
}

// Root returns the tree's apex hash.
func (t *Tree) Root() []byte {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof returns the sibling hashes from leaf i up to the root, in
// bottom-to-top order.
func (t *Tree) Proof(i int) ([][]byte, error) {
	if i < 0 || i >= len(t.levels[0]) {
		return nil, ErrIndexOutOfRange
	}

	var proof [][]byte
	idx := i
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		siblingIdx := idx ^ 1
		if siblingIdx >= len(nodes) {
			siblingIdx = idx // odd-length level: sibling is the duplicated self
		}
		proof = append(proof, nodes[siblingIdx])
		idx /= 2
	}
	return proof, nil
}

// Verify re-derives a root from leaf and proof and compares it to root.
func Verify(root []byte, leaf []byte, proof [][]byte, index int) bool {
	hash := crypto.Keccak256(leaf)
	idx := index
	for _, sibling := range proof {
		if idx%2 == 0 {
			hash = crypto.Keccak256(hash, sibling)
		} else {
			hash = crypto.Keccak256(sibling, hash)
		}
		idx /= 2
	}
	return bytes.Equal(hash, root)
}
