package merkle

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func leaves(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte{byte(i)}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8} {
		tree, err := New(leaves(n))
		require.NoError(t, err)

		root := tree.Root()
		for i := 0; i < n; i++ {
			proof, err := tree.Proof(i)
			require.NoError(t, err)
			require.True(t, Verify(root, leaves(n)[i], proof, i), "leaf %d in tree of size %d", i, n)
		}
	}
}

func TestSingleLeafRootIsItsHash(t *testing.T) {
	tree, err := New(leaves(1))
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256(leaves(1)[0]), tree.Root())
	proof, err := tree.Proof(0)
	require.NoError(t, err)
	require.Empty(t, proof)
}

func TestEmptyLeavesRejected(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrEmptyLeaves)
}

func TestProofOutOfRange(t *testing.T) {
	tree, err := New(leaves(3))
	require.NoError(t, err)
	_, err = tree.Proof(3)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestVerifyRejectsTamperedLeaf(t *testing.T) {
	tree, err := New(leaves(4))
	require.NoError(t, err)
	proof, err := tree.Proof(1)
	require.NoError(t, err)
	require.False(t, Verify(tree.Root(), []byte("not-the-leaf"), proof, 1))
}
