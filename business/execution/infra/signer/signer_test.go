package signer

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyKey(t *testing.T) {
	s := New("", nil)
	require.False(t, s.Configured())
}

func TestNewRejectsPlaceholderKey(t *testing.T) {
	s := New("0x0000000000000000000000000000000000000000000000000000000000000000", nil)
	require.False(t, s.Configured())
}

func TestNewRejectsWrongLength(t *testing.T) {
	s := New("0xabcdef", nil)
	require.False(t, s.Configured())
}

func TestNewAcceptsValidKey(t *testing.T) {
	s := New("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f36231b", nil)
	require.True(t, s.Configured())
	require.NotEqual(t, common.Address{}, s.Address())
}
