package app

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEncodeExecuteCalldataRoundTripsSelectorAndLength(t *testing.T) {
	route := Route{
		Protocols:    []uint8{1, 3},
		Routers:      []common.Address{common.HexToAddress("0x1"), common.HexToAddress("0x2")},
		TokenOutPath: []common.Address{common.HexToAddress("0x3"), common.HexToAddress("0x4")},
		Extras:       [][]byte{{}, {0x00, 0x00, 0x1f, 0x40}},
	}

	data, err := EncodeExecuteCalldata(1, common.HexToAddress("0x5"), big.NewInt(1_000_000), route)
	require.NoError(t, err)
	require.Len(t, data[:4], 4)
	require.Equal(t, executeSelector, data[:4])
	require.Greater(t, len(data), 4)
}

func TestEncodeRouteDataRejectsNothingButIsDeterministic(t *testing.T) {
	route := Route{
		Protocols:    []uint8{2},
		Routers:      []common.Address{common.HexToAddress("0x1")},
		TokenOutPath: []common.Address{common.HexToAddress("0x2")},
		Extras:       [][]byte{{0x01}},
	}
	a, err := EncodeRouteData(route)
	require.NoError(t, err)
	b, err := EncodeRouteData(route)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
