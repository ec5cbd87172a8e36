package app

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulcrumlabs/flashrelay/business/tokendex/domain"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
)

const (
	testChainID = uint64(1)
	testRouter  = "0x1111111111111111111111111111111111111111"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	assets := asset.NewRegistry()
	assets.Register(asset.NewAsset(asset.NewNativeAssetID(testChainID), "ETH", 18))
	assets.Register(asset.NewAsset(asset.NewTokenAssetID(testChainID, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")), "USDC", 6))
	return New(assets)
}

func TestRegistry_TokenFailsClosedWhenUnknown(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Token(testChainID, "DAI")
	require.Error(t, err)

	tok, err := r.Token(testChainID, "USDC")
	require.NoError(t, err)
	assert.Equal(t, "USDC", tok.Symbol())
}

func TestRegistry_NativeTokenFailsClosedOnUnknownChain(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.NativeToken(999)
	require.Error(t, err)

	native, err := r.NativeToken(testChainID)
	require.NoError(t, err)
	assert.True(t, native.IsNative())
}

func TestRegistry_DexLookup(t *testing.T) {
	r := newTestRegistry(t)
	r.RegisterDex(domain.DexDescriptor{
		Name:          "uniswap-v2",
		ChainID:       testChainID,
		Family:        domain.ProtocolFamilyUniV2,
		RouterAddress: common.HexToAddress(testRouter),
	})

	_, err := r.Dex(testChainID, "sushiswap")
	require.Error(t, err)

	d, err := r.Dex(testChainID, "uniswap-v2")
	require.NoError(t, err)
	assert.Equal(t, domain.ProtocolFamilyUniV2, d.Family)

	dexes := r.DexesForChain(testChainID)
	assert.Len(t, dexes, 1)
}

func TestRegistry_BridgeableTokens(t *testing.T) {
	r := newTestRegistry(t)

	bridgeable := r.BridgeableTokens(testChainID)
	require.Len(t, bridgeable, 1)
	assert.Equal(t, "USDC", bridgeable[0].Symbol())
}
