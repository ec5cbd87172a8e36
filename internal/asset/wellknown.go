package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDGoerli   = 5
	ChainIDSepolia  = 11155111
	ChainIDPolygon  = 137
	ChainIDArbitrum = 42161
	ChainIDOptimism = 10
	ChainIDBase     = 8453
	ChainIDBSC      = 56
	ChainIDFiat     = 0 // Off-chain / fiat
)

// Well-known token addresses on Ethereum Mainnet
var (
	// Stablecoins
	AddrUSDCEthereum = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	AddrUSDTEthereum = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	AddrDAIEthereum  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	// Wrapped
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrWBTCEthereum = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
)

// Well-known token addresses on Polygon
var (
	AddrUSDCPolygon = common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359")
	AddrUSDTPolygon = common.HexToAddress("0xc2132D05D31c914a87C6611C10748AEb04B58e8F")
	AddrWETHPolygon = common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
)

// Well-known token addresses on Arbitrum One
var (
	AddrUSDCArbitrum = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	AddrUSDTArbitrum = common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9")
	AddrWETHArbitrum = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
)

// Well-known token addresses on Optimism
var (
	AddrUSDCOptimism = common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85")
	AddrWETHOptimism = common.HexToAddress("0x4200000000000000000000000000000000000006")
)

// Well-known token addresses on Base
var (
	AddrUSDCBase = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	AddrWETHBase = common.HexToAddress("0x4200000000000000000000000000000000000006")
)

// Well-known token addresses on BNB Smart Chain
var (
	AddrUSDTBSC = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
	AddrWETHBSC = common.HexToAddress("0x2170Ed0880ac9A755fd29B2688956BD959F933F8")
)

// Well-known AssetIDs
var (
	// Ethereum Mainnet
	IDEthereumETH  = NewNativeAssetID(ChainIDEthereum)
	IDEthereumUSDC = NewTokenAssetID(ChainIDEthereum, AddrUSDCEthereum)
	IDEthereumUSDT = NewTokenAssetID(ChainIDEthereum, AddrUSDTEthereum)
	IDEthereumDAI  = NewTokenAssetID(ChainIDEthereum, AddrDAIEthereum)
	IDEthereumWETH = NewTokenAssetID(ChainIDEthereum, AddrWETHEthereum)
	IDEthereumWBTC = NewTokenAssetID(ChainIDEthereum, AddrWBTCEthereum)

	// Polygon
	IDPolygonMATIC = NewNativeAssetID(ChainIDPolygon)
	IDPolygonUSDC  = NewTokenAssetID(ChainIDPolygon, AddrUSDCPolygon)
	IDPolygonUSDT  = NewTokenAssetID(ChainIDPolygon, AddrUSDTPolygon)
	IDPolygonWETH  = NewTokenAssetID(ChainIDPolygon, AddrWETHPolygon)

	// Arbitrum One
	IDArbitrumETH  = NewNativeAssetID(ChainIDArbitrum)
	IDArbitrumUSDC = NewTokenAssetID(ChainIDArbitrum, AddrUSDCArbitrum)
	IDArbitrumUSDT = NewTokenAssetID(ChainIDArbitrum, AddrUSDTArbitrum)
	IDArbitrumWETH = NewTokenAssetID(ChainIDArbitrum, AddrWETHArbitrum)

	// Optimism
	IDOptimismETH  = NewNativeAssetID(ChainIDOptimism)
	IDOptimismUSDC = NewTokenAssetID(ChainIDOptimism, AddrUSDCOptimism)
	IDOptimismWETH = NewTokenAssetID(ChainIDOptimism, AddrWETHOptimism)

	// Base
	IDBaseETH  = NewNativeAssetID(ChainIDBase)
	IDBaseUSDC = NewTokenAssetID(ChainIDBase, AddrUSDCBase)
	IDBaseWETH = NewTokenAssetID(ChainIDBase, AddrWETHBase)

	// BNB Smart Chain
	IDBSCBNB  = NewNativeAssetID(ChainIDBSC)
	IDBSCUSDT = NewTokenAssetID(ChainIDBSC, AddrUSDTBSC)
	IDBSCWETH = NewTokenAssetID(ChainIDBSC, AddrWETHBSC)

	// Fiat
	IDUSD = NewFiatAssetID("USD")
	IDEUR = NewFiatAssetID("EUR")
	IDARS = NewFiatAssetID("ARS")
)

// Well-known Assets (pre-created instances)
var (
	// Ethereum Mainnet
	ETH  = NewAssetWithName(IDEthereumETH, "ETH", "Ethereum", 18)
	USDC = NewAssetWithName(IDEthereumUSDC, "USDC", "USD Coin", 6)
	USDT = NewAssetWithName(IDEthereumUSDT, "USDT", "Tether USD", 6)
	DAI  = NewAssetWithName(IDEthereumDAI, "DAI", "Dai Stablecoin", 18)
	WETH = NewAssetWithName(IDEthereumWETH, "WETH", "Wrapped Ether", 18)
	WBTC = NewAssetWithName(IDEthereumWBTC, "WBTC", "Wrapped Bitcoin", 8)

	// Polygon
	MATIC       = NewAssetWithName(IDPolygonMATIC, "MATIC", "Polygon", 18)
	USDCPolygon = NewAssetWithName(IDPolygonUSDC, "USDC", "USD Coin (Polygon)", 6)
	USDTPolygon = NewAssetWithName(IDPolygonUSDT, "USDT", "Tether USD (Polygon)", 6)
	WETHPolygon = NewAssetWithName(IDPolygonWETH, "WETH", "Wrapped Ether (Polygon)", 18)

	// Arbitrum One
	ETHArbitrum  = NewAssetWithName(IDArbitrumETH, "ETH", "Ethereum (Arbitrum)", 18)
	USDCArbitrum = NewAssetWithName(IDArbitrumUSDC, "USDC", "USD Coin (Arbitrum)", 6)
	USDTArbitrum = NewAssetWithName(IDArbitrumUSDT, "USDT", "Tether USD (Arbitrum)", 6)
	WETHArbitrum = NewAssetWithName(IDArbitrumWETH, "WETH", "Wrapped Ether (Arbitrum)", 18)

	// Optimism
	ETHOptimism  = NewAssetWithName(IDOptimismETH, "ETH", "Ethereum (Optimism)", 18)
	USDCOptimism = NewAssetWithName(IDOptimismUSDC, "USDC", "USD Coin (Optimism)", 6)
	WETHOptimism = NewAssetWithName(IDOptimismWETH, "WETH", "Wrapped Ether (Optimism)", 18)

	// Base
	ETHBase  = NewAssetWithName(IDBaseETH, "ETH", "Ethereum (Base)", 18)
	USDCBase = NewAssetWithName(IDBaseUSDC, "USDC", "USD Coin (Base)", 6)
	WETHBase = NewAssetWithName(IDBaseWETH, "WETH", "Wrapped Ether (Base)", 18)

	// BNB Smart Chain
	BNB     = NewAssetWithName(IDBSCBNB, "BNB", "BNB", 18)
	USDTBSC = NewAssetWithName(IDBSCUSDT, "USDT", "Tether USD (BSC)", 18)
	WETHBSC = NewAssetWithName(IDBSCWETH, "ETH", "Ethereum Token (BSC)", 18)

	// Fiat
	USD = NewAssetWithName(IDUSD, "USD", "US Dollar", 2)
	EUR = NewAssetWithName(IDEUR, "EUR", "Euro", 2)
	ARS = NewAssetWithName(IDARS, "ARS", "Argentine Peso", 2)
)

// bridgeableSymbols are the token symbols the graph & opportunity engine
// treats as valid cross-chain bridge legs. A symbol being bridgeable
// says nothing about decimals or address; each chain still carries its
// own AssetID for the same symbol.
var bridgeableSymbols = map[string]bool{
	"USDC": true,
	"USDT": true,
	"DAI":  true,
	"WETH": true,
	"WBTC": true,
}

// IsBridgeableSymbol reports whether symbol is in the bridgeable set
// used to seed cross-chain edges in the token graph.
func IsBridgeableSymbol(symbol string) bool {
	return bridgeableSymbols[symbol]
}

// DefaultRegistry returns a registry pre-populated with well-known assets
// across every chain this system natively understands.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Ethereum Mainnet
	r.Register(ETH)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(DAI)
	r.Register(WETH)
	r.Register(WBTC)

	// Polygon
	r.Register(MATIC)
	r.Register(USDCPolygon)
	r.Register(USDTPolygon)
	r.Register(WETHPolygon)

	// Arbitrum One
	r.Register(ETHArbitrum)
	r.Register(USDCArbitrum)
	r.Register(USDTArbitrum)
	r.Register(WETHArbitrum)

	// Optimism
	r.Register(ETHOptimism)
	r.Register(USDCOptimism)
	r.Register(WETHOptimism)

	// Base
	r.Register(ETHBase)
	r.Register(USDCBase)
	r.Register(WETHBase)

	// BNB Smart Chain
	r.Register(BNB)
	r.Register(USDTBSC)
	r.Register(WETHBSC)

	// Fiat
	r.Register(USD)
	r.Register(EUR)
	r.Register(ARS)

	return r
}

// MustNewToken creates a new ERC20 token asset with the given parameters.
// This is a convenience function for registering custom tokens.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(chainID, address)
	return NewAssetWithName(id, symbol, name, decimals)
}

// MustNewNative creates a new native coin asset.
func MustNewNative(chainID uint64, symbol, name string, decimals uint8) *Asset {
	id := NewNativeAssetID(chainID)
	return NewAssetWithName(id, symbol, name, decimals)
}
