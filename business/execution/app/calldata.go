package app

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// executeSelector is keccak256("execute(uint8,address,uint256,bytes)")[:4].
var executeSelector = crypto.Keccak256([]byte("execute(uint8,address,uint256,bytes)"))[:4]

var (
	routeArgs   abi.Arguments
	executeArgs abi.Arguments
)

func init() {
	uint8Ty, _ := abi.NewType("uint8", "", nil)
	uint8SliceTy, _ := abi.NewType("uint8[]", "", nil)
	addressTy, _ := abi.NewType("address", "", nil)
	addressSliceTy, _ := abi.NewType("address[]", "", nil)
	uint256Ty, _ := abi.NewType("uint256", "", nil)
	bytesTy, _ := abi.NewType("bytes", "", nil)
	bytesSliceTy, _ := abi.NewType("bytes[]", "", nil)

	routeArgs = abi.Arguments{
		{Type: uint8SliceTy},
		{Type: addressSliceTy},
		{Type: addressSliceTy},
		{Type: bytesSliceTy},
	}

	executeArgs = abi.Arguments{
		{Type: uint8Ty},
		{Type: addressTy},
		{Type: uint256Ty},
		{Type: bytesTy},
	}
}

// Route holds the four same-length per-hop arrays the spec's routeData
// tuple carries (spec §4.9 Stage 3).
type Route struct {
	Protocols    []uint8
	Routers      []common.Address
	TokenOutPath []common.Address
	Extras       [][]byte
}

// EncodeRouteData ABI-encodes the routeData tuple.
func EncodeRouteData(r Route) ([]byte, error) {
	return routeArgs.Pack(r.Protocols, r.Routers, r.TokenOutPath, r.Extras)
}

// EncodeExecuteCalldata builds the full `execute` calldata: selector
// plus the ABI-encoded (flashSource, loanToken, loanAmount, routeData).
func EncodeExecuteCalldata(flashSource uint8, loanToken common.Address, loanAmount *big.Int, route Route) ([]byte, error) {
	routeData, err := EncodeRouteData(route)
	if err != nil {
		return nil, err
	}

	packed, err := executeArgs.Pack(flashSource, loanToken, loanAmount, routeData)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, len(executeSelector)+len(packed))
	data = append(data, executeSelector...)
	data = append(data, packed...)
	return data, nil
}
