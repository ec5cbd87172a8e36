// Package signal implements the inter-process trade signal: the
// hand-off record from the discovery process to the executor (spec
// §4.10), its exact wire JSON shape, and Stage 1's validation rules.
package signal

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/fulcrumlabs/flashrelay/internal/apperror"
)

// MaxProtocols is the maximum hop count a signal may carry (spec §4.9
// Stage 1, default 5).
const MaxProtocols = 5

// FlashSource selector on the wire (1=Balancer, 2=Aave).
type FlashSource uint8

const (
	FlashSourceBalancer FlashSource = 1
	FlashSourceAave     FlashSource = 2
)

// TradeSignal is the exact §4.10 wire format. Amount is a decimal
// string on the wire (raw integer units) to avoid precision loss in
// JSON numbers; it is parsed into *big.Int by Validate.
type TradeSignal struct {
	ChainID         uint64   `json:"chainId"`
	Token           string   `json:"token"`
	Amount          string   `json:"amount"`
	FlashSource     FlashSource `json:"flashSource"`
	Protocols       []uint8  `json:"protocols"`
	Routers         []string `json:"routers"`
	Path            []string `json:"path"`
	Extras          []string `json:"extras"`
	ExpectedProfit  float64  `json:"expected_profit"`

	// amountRaw is populated by Validate and consumed by the execution
	// pipeline; it is never marshaled.
	amountRaw *big.Int
}

// AmountRaw returns the amount parsed by the last successful Validate
// call. Panics if Validate has not been called or failed.
func (s *TradeSignal) AmountRaw() *big.Int {
	if s.amountRaw == nil {
		panic("signal: AmountRaw called before a successful Validate")
	}
	return new(big.Int).Set(s.amountRaw)
}

// Validate implements Stage 1 of the execution pipeline (spec §4.9):
// reject unknown-shape signals before any chain or simulation work is
// done. knownChainIDs lets the caller fail fast on an unregistered
// chain without a registry round trip.
func (s *TradeSignal) Validate(knownChainIDs map[uint64]bool) error {
	if knownChainIDs != nil && !knownChainIDs[s.ChainID] {
		return apperror.InvalidSignal(fmt.Sprintf("signal: unknown chain id %d", s.ChainID))
	}

	if !common.IsHexAddress(s.Token) {
		return apperror.InvalidSignal(fmt.Sprintf("signal: token %q is not a 20-byte hex address", s.Token))
	}

	amount, ok := new(big.Int).SetString(s.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return apperror.InvalidSignal(fmt.Sprintf("signal: amount %q is not a positive integer", s.Amount))
	}

	n := len(s.Protocols)
	if n == 0 || n > MaxProtocols {
		return apperror.InvalidSignal(fmt.Sprintf("signal: protocol list length %d out of bounds [1,%d]", n, MaxProtocols))
	}
	if len(s.Routers) != n || len(s.Path) != n || len(s.Extras) != n {
		return apperror.InvalidSignal(fmt.Sprintf("signal: array length mismatch protocols=%d routers=%d path=%d extras=%d", n, len(s.Routers), len(s.Path), len(s.Extras)))
	}

	for i, r := range s.Routers {
		if !common.IsHexAddress(r) {
			return apperror.InvalidSignal(fmt.Sprintf("signal: routers[%d]=%q is not a 20-byte hex address", i, r))
		}
	}
	for i, p := range s.Path {
		if !common.IsHexAddress(p) {
			return apperror.InvalidSignal(fmt.Sprintf("signal: path[%d]=%q is not a 20-byte hex address", i, p))
		}
	}
	for i, e := range s.Extras {
		if _, err := hexutil.Decode(normalizeHex(e)); err != nil {
			return apperror.InvalidSignal(fmt.Sprintf("signal: extras[%d] is not valid hex: %v", i, err))
		}
	}

	s.amountRaw = amount
	return nil
}

func normalizeHex(s string) string {
	if s == "" || s == "0x" {
		return "0x"
	}
	return s
}

// UnmarshalFrom decodes JSON bytes into a TradeSignal.
func UnmarshalFrom(data []byte) (*TradeSignal, error) {
	var s TradeSignal
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperror.InvalidSignal(fmt.Sprintf("signal: malformed JSON: %v", err))
	}
	return &s, nil
}
