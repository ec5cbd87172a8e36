// Package domain models the pricing & simulation engine's core types:
// a tagged-variant Quote for the three AMM families this system can
// price, plus the pending aggregator variant named but not
// implemented out of scope (spec §1 non-goal: aggregator REST calls).
package domain

import "github.com/fulcrumlabs/flashrelay/internal/asset"

// Quote is the result of pricing one hop through one DEX. It is a
// closed set of four variants, switched on exhaustively by callers;
// there is no fifth kind and no reflection-based dispatch.
type Quote interface {
	Out() asset.Amount
	isQuote()
}

// QuoteV2 is a Uniswap-V2-style constant-product quote.
type QuoteV2 struct {
	AmountOut asset.Amount
}

func (q QuoteV2) Out() asset.Amount { return q.AmountOut }
func (QuoteV2) isQuote()            {}

// QuoteV3 is a Uniswap-V3-style concentrated-liquidity quote.
type QuoteV3 struct {
	AmountOut         asset.Amount
	SqrtPriceX96After []byte // big.Int bytes, kept opaque at the domain layer
	GasEstimate       uint64
}

func (q QuoteV3) Out() asset.Amount { return q.AmountOut }
func (QuoteV3) isQuote()            {}

// QuoteCurve is a Curve StableSwap get_dy quote.
type QuoteCurve struct {
	AmountOut asset.Amount
}

func (q QuoteCurve) Out() asset.Amount { return q.AmountOut }
func (QuoteCurve) isQuote()            {}

// QuoteAggregator is a third-party DEX/bridge aggregator quote. Only
// the wire shape is modeled here; calling out to an aggregator is
// explicitly out of scope (spec §1).
type QuoteAggregator struct {
	AmountOut asset.Amount
	Calldata  []byte
}

func (q QuoteAggregator) Out() asset.Amount { return q.AmountOut }
func (QuoteAggregator) isQuote()            {}
