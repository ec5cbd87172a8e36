// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"
	"fmt"

	tokendexDomain "github.com/fulcrumlabs/flashrelay/business/tokendex/domain"

	"github.com/fulcrumlabs/flashrelay/business/pricing/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
)

// Quoter prices one hop through one DEX deployment. A failed quote
// call returns an apperror.Unpriceable error (spec §4.4): there is no
// fallback to an estimated or cached number.
type Quoter interface {
	Quote(ctx context.Context, dex tokendexDomain.DexDescriptor, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.Quote, error)
}

// Router dispatches a quote request to the Quoter registered for the
// DEX's protocol family.
type Router struct {
	byFamily map[tokendexDomain.ProtocolFamily]Quoter
}

// NewRouter builds a Router from one Quoter per protocol family.
func NewRouter(v2, v3, curve Quoter) *Router {
	return &Router{byFamily: map[tokendexDomain.ProtocolFamily]Quoter{
		tokendexDomain.ProtocolFamilyUniV2: v2,
		tokendexDomain.ProtocolFamilyUniV3: v3,
		tokendexDomain.ProtocolFamilyCurve: curve,
	}}
}

// Quote routes to the Quoter registered for dex.Family.
func (r *Router) Quote(ctx context.Context, dex tokendexDomain.DexDescriptor, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.Quote, error) {
	q, ok := r.byFamily[dex.Family]
	if !ok {
		return nil, apperror.Unpriceable(fmt.Sprintf("pricing: no quoter registered for protocol family %s", dex.Family))
	}
	return q.Quote(ctx, dex, tokenIn, tokenOut, amountIn)
}
