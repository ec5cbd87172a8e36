// Package app implements the scan orchestrator: the fixed-interval
// loop that samples gas, enumerates candidates, evaluates them against
// live quotes and profitability, and hands profitable ones to the
// execution client (spec §4.7).
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	executionclient "github.com/fulcrumlabs/flashrelay/business/execution/infra/client"
	"github.com/fulcrumlabs/flashrelay/business/gasfeed/domain"
	"github.com/fulcrumlabs/flashrelay/business/signal"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
)

// GasSampler fans out a gas-price sample across chains. Satisfied
// directly by gasfeed/app.Service.
type GasSampler interface {
	SampleAll(ctx context.Context, chainIDs []uint64, timeout time.Duration) map[uint64]*domain.Sample
}

// PriceOracle resolves an indicative USD price for a token, used to
// turn a USD trade size into raw token units and back. See
// infra/marketdata for the concrete (static-table) implementation.
type PriceOracle interface {
	USDPrice(ctx context.Context, a *asset.Asset) (decimal.Decimal, error)
}

// ExecutionClient hands a profitable candidate's trade signal to the
// executor. Satisfied by execution/infra/client.Client.
type ExecutionClient interface {
	Submit(ctx context.Context, sig *signal.TradeSignal) (*executionclient.ExecuteResult, error)
}
