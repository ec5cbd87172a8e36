// Package univ2 implements pricing app.Quoter for Uniswap-V2-family
// DEXes via the router's getAmountsOut(amountIn, path).
package univ2

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	pricingApp "github.com/fulcrumlabs/flashrelay/business/pricing/app"
	"github.com/fulcrumlabs/flashrelay/business/pricing/domain"
	tokendexDomain "github.com/fulcrumlabs/flashrelay/business/tokendex/domain"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/asset"
	"github.com/fulcrumlabs/flashrelay/internal/circuitbreaker"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

const (
	tracerName = "github.com/fulcrumlabs/flashrelay/business/pricing/infra/univ2"
	meterName  = "github.com/fulcrumlabs/flashrelay/business/pricing/infra/univ2"
)

// RouterABI exposes only getAmountsOut, the single read-only call this
// quoter needs.
const RouterABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "address[]", "name": "path", "type": "address[]"}
		],
		"name": "getAmountsOut",
		"outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var _ pricingApp.Quoter = (*Quoter)(nil)

type quoterMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
}

// Quoter prices Uniswap-V2-family swaps.
type Quoter struct {
	clients   *chainregistryApp.ClientPool
	routerABI abi.ABI

	logger  logger.LoggerInterface
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	tracer  trace.Tracer
	metrics *quoterMetrics
}

// NewQuoter builds a univ2 Quoter.
func NewQuoter(clients *chainregistryApp.ClientPool, log logger.LoggerInterface) (*Quoter, error) {
	parsedABI, err := abi.JSON(strings.NewReader(RouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}

	q := &Quoter{
		clients:   clients,
		routerABI: parsedABI,
		logger:    log,
		cb:        circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("univ2-quoter")),
		tracer:    otel.Tracer(tracerName),
	}
	if err := q.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return q, nil
}

func (q *Quoter) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	q.metrics = &quoterMetrics{}
	q.metrics.quotesTotal, err = meter.Int64Counter("univ2_quotes_total", metric.WithDescription("Total Uniswap V2 quote requests"))
	if err != nil {
		return err
	}
	q.metrics.quoteLatency, err = meter.Float64Histogram("univ2_quote_latency_ms", metric.WithDescription("Uniswap V2 quote latency"), metric.WithUnit("ms"))
	if err != nil {
		return err
	}
	q.metrics.quoteErrors, err = meter.Int64Counter("univ2_quote_errors_total", metric.WithDescription("Total Uniswap V2 quote errors"))
	return err
}

// Quote calls getAmountsOut(amountIn, [tokenIn, tokenOut]) on dex.RouterAddress.
func (q *Quoter) Quote(ctx context.Context, dex tokendexDomain.DexDescriptor, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.Quote, error) {
	ctx, span := q.tracer.Start(ctx, "univ2.quote", trace.WithAttributes(
		attribute.Int64("chain.id", int64(dex.ChainID)),
		attribute.String("token_in", tokenIn.Symbol()),
		attribute.String("token_out", tokenOut.Symbol()),
	))
	defer span.End()

	client, err := q.clients.Client(ctx, dex.ChainID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	q.metrics.quotesTotal.Add(ctx, 1)

	path := []common.Address{tokenIn.Address(), tokenOut.Address()}
	callData, err := q.routerABI.Pack("getAmountsOut", amountIn.Raw(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	router := dex.RouterAddress
	result, err := q.cb.Execute(func() ([]byte, error) {
		return client.CallContract(ctx, ethereum.CallMsg{To: &router, Data: callData}, nil)
	})
	q.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		q.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperror.Unpriceable(fmt.Sprintf("univ2: getAmountsOut failed for %s/%s on chain %d: %v", tokenIn.Symbol(), tokenOut.Symbol(), dex.ChainID, err))
	}

	outputs, err := q.routerABI.Unpack("getAmountsOut", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	amounts, ok := outputs[0].([]*big.Int)
	if !ok || len(amounts) < 2 {
		return nil, fmt.Errorf("unexpected getAmountsOut output shape")
	}

	amountOut := asset.NewAmount(tokenOut, amounts[len(amounts)-1])
	span.SetAttributes(attribute.String("amount_out", amountOut.Raw().String()))
	span.SetStatus(codes.Ok, "quote received")

	return domain.QuoteV2{AmountOut: amountOut}, nil
}
