// Package univ3 implements pricing app.Quoter for Uniswap-V3-family
// DEXes via QuoterV2.quoteExactInputSingle. The quoter address is
// resolved per chain from a registry supplied at construction, not
// hardcoded to one network: the teacher only ever called Ethereum
// mainnet's QuoterV2, which breaks the moment a second chain is added.
package univ3

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
	tracerName = "github.com/fulcrumlabs/flashrelay/business/pricing/infra/univ3"
	meterName  = "github.com/fulcrumlabs/flashrelay/business/pricing/infra/univ3"
)

// QuoterAddresses maps chain ID to that chain's deployed QuoterV2
// address. Populated from chainregistry.domain.ChainDescriptor at
// construction time.
type QuoterAddresses map[uint64]common.Address

var _ pricingApp.Quoter = (*Quoter)(nil)

type quoterMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
}

// Quoter prices Uniswap-V3-family swaps across every configured chain.
type Quoter struct {
	clients   *chainregistryApp.ClientPool
	addresses QuoterAddresses
	quoterABI abi.ABI
	feeTiers  []int

	logger  logger.LoggerInterface
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	tracer  trace.Tracer
	metrics *quoterMetrics
}

// NewQuoter builds a univ3 Quoter sweeping the given fee tiers (in
// addition to the four standard tiers) for the best price.
func NewQuoter(clients *chainregistryApp.ClientPool, addresses QuoterAddresses, extraFeeTiers []int, log logger.LoggerInterface) (*Quoter, error) {
	parsedABI, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	feeTiers := append([]int{FeeTier001, FeeTier005, FeeTier030, FeeTier100}, extraFeeTiers...)

	q := &Quoter{
		clients:   clients,
		addresses: addresses,
		quoterABI: parsedABI,
		feeTiers:  feeTiers,
		logger:    log,
		cb:        circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("univ3-quoter")),
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

	q.metrics.quotesTotal, err = meter.Int64Counter("univ3_quotes_total", metric.WithDescription("Total Uniswap V3 quote requests"))
	if err != nil {
		return err
	}
	q.metrics.quoteLatency, err = meter.Float64Histogram("univ3_quote_latency_ms", metric.WithDescription("Uniswap V3 quote latency"), metric.WithUnit("ms"))
	if err != nil {
		return err
	}
	q.metrics.quoteErrors, err = meter.Int64Counter("univ3_quote_errors_total", metric.WithDescription("Total Uniswap V3 quote errors"))
	return err
}

// Quote prices tokenIn -> tokenOut across every known fee tier and
// returns the best (highest output) result.
func (q *Quoter) Quote(ctx context.Context, dex tokendexDomain.DexDescriptor, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.Quote, error) {
	ctx, span := q.tracer.Start(ctx, "univ3.quote", trace.WithAttributes(
		attribute.Int64("chain.id", int64(dex.ChainID)),
		attribute.String("token_in", tokenIn.Symbol()),
		attribute.String("token_out", tokenOut.Symbol()),
	))
	defer span.End()

	quoterAddr, ok := q.addresses[dex.ChainID]
	if !ok {
		err := apperror.Registry(fmt.Sprintf("univ3: no QuoterV2 address configured for chain %d", dex.ChainID))
		span.RecordError(err)
		return nil, err
	}

	client, err := q.clients.Client(ctx, dex.ChainID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	q.metrics.quotesTotal.Add(ctx, 1)

	var best *QuoteResult
	var bestFeeTier int
	for _, feeTier := range q.feeTiers {
		result, err := q.callFeeTier(ctx, client, quoterAddr, tokenIn.Address(), tokenOut.Address(), amountIn.Raw(), feeTier)
		if err != nil {
			span.AddEvent("fee_tier_failed", trace.WithAttributes(
				attribute.Int("fee_tier", feeTier),
				attribute.String("error", err.Error()),
			))
			continue
		}
		if best == nil || result.AmountOut.Cmp(best.AmountOut) > 0 {
			best = result
			bestFeeTier = feeTier
		}
	}

	q.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if best == nil {
		q.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "no valid quote across fee tiers")
		return nil, apperror.Unpriceable(fmt.Sprintf("univ3: no pool found for %s/%s on chain %d", tokenIn.Symbol(), tokenOut.Symbol(), dex.ChainID))
	}

	amountOut := asset.NewAmount(tokenOut, best.AmountOut)
	span.SetAttributes(attribute.Int("fee_tier", bestFeeTier), attribute.String("amount_out", best.AmountOut.String()))
	span.SetStatus(codes.Ok, "quote received")

	return domain.QuoteV3{
		AmountOut:         amountOut,
		SqrtPriceX96After: best.SqrtPriceX96After.Bytes(),
		GasEstimate:       best.GasEstimate.Uint64(),
	}, nil
}

func (q *Quoter) callFeeTier(ctx context.Context, client ethCaller, quoter common.Address, tokenIn, tokenOut common.Address, amountIn *big.Int, feeTier int) (*QuoteResult, error) {
	callData, err := q.quoterABI.Pack("quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(feeTier)),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := q.cb.Execute(func() ([]byte, error) {
		return client.CallContract(ctx, ethereum.CallMsg{To: &quoter, Data: callData}, nil)
	})
	if err != nil {
		return nil, apperror.Rpc(fmt.Sprintf("univ3: quoter call failed for fee tier %d", feeTier), err)
	}

	outputs, err := q.quoterABI.Unpack("quoteExactInputSingle", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) < 4 {
		return nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	return &QuoteResult{
		AmountOut:               outputs[0].(*big.Int),
		SqrtPriceX96After:       outputs[1].(*big.Int),
		InitializedTicksCrossed: outputs[2].(uint32),
		GasEstimate:             outputs[3].(*big.Int),
	}, nil
}

// ethCaller is the subset of *ethclient.Client this package needs,
// narrowed so tests can stub it without a live RPC endpoint.
type ethCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}
