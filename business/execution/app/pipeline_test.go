package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	chainregistryApp "github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	chainregistryDomain "github.com/fulcrumlabs/flashrelay/business/chainregistry/domain"
	gasfeedDomain "github.com/fulcrumlabs/flashrelay/business/gasfeed/domain"
	"github.com/fulcrumlabs/flashrelay/business/signal"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() logger.LoggerInterface {
	return logger.New(discardWriter{}, logger.LevelError, "test", nil)
}

type fakeGasSampler struct {
	samples map[uint64]*gasfeedDomain.Sample
}

func (f fakeGasSampler) SampleAll(ctx context.Context, chainIDs []uint64, timeout time.Duration) map[uint64]*gasfeedDomain.Sample {
	return f.samples
}

func newTestRegistry(t *testing.T, status chainregistryDomain.ExecutionStatus) *chainregistryApp.Registry {
	t.Helper()
	descriptors := []chainregistryDomain.ChainDescriptor{{
		ChainID:        1,
		Name:           "ethereum",
		ExecutionReady: status == chainregistryDomain.ExecutionStatusEnabled,
		Status:         status,
	}}
	registry, err := chainregistryApp.New(descriptors, nil, testLogger())
	require.NoError(t, err)
	return registry
}

func newTestPipeline(t *testing.T, cfg Config, registry *chainregistryApp.Registry, gas GasSampler) *Pipeline {
	t.Helper()
	p := &Pipeline{
		cfg:      cfg,
		registry: registry,
		gas:      gas,
		log:      testLogger(),
		tracer:   otel.Tracer("test"),
	}
	require.NoError(t, p.initMetrics())
	return p
}

func validSignal() *signal.TradeSignal {
	return &signal.TradeSignal{
		ChainID:     1,
		Token:       "0x1111111111111111111111111111111111111111",
		Amount:      "1000000000000000000",
		FlashSource: signal.FlashSourceBalancer,
		Protocols:   []uint8{1},
		Routers:     []string{"0x2222222222222222222222222222222222222222"},
		Path:        []string{"0x3333333333333333333333333333333333333333"},
		Extras:      []string{"0x"},
	}
}

func defaultConfig() Config {
	return Config{
		Mode:               "PAPER",
		MaxCalldataBytes:   32000,
		MaxBaseFeeGwei:     500,
		GasLimitMultiplier: 1.15,
	}
}

func TestRunToSimulationRejectsInvalidSignal(t *testing.T) {
	registry := newTestRegistry(t, chainregistryDomain.ExecutionStatusEnabled)
	p := newTestPipeline(t, defaultConfig(), registry, fakeGasSampler{})

	sig := validSignal()
	sig.Token = "not-an-address"

	_, _, stage, err := p.runToSimulation(context.Background(), sig)
	require.Error(t, err)
	require.Equal(t, stageValidate, stage)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.CodeInvalidSignal, appErr.Code)
}

func TestRunToSimulationRejectsDisabledChain(t *testing.T) {
	registry := newTestRegistry(t, chainregistryDomain.ExecutionStatusConfigured)
	p := newTestPipeline(t, defaultConfig(), registry, fakeGasSampler{})

	_, _, stage, err := p.runToSimulation(context.Background(), validSignal())
	require.Error(t, err)
	require.Equal(t, stageChainGate, stage)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.CodeExecutionBlocked, appErr.Code)
}

func TestRunToSimulationRejectsUnconfiguredChain(t *testing.T) {
	registry := newTestRegistry(t, chainregistryDomain.ExecutionStatusUnknown)
	p := newTestPipeline(t, defaultConfig(), registry, fakeGasSampler{})

	_, _, stage, err := p.runToSimulation(context.Background(), validSignal())
	require.Error(t, err)
	require.Equal(t, stageChainGate, stage)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.CodeExecutionBlocked, appErr.Code)
}

func TestRunToSimulationBuildsTxWhenEnabled(t *testing.T) {
	registry := newTestRegistry(t, chainregistryDomain.ExecutionStatusEnabled)
	gas := fakeGasSampler{samples: map[uint64]*gasfeedDomain.Sample{
		1: {ChainID: 1, BaseFeeWei: big.NewInt(20_000_000_000), GasPriceWei: big.NewInt(25_000_000_000)},
	}}
	p := newTestPipeline(t, defaultConfig(), registry, gas)

	descriptor, tx, stage, err := p.runToSimulation(context.Background(), validSignal())
	require.NoError(t, err)
	require.Empty(t, stage)
	require.Equal(t, uint64(1), descriptor.ChainID)
	require.NotEmpty(t, tx.Data)
	require.True(t, tx.MaxFeePerGas.Sign() > 0)
	require.True(t, tx.MaxPriorityFeePerGas.Cmp(tx.MaxFeePerGas) <= 0)
}

func TestRunToSimulationRejectsOversizedCalldata(t *testing.T) {
	registry := newTestRegistry(t, chainregistryDomain.ExecutionStatusEnabled)
	cfg := defaultConfig()
	cfg.MaxCalldataBytes = 4

	p := newTestPipeline(t, cfg, registry, fakeGasSampler{})

	_, _, stage, err := p.runToSimulation(context.Background(), validSignal())
	require.Error(t, err)
	require.Equal(t, stageBuild, stage)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.CodeCalldataTooBig, appErr.Code)
}

func TestComputeFeesClampsToCap(t *testing.T) {
	registry := newTestRegistry(t, chainregistryDomain.ExecutionStatusEnabled)
	cfg := defaultConfig()
	cfg.MaxBaseFeeGwei = 10

	gas := fakeGasSampler{samples: map[uint64]*gasfeedDomain.Sample{
		1: {ChainID: 1, BaseFeeWei: gweiToWei(50), GasPriceWei: gweiToWei(60)},
	}}
	p := newTestPipeline(t, cfg, registry, gas)

	maxFee, priority := p.computeFees(context.Background(), 1)
	require.Equal(t, gweiToWei(10), maxFee)
	require.True(t, priority.Cmp(maxFee) <= 0)
}

func TestComputeFeesFallsBackWithoutSample(t *testing.T) {
	registry := newTestRegistry(t, chainregistryDomain.ExecutionStatusEnabled)
	p := newTestPipeline(t, defaultConfig(), registry, fakeGasSampler{})

	maxFee, priority := p.computeFees(context.Background(), 1)
	require.True(t, maxFee.Sign() > 0)
	require.True(t, priority.Sign() > 0)
}

func TestApplyMultiplier(t *testing.T) {
	require.Equal(t, uint64(115000), applyMultiplier(100000, 1.15))
	require.Equal(t, uint64(100000), applyMultiplier(100000, 0))
}
