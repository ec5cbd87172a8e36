package infra

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTrendGasAdvisorHoldsOnSharpRise(t *testing.T) {
	adv := NewTrendGasAdvisor(5, decimal.NewFromInt(1000))
	for _, g := range []int64{30, 31, 29, 30} {
		adv.Observe(1, decimal.NewFromInt(g))
	}
	require.False(t, adv.ShouldWait(context.Background(), 1))

	adv.Observe(1, decimal.NewFromInt(200))
	require.True(t, adv.ShouldWait(context.Background(), 1))
}

func TestTrendGasAdvisorNeedsTwoSamples(t *testing.T) {
	adv := NewTrendGasAdvisor(5, decimal.NewFromInt(100))
	require.False(t, adv.ShouldWait(context.Background(), 42))
	adv.Observe(42, decimal.NewFromInt(50))
	require.False(t, adv.ShouldWait(context.Background(), 42))
}

func TestNoOpGasAdvisorNeverWaits(t *testing.T) {
	require.False(t, NoOpGasAdvisor{}.ShouldWait(context.Background(), 1))
}

func TestNoOpParamAdvisorDegradesGracefully(t *testing.T) {
	params, err := NoOpParamAdvisor{}.Recommend(context.Background(), 137, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultParams.PriorityFeeGwei, params.PriorityFeeGwei)
}
