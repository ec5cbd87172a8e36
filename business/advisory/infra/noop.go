// Package infra holds the advisory layer's concrete implementations.
// NoOp is the degrade-gracefully path used whenever no ML model path
// is configured (spec §4.6: "missing implementation = constant false").
package infra

import (
	"context"

	"github.com/fulcrumlabs/flashrelay/business/advisory/domain"
)

// NoOpGasAdvisor never recommends holding.
type NoOpGasAdvisor struct{}

// ShouldWait always returns false.
func (NoOpGasAdvisor) ShouldWait(ctx context.Context, chainID uint64) bool { return false }

// DefaultParams is returned by NoOpParamAdvisor for every chain and
// urgency; it is also the fallback a live model advisor should fall
// back to on its own internal error, so callers never see a failure
// from this layer.
var DefaultParams = domain.Params{
	PriorityFeeGwei:    2.0,
	SlippageBps:        50,
	DeadlineSeconds:    60,
	MEVProtectionLevel: domain.MEVProtectionStandard,
}

// NoOpParamAdvisor returns static parameters derived from DefaultParams.
type NoOpParamAdvisor struct{}

// Recommend returns DefaultParams for every chain; for UrgencyHigh it
// shortens the deadline to 20 seconds and raises the MEV protection
// level to high.
func (NoOpParamAdvisor) Recommend(ctx context.Context, chainID uint64, urgency domain.Urgency) (domain.Params, error) {
	params := DefaultParams
	if urgency == domain.UrgencyHigh {
		params.DeadlineSeconds = 20
		params.MEVProtectionLevel = domain.MEVProtectionHigh
	}
	return params, nil
}
