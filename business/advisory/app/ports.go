// Package app defines the advisory layer's capability interfaces.
// Both are consulted but advisory-only (spec §4.6): the scan
// orchestrator and execution pipeline clamp their output against the
// configured safety ceiling regardless of what either advisor returns.
package app

import (
	"context"

	"github.com/fulcrumlabs/flashrelay/business/advisory/domain"
)

// GasAdvisor decides whether the scan loop should briefly hold before
// evaluating candidates on a chain with an unfavorable gas trend.
type GasAdvisor interface {
	ShouldWait(ctx context.Context, chainID uint64) bool
}

// ParamAdvisor recommends execution parameters for a chain under a
// given urgency. A missing model must degrade to static defaults
// (spec §4.6) and never return an error for that reason alone.
type ParamAdvisor interface {
	Recommend(ctx context.Context, chainID uint64, urgency domain.Urgency) (domain.Params, error)
}
