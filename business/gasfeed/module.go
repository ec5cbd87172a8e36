// Package gasfeed implements the multi-chain gas-price sampling
// bounded context consumed by the scan orchestrator's gas fan-out
// (spec §4.7) and the execution pipeline's fee parameters (spec §4.9
// Stage 3).
package gasfeed

import (
	"context"

	chainregistryDI "github.com/fulcrumlabs/flashrelay/business/chainregistry/di"
	"github.com/fulcrumlabs/flashrelay/business/gasfeed/app"
	gasfeedDI "github.com/fulcrumlabs/flashrelay/business/gasfeed/di"
	"github.com/fulcrumlabs/flashrelay/business/gasfeed/infra/ethereum"
	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the gas feed bounded context.
type Module struct{}

// RegisterServices wires the ethereum.Sampler and app.Service on top
// of the chain registry's shared client pool.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, gasfeedDI.Service, func(sr di.ServiceRegistry) *app.Service {
		pool := chainregistryDI.GetClientPool(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		sampler := ethereum.New(pool)
		return app.New(sampler, log)
	})
	return nil
}

// Startup is a no-op: the client pool dials lazily on first sample.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	return nil
}
