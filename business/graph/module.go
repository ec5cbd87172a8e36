// Package graph implements the graph & opportunity engine bounded
// context: builds the cross-chain token graph once at startup and
// enumerates candidate opportunities from it every scan iteration.
package graph

import (
	"context"

	graphApp "github.com/fulcrumlabs/flashrelay/business/graph/app"
	graphDI "github.com/fulcrumlabs/flashrelay/business/graph/di"
	tokendexDI "github.com/fulcrumlabs/flashrelay/business/tokendex/di"
	"github.com/fulcrumlabs/flashrelay/internal/config"
	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the graph & opportunity engine bounded context.
type Module struct{}

// RegisterServices builds the graph service. Depends on tokendex
// already being registered (not yet started — registration order
// only matters for Startup, which this module doesn't need).
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, graphDI.Service, func(sr di.ServiceRegistry) *graphApp.Service {
		cfg := di.Resolve[*config.Config](sr, "config")
		registry := tokendexDI.GetRegistry(sr)

		chainIDs := make([]uint64, 0, len(cfg.Chains))
		for _, ch := range cfg.Chains {
			chainIDs = append(chainIDs, ch.ChainID)
		}

		return graphApp.NewService(registry, chainIDs, nil)
	})
	return nil
}

// Startup is a no-op: the graph builds lazily on first resolution.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	return nil
}
