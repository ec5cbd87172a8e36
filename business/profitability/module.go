// Package profitability implements the profitability engine bounded
// context: safe loan sizing and net-profit arithmetic (spec §4.5).
package profitability

import (
	"context"

	"github.com/fulcrumlabs/flashrelay/business/profitability/app"
	profitabilityDI "github.com/fulcrumlabs/flashrelay/business/profitability/di"
	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the profitability bounded context.
type Module struct {
	VaultBalance app.VaultBalanceFunc
}

// RegisterServices registers the profitability Service with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, profitabilityDI.Service, func(sr di.ServiceRegistry) *app.Service {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		return app.New(m.VaultBalance, log)
	})
	return nil
}

// Startup is a no-op: the profitability engine holds no connections.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	return nil
}
