// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fulcrumlabs/flashrelay/business/pricing/app"
	"github.com/fulcrumlabs/flashrelay/business/pricing/infra/simulate"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// DI tokens for the pricing module.
const (
	Router    = "pricing.Router"
	Simulator = "pricing.Simulator"
)

// GetRouter resolves the registered *app.Router.
func GetRouter(sr di.ServiceRegistry) *app.Router {
	return di.Resolve[*app.Router](sr, Router)
}

// GetSimulator resolves the registered *simulate.Simulator.
func GetSimulator(sr di.ServiceRegistry) *simulate.Simulator {
	return di.Resolve[*simulate.Simulator](sr, Simulator)
}
