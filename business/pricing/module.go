// Package pricing implements the pricing & simulation bounded context:
// per-DEX quoting across the Uniswap-V2, Uniswap-V3, and Curve
// protocol families, plus pre-sign transaction simulation.
package pricing

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fulcrumlabs/flashrelay/business/pricing/app"
	pricingDI "github.com/fulcrumlabs/flashrelay/business/pricing/di"
	"github.com/fulcrumlabs/flashrelay/business/pricing/infra/curve"
	"github.com/fulcrumlabs/flashrelay/business/pricing/infra/simulate"
	"github.com/fulcrumlabs/flashrelay/business/pricing/infra/univ2"
	"github.com/fulcrumlabs/flashrelay/business/pricing/infra/univ3"

	chainregistryDI "github.com/fulcrumlabs/flashrelay/business/chainregistry/di"

	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the pricing & simulation bounded context.
type Module struct{}

// RegisterServices registers the pricing router and simulator with the
// DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, pricingDI.Router, func(sr di.ServiceRegistry) *app.Router {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		clients := chainregistryDI.GetClientPool(sr)
		registry := chainregistryDI.GetRegistry(sr)

		addresses := univ3.QuoterAddresses{}
		for _, d := range registry.All() {
			if d.UniswapV3Quoter != (common.Address{}) {
				addresses[d.ChainID] = d.UniswapV3Quoter
			}
		}

		v2Quoter, err := univ2.NewQuoter(clients, log)
		if err != nil {
			panic("pricing: failed to create univ2 quoter: " + err.Error())
		}
		v3Quoter, err := univ3.NewQuoter(clients, addresses, nil, log)
		if err != nil {
			panic("pricing: failed to create univ3 quoter: " + err.Error())
		}
		curveQuoter, err := curve.NewQuoter(clients, log)
		if err != nil {
			panic("pricing: failed to create curve quoter: " + err.Error())
		}

		return app.NewRouter(v2Quoter, v3Quoter, curveQuoter)
	})

	di.RegisterToken(c, pricingDI.Simulator, func(sr di.ServiceRegistry) *simulate.Simulator {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		clients := chainregistryDI.GetClientPool(sr)

		sim, err := simulate.New(clients, log)
		if err != nil {
			panic("pricing: failed to create simulator: " + err.Error())
		}
		return sim
	})

	return nil
}

// Startup is a no-op: quoters and the simulator dial RPC lazily
// through the shared chainregistry client pool.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "pricing module started")
	return nil
}
