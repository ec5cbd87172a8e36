// Package chainregistry implements the chain provider registry
// bounded context: the set of chains the system knows about, their
// RPC endpoints, and their live execution-readiness.
package chainregistry

import (
	"context"

	"github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	chainregistryDI "github.com/fulcrumlabs/flashrelay/business/chainregistry/di"
	"github.com/fulcrumlabs/flashrelay/business/chainregistry/domain"
	"github.com/fulcrumlabs/flashrelay/business/chainregistry/infra/rpcprobe"
	"github.com/fulcrumlabs/flashrelay/internal/config"
	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the chain registry bounded context.
type Module struct{}

// RegisterServices registers the chain registry with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, chainregistryDI.Prober, func(sr di.ServiceRegistry) app.Prober {
		return rpcprobe.New()
	})

	di.RegisterToken(c, chainregistryDI.Registry, func(sr di.ServiceRegistry) *app.Registry {
		cfg := di.Resolve[*config.Config](sr, "config")
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		prober := chainregistryDI.GetProber(sr)

		descriptors := make([]domain.ChainDescriptor, 0, len(cfg.Chains))
		for _, cc := range cfg.Chains {
			gasPricing := domain.GasPricingLegacy
			if cc.UseEIP1559 {
				gasPricing = domain.GasPricingEIP1559
			}
			descriptors = append(descriptors, domain.ChainDescriptor{
				ChainID:         cc.ChainID,
				Name:            cc.Name,
				RPCURL:          cc.RPCURL,
				RPCBackupURL:    cc.RPCBackupURL,
				WSURL:           cc.WSURL,
				ExecutorAddress: cc.ExecutorAddressHex(),
				NativeSymbol:    cc.NativeSymbol,
				GasPricing:      gasPricing,
				BlockTimeHint:   cc.BlockTimeHint,
				UniswapV3Quoter: cc.UniswapV3QuoterHex(),
				ExecutionReady:  cc.ExecutionReady,
			})
		}

		registry, err := app.New(descriptors, prober, log)
		if err != nil {
			panic("chainregistry: failed to build registry: " + err.Error())
		}
		return registry
	})

	di.RegisterToken(c, chainregistryDI.ClientPool, func(sr di.ServiceRegistry) *app.ClientPool {
		registry := chainregistryDI.GetRegistry(sr)
		return app.NewClientPool(registry)
	})

	return nil
}

// Startup probes every configured chain. A failing probe on an
// execution-enabled chain aborts startup (spec §4.1).
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	registry := chainregistryDI.GetRegistry(mono.Services())

	if err := registry.ProbeAll(ctx); err != nil {
		return err
	}

	for _, d := range registry.All() {
		log.Info(ctx, "chain registered", "chain_id", d.ChainID, "name", d.Name, "status", d.Status.String())
	}

	return nil
}
