// Package scanner implements the scan orchestrator bounded context:
// the fixed-interval discovery loop described in spec §4.7, wired on
// top of the chain registry, graph, pricing, profitability, gasfeed
// and advisory contexts, and handing profitable signals to the
// executor process over the execution client.
package scanner

import (
	"context"

	advisoryDI "github.com/fulcrumlabs/flashrelay/business/advisory/di"
	chainregistryDI "github.com/fulcrumlabs/flashrelay/business/chainregistry/di"
	executionclient "github.com/fulcrumlabs/flashrelay/business/execution/infra/client"
	gasfeedDI "github.com/fulcrumlabs/flashrelay/business/gasfeed/di"
	graphDI "github.com/fulcrumlabs/flashrelay/business/graph/di"
	pricingDI "github.com/fulcrumlabs/flashrelay/business/pricing/di"
	profitabilityDI "github.com/fulcrumlabs/flashrelay/business/profitability/di"
	"github.com/fulcrumlabs/flashrelay/business/scanner/app"
	scannerDI "github.com/fulcrumlabs/flashrelay/business/scanner/di"
	"github.com/fulcrumlabs/flashrelay/business/scanner/infra/marketdata"
	tokendexDI "github.com/fulcrumlabs/flashrelay/business/tokendex/di"
	"github.com/fulcrumlabs/flashrelay/internal/config"
	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the scan orchestrator bounded context.
type Module struct{}

// RegisterServices wires the execution client and the orchestrator on
// top of every other bounded context's services.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, scannerDI.Client, func(sr di.ServiceRegistry) *executionclient.Client {
		cfg := di.Resolve[*config.Config](sr, "config")
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		client, err := executionclient.New(cfg.Scanner.ExecutorURL, cfg.Scanner.ExecutorWSURL, log)
		if err != nil {
			panic("scanner: failed to build execution client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, scannerDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		cfg := di.Resolve[*config.Config](sr, "config")
		log := di.Resolve[logger.LoggerInterface](sr, "logger")

		orchestratorCfg := app.DefaultConfig()
		if cfg.Scanner.ScanInterval > 0 {
			orchestratorCfg.ScanInterval = cfg.Scanner.ScanInterval
		}
		if cfg.Scanner.WorkerPoolWidth > 0 {
			orchestratorCfg.WorkerPoolWidth = cfg.Scanner.WorkerPoolWidth
		}
		if cfg.Scanner.SignalQueueSize > 0 {
			orchestratorCfg.SignalQueueSize = cfg.Scanner.SignalQueueSize
		}
		if cfg.Scanner.BridgeFeeBps > 0 {
			orchestratorCfg.BridgeFeeBps = cfg.Scanner.BridgeFeeBps
		}
		if cfg.Execution.MinProfitUSD > 0 {
			orchestratorCfg.MinProfitUSD = cfg.Execution.MinProfitUSDDecimal()
		}

		orchestrator, err := app.New(
			orchestratorCfg,
			chainregistryDI.GetRegistry(sr),
			graphDI.GetService(sr),
			tokendexDI.GetRegistry(sr),
			pricingDI.GetRouter(sr),
			profitabilityDI.GetService(sr),
			gasfeedDI.GetService(sr),
			advisoryDI.GetGasAdvisor(sr),
			marketdata.New(),
			scannerDI.GetClient(sr),
			log,
		)
		if err != nil {
			panic("scanner: failed to build orchestrator: " + err.Error())
		}
		return orchestrator
	})

	return nil
}

// Startup connects the execution client's websocket event feed, if
// configured, and launches the scan loop in the background: Startup
// itself must return promptly since the monolith runs every module's
// Startup sequentially before the process blocks on shutdown.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	client := scannerDI.GetClient(mono.Services())

	if err := client.Connect(ctx); err != nil {
		log.Warn(ctx, "scanner: executor event feed connect failed, continuing without push events", "error", err)
	}

	orchestrator := scannerDI.GetOrchestrator(mono.Services())
	go func() {
		if err := orchestrator.Run(ctx); err != nil {
			log.Error(ctx, "scanner: scan loop exited with error", "error", err)
		}
	}()

	log.Info(ctx, "scanner module started")
	return nil
}
