// Package execution wires the seven-stage execution pipeline bounded
// context: signing, relay submission and the pipeline that ties them
// to the chain registry, gas feed and simulator (spec §4.9).
package execution

import (
	"context"

	chainregistryDI "github.com/fulcrumlabs/flashrelay/business/chainregistry/di"
	"github.com/fulcrumlabs/flashrelay/business/execution/app"
	executionDI "github.com/fulcrumlabs/flashrelay/business/execution/di"
	"github.com/fulcrumlabs/flashrelay/business/execution/domain"
	"github.com/fulcrumlabs/flashrelay/business/execution/infra/relay"
	"github.com/fulcrumlabs/flashrelay/business/execution/infra/signer"
	gasfeedDI "github.com/fulcrumlabs/flashrelay/business/gasfeed/di"
	"github.com/fulcrumlabs/flashrelay/business/pricing/infra/simulate"
	"github.com/fulcrumlabs/flashrelay/internal/config"
	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the execution pipeline bounded context. It is
// registered only in cmd/executor; the discovery process (cmd/brain)
// talks to it exclusively through execution/infra/client.
type Module struct{}

// RegisterServices wires the signer, relayer and pipeline.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, executionDI.Signer, func(sr di.ServiceRegistry) app.Signer {
		cfg := di.Resolve[*config.Config](sr, "config")
		pool := chainregistryDI.GetClientPool(sr)
		return signer.New(cfg.Execution.PrivateKey, pool)
	})

	di.RegisterToken(c, executionDI.Relayer, func(sr di.ServiceRegistry) app.Relayer {
		cfg := di.Resolve[*config.Config](sr, "config")
		registry := chainregistryDI.GetRegistry(sr)
		pool := chainregistryDI.GetClientPool(sr)
		log := di.Resolve[logger.LoggerInterface](sr, "logger")

		r, err := relay.New(relay.Config{
			Endpoint:            cfg.Relay.Endpoint,
			BearerAuth:          cfg.Relay.BloxrouteAuth,
			HMACSecret:          cfg.Relay.BloxHashSecret,
			TLSCertPath:         cfg.Relay.TLSCertPath,
			TLSKeyPath:          cfg.Relay.TLSKeyPath,
			FallbackEnabled:     cfg.Relay.FallbackEnabled,
			BreakerFailureLimit: cfg.Relay.BreakerFailureLimit,
			BreakerCooldown:     cfg.Relay.BreakerCooldown,
		}, registry, pool, log)
		if err != nil {
			panic("execution: failed to build relay client: " + err.Error())
		}
		return r
	})

	di.RegisterToken(c, executionDI.Pipeline, func(sr di.ServiceRegistry) *app.Pipeline {
		cfg := di.Resolve[*config.Config](sr, "config")
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		registry := chainregistryDI.GetRegistry(sr)
		pool := chainregistryDI.GetClientPool(sr)
		gas := gasfeedDI.GetService(sr)
		sig := executionDI.GetSigner(sr)
		rel := executionDI.GetRelayer(sr)

		mode := domain.ModePaper
		if cfg.Execution.IsLive() {
			mode = domain.ModeLive
		}

		simulator, err := simulate.New(pool, log)
		if err != nil {
			panic("execution: failed to build simulator: " + err.Error())
		}

		pipeline, err := app.New(app.Config{
			Mode:                mode,
			MaxCalldataBytes:    cfg.Execution.MaxCalldataBytes,
			MaxBaseFeeGwei:      cfg.Execution.MaxBaseFeeGwei,
			GasLimitMultiplier:  cfg.Execution.GasLimitMultiplier,
			BreakerFailureLimit: cfg.Execution.BreakerFailureLimit,
			BreakerCooldown:     cfg.Execution.BreakerCooldown,
		}, registry, pool, simulator, gas, sig, rel, log)
		if err != nil {
			panic("execution: failed to build pipeline: " + err.Error())
		}
		return pipeline
	})

	return nil
}

// Startup is a no-op: every dependency dials lazily on first use.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	return nil
}
