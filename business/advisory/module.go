// Package advisory implements the advisory layer bounded context:
// gas-trend hold and parameter recommendation (spec §4.6), both
// degrading to static defaults when no model is configured.
package advisory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fulcrumlabs/flashrelay/business/advisory/app"
	advisoryDI "github.com/fulcrumlabs/flashrelay/business/advisory/di"
	"github.com/fulcrumlabs/flashrelay/business/advisory/infra"
	"github.com/fulcrumlabs/flashrelay/internal/config"
	"github.com/fulcrumlabs/flashrelay/internal/di"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
	"github.com/fulcrumlabs/flashrelay/internal/monolith"
)

// Module implements the advisory bounded context.
type Module struct{}

// RegisterServices registers the configured GasAdvisor and ParamAdvisor.
// The gas advisor is always the trend-filter advisor; a configured
// model path is only logged, no model is loaded (spec §1 non-goal:
// ML model training/inference). The param advisor is the no-op one.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, advisoryDI.GasAdvisor, func(sr di.ServiceRegistry) app.GasAdvisor {
		cfg := di.Resolve[*config.Config](sr, "config")
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		if cfg.Advisory.CatBoostModelPath == "" && cfg.Advisory.HFModelPath == "" && cfg.Advisory.MLModelPath == "" {
			log.Info(context.Background(), "advisory: no gas-trend model configured, using trend-filter advisor")
			return infra.NewTrendGasAdvisor(10, decimal.NewFromInt(1500))
		}
		log.Warn(context.Background(), "advisory: model path configured but model inference is out of scope, falling back to trend filter",
			"catboost_path", cfg.Advisory.CatBoostModelPath)
		return infra.NewTrendGasAdvisor(10, decimal.NewFromInt(1500))
	})

	di.RegisterToken(c, advisoryDI.ParamAdvisor, func(sr di.ServiceRegistry) app.ParamAdvisor {
		return infra.NoOpParamAdvisor{}
	})

	return nil
}

// Startup is a no-op: advisors hold no external connections.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	return nil
}
