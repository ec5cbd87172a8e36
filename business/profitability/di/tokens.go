// Package di contains dependency injection tokens for the
// profitability context.
package di

import (
	"github.com/fulcrumlabs/flashrelay/business/profitability/app"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// Service is the DI token for the profitability app.Service.
const Service = "profitability.Service"

// GetService resolves the registered *app.Service.
func GetService(sr di.ServiceRegistry) *app.Service {
	return di.Resolve[*app.Service](sr, Service)
}
