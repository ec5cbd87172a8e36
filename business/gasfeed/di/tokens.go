// Package di contains dependency injection tokens for the gas feed
// context.
package di

import (
	"github.com/fulcrumlabs/flashrelay/business/gasfeed/app"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// Service is the DI token for the gas feed app.Service.
const Service = "gasfeed.Service"

// GetService resolves the registered *app.Service.
func GetService(sr di.ServiceRegistry) *app.Service {
	return di.Resolve[*app.Service](sr, Service)
}
