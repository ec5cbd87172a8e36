// Package di contains dependency injection tokens for the graph &
// opportunity engine context.
package di

import (
	"github.com/fulcrumlabs/flashrelay/business/graph/app"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// DI tokens for the graph module.
const (
	Service = "graph.Service"
)

// GetService resolves the registered *app.Service.
func GetService(sr di.ServiceRegistry) *app.Service {
	return di.Resolve[*app.Service](sr, Service)
}
