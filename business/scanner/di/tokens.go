// Package di contains dependency injection tokens for the scan
// orchestrator context.
package di

import (
	executionclient "github.com/fulcrumlabs/flashrelay/business/execution/infra/client"
	"github.com/fulcrumlabs/flashrelay/business/scanner/app"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// DI tokens for the scanner module.
const (
	Orchestrator = "scanner.Orchestrator"
	Client       = "scanner.Client"
)

// GetOrchestrator resolves the registered *app.Orchestrator.
func GetOrchestrator(sr di.ServiceRegistry) *app.Orchestrator {
	return di.Resolve[*app.Orchestrator](sr, Orchestrator)
}

// GetClient resolves the registered *executionclient.Client.
func GetClient(sr di.ServiceRegistry) *executionclient.Client {
	return di.Resolve[*executionclient.Client](sr, Client)
}
