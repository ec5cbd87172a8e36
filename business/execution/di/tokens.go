// Package di contains dependency injection tokens for the execution
// pipeline context.
package di

import (
	"github.com/fulcrumlabs/flashrelay/business/execution/app"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// DI tokens for the execution module.
const (
	Pipeline = "execution.Pipeline"
	Signer   = "execution.Signer"
	Relayer  = "execution.Relayer"
)

// GetPipeline resolves the registered *app.Pipeline.
func GetPipeline(sr di.ServiceRegistry) *app.Pipeline {
	return di.Resolve[*app.Pipeline](sr, Pipeline)
}

// GetSigner resolves the registered app.Signer.
func GetSigner(sr di.ServiceRegistry) app.Signer {
	return di.Resolve[app.Signer](sr, Signer)
}

// GetRelayer resolves the registered app.Relayer.
func GetRelayer(sr di.ServiceRegistry) app.Relayer {
	return di.Resolve[app.Relayer](sr, Relayer)
}
