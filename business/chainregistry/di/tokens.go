// Package di contains dependency injection tokens for the chain
// registry context.
package di

import (
	"github.com/fulcrumlabs/flashrelay/business/chainregistry/app"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// DI tokens for the chainregistry module.
const (
	Prober     = "chainregistry.Prober"
	Registry   = "chainregistry.Registry"
	ClientPool = "chainregistry.ClientPool"
)

// GetProber resolves the registered app.Prober.
func GetProber(sr di.ServiceRegistry) app.Prober {
	return di.Resolve[app.Prober](sr, Prober)
}

// GetRegistry resolves the registered *app.Registry.
func GetRegistry(sr di.ServiceRegistry) *app.Registry {
	return di.Resolve[*app.Registry](sr, Registry)
}

// GetClientPool resolves the registered *app.ClientPool.
func GetClientPool(sr di.ServiceRegistry) *app.ClientPool {
	return di.Resolve[*app.ClientPool](sr, ClientPool)
}
