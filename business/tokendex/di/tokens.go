// Package di contains dependency injection tokens for the token & DEX
// registry context.
package di

import (
	"github.com/fulcrumlabs/flashrelay/business/tokendex/app"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// DI tokens for the tokendex module.
const (
	Registry = "tokendex.Registry"
)

// GetRegistry resolves the registered *app.Registry.
func GetRegistry(sr di.ServiceRegistry) *app.Registry {
	return di.Resolve[*app.Registry](sr, Registry)
}
