// Package di contains dependency injection tokens for the advisory
// context.
package di

import (
	"github.com/fulcrumlabs/flashrelay/business/advisory/app"
	"github.com/fulcrumlabs/flashrelay/internal/di"
)

// DI tokens for the advisory module.
const (
	GasAdvisor   = "advisory.GasAdvisor"
	ParamAdvisor = "advisory.ParamAdvisor"
)

// GetGasAdvisor resolves the registered app.GasAdvisor.
func GetGasAdvisor(sr di.ServiceRegistry) app.GasAdvisor {
	return di.Resolve[app.GasAdvisor](sr, GasAdvisor)
}

// GetParamAdvisor resolves the registered app.ParamAdvisor.
func GetParamAdvisor(sr di.ServiceRegistry) app.ParamAdvisor {
	return di.Resolve[app.ParamAdvisor](sr, ParamAdvisor)
}
