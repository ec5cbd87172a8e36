package app

import (
	"github.com/shopspring/decimal"

	"github.com/fulcrumlabs/flashrelay/business/graph/domain"
	tokendexApp "github.com/fulcrumlabs/flashrelay/business/tokendex/app"
)

// Service owns the built graph and the registry it was built from,
// and is the scan orchestrator's entry point for each iteration's
// candidate list. The graph itself never changes after Build; only
// the candidate list is recomputed per iteration (registries may gain
// DEXes between restarts, but never mid-process).
type Service struct {
	graph     *domain.Graph
	registry  *tokendexApp.Registry
	chainIDs  []uint64
	sizeSweep []decimal.Decimal
}

// NewService builds the graph once from registry and chainIDs.
func NewService(registry *tokendexApp.Registry, chainIDs []uint64, sizeSweep []decimal.Decimal) *Service {
	return &Service{
		graph:     Build(registry, chainIDs),
		registry:  registry,
		chainIDs:  chainIDs,
		sizeSweep: sizeSweep,
	}
}

// Graph returns the built, read-only token graph.
func (s *Service) Graph() *domain.Graph {
	return s.graph
}

// Enumerate produces this iteration's candidate list.
func (s *Service) Enumerate() []domain.Candidate {
	return Enumerate(s.graph, s.registry, s.chainIDs, s.sizeSweep)
}
