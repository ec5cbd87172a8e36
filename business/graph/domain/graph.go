// Package domain models the cross-chain token graph and the
// candidate opportunities enumerated over it. The graph is built once
// at startup and treated as read-only afterward (spec §3): nodes live
// in a contiguous slice and edges hold indices into it rather than
// pointers, since the intended traversal never revisits an edge
// within a single candidate path and so can never form a cycle.
package domain

import "github.com/shopspring/decimal"

// NodeID indexes into Graph.Nodes.
type NodeID int

// Node is a token instance identified by (chain, symbol).
type Node struct {
	ChainID uint64
	Symbol  string
}

// Edge is a cross-chain bridge leg between two nodes. Intra-chain DEX
// routes are not materialized as edges: they are enumerated directly
// from the DEX registry at scan time (spec §4.3), since the set of
// DEX pairs on a chain doesn't depend on which token pair is being
// priced.
type Edge struct {
	From NodeID
	To   NodeID
}

// Graph is the immutable node/edge arena built at startup.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// NodeByKey finds a node's index by (chainID, symbol), or -1 if absent.
func (g *Graph) NodeByKey(chainID uint64, symbol string) NodeID {
	for i, n := range g.Nodes {
		if n.ChainID == chainID && n.Symbol == symbol {
			return NodeID(i)
		}
	}
	return -1
}

// Candidate is an immutable opportunity enumerated from the graph for
// one scan iteration. DexA/DexB are empty for cross-chain candidates,
// which compare a DEX price against a bridge quote instead.
type Candidate struct {
	SourceChain  uint64
	DestChain    uint64 // equals SourceChain for intra-chain candidates
	IsCrossChain bool
	TokenSymbol  string
	DexA         string
	DexB         string
	TradeSizeUSD decimal.Decimal
}
