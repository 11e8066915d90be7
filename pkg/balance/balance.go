// Package balance equalizes total supply and total demand in a store by
// synthesizing fictitious nodes.
//
// A transportation model is solvable in the dense form the model package
// builds only when total supply equals total demand. When the totals
// differ, Balance adds a single fictitious node on the short side and
// connects it to every real counterpart with cost-zero edges: a fictitious
// supply node absorbs unmet demand, a fictitious demand node absorbs unused
// capacity.
//
// Fictitious state from an earlier solve is always discarded first, so
// balancing is idempotent and reflects the current real-node totals even
// after the graph was edited between solves.
package balance

import (
	"fmt"

	"github.com/optkit/flowplan/pkg/graph"
)

// Kind classifies the outcome of a balancing pass.
type Kind int

const (
	// AlreadyBalanced means total supply equaled total demand; the store
	// was not modified beyond discarding stale fictitious nodes.
	AlreadyBalanced Kind = iota
	// SupplyShortfallAdded means a fictitious supply node now covers the
	// demand the real supply nodes cannot.
	SupplyShortfallAdded
	// ExcessSupplyAdded means a fictitious demand node now absorbs supply
	// no real demand node asks for.
	ExcessSupplyAdded
)

// Outcome reports what a balancing pass did.
type Outcome struct {
	Kind   Kind
	Amount float64 // Imbalance covered by the fictitious node; zero when balanced
	NodeID string  // ID of the synthesized node; empty when balanced
}

// String renders the outcome as a user-facing message.
func (o Outcome) String() string {
	switch o.Kind {
	case SupplyShortfallAdded:
		return fmt.Sprintf("total supply falls short of demand; added fictitious supply node %s with %v units", o.NodeID, o.Amount)
	case ExcessSupplyAdded:
		return fmt.Sprintf("total supply exceeds demand; added fictitious demand node %s with %v units", o.NodeID, o.Amount)
	default:
		return "model already balanced"
	}
}

// Balance discards any previously synthesized fictitious nodes, compares
// the real supply and demand totals, and writes at most one fictitious
// node plus its zero-cost edges back into the store.
func Balance(s *graph.Store) (Outcome, error) {
	s.RemoveFictitious()

	var totalSupply, totalDemand float64
	for _, n := range s.SupplyNodes() {
		totalSupply += n.Supply
	}
	for _, n := range s.DemandNodes() {
		totalDemand += n.Demand
	}

	switch {
	case totalSupply < totalDemand:
		shortfall := totalDemand - totalSupply
		id, err := s.AddFictitiousNode(true, shortfall)
		if err != nil {
			return Outcome{}, err
		}
		// The fictitious source must reach every real demand node so the
		// dense cost matrix has no holes.
		for _, d := range s.DemandNodes() {
			if d.Fictitious {
				continue
			}
			if err := s.AddEdge(id, d.ID, 0); err != nil {
				return Outcome{}, err
			}
		}
		return Outcome{Kind: SupplyShortfallAdded, Amount: shortfall, NodeID: id}, nil

	case totalSupply > totalDemand:
		excess := totalSupply - totalDemand
		id, err := s.AddFictitiousNode(false, excess)
		if err != nil {
			return Outcome{}, err
		}
		for _, sup := range s.SupplyNodes() {
			if sup.Fictitious {
				continue
			}
			if err := s.AddEdge(sup.ID, id, 0); err != nil {
				return Outcome{}, err
			}
		}
		return Outcome{Kind: ExcessSupplyAdded, Amount: excess, NodeID: id}, nil

	default:
		return Outcome{Kind: AlreadyBalanced}, nil
	}
}
