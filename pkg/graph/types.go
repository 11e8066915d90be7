package graph

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/optkit/flowplan/pkg/errors"
)

// Node represents a vertex in the bipartite network. Exactly one of Supply
// and Demand is strictly positive for a usable node; the other is zero.
type Node struct {
	ID         string  // Unique identifier, stable except through RenameNode
	Supply     float64 // Outgoing capacity (supply nodes)
	Demand     float64 // Required inflow (demand nodes)
	Fictitious bool    // Synthesized by the balancer, never user-created
}

// IsSupply reports whether the node is a supply node.
func (n Node) IsSupply() bool { return n.Supply > 0 }

// IsDemand reports whether the node is a demand node.
func (n Node) IsDemand() bool { return n.Demand > 0 }

// Amount returns the node's single positive quantity: supply for supply
// nodes, demand for demand nodes.
func (n Node) Amount() float64 {
	if n.IsSupply() {
		return n.Supply
	}
	return n.Demand
}

// Edge represents a directed cost edge. Its identity is the ordered pair
// (From, To); the store holds at most one edge per pair.
type Edge struct {
	From string  // Supply node ID
	To   string  // Demand node ID
	Cost float64 // Nonnegative shipping cost per unit
}

// NewID generates a fresh node identifier: the first eight hex characters
// of a UUIDv4. Short enough to type in the editor, unique enough for graphs
// in the tens of nodes.
func NewID() string {
	return uuid.NewString()[:8]
}

// Model is the canonical serialization format for a Store snapshot.
// Used for API payloads, CLI input files, and cache keys.
type Model struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Snapshot captures the store as a Model. Nodes and edges appear in
// insertion order, so two stores built by the same mutation sequence
// serialize identically.
func (s *Store) Snapshot() Model {
	m := Model{
		Nodes: make([]Node, 0, len(s.order)),
		Edges: make([]Edge, 0, len(s.edges)),
	}
	for _, id := range s.order {
		m.Nodes = append(m.Nodes, *s.nodes[id])
	}
	for _, e := range s.edges {
		m.Edges = append(m.Edges, *e)
	}
	return m
}

// FromModel builds a store from a serialized model.
// Returns an error if the model violates store invariants.
func FromModel(m Model) (*Store, error) {
	s := NewStore()
	for _, n := range m.Nodes {
		if err := s.insertNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range m.Edges {
		if err := s.AddEdge(e.From, e.To, e.Cost); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MarshalModel serializes a model to JSON.
func MarshalModel(m Model) ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalModel deserializes JSON bytes to a Model.
func UnmarshalModel(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid model JSON")
	}
	return m, nil
}
