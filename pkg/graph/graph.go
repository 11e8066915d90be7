package graph

import (
	"slices"

	"github.com/optkit/flowplan/pkg/errors"
)

type edgeKey struct{ from, to string }

// Store owns the node and edge collections.
//
// Nodes are indexed by ID and kept in insertion order; edges are indexed by
// their (from, to) pair and kept in insertion order. The zero value is not
// usable - use NewStore.
type Store struct {
	nodes map[string]*Node
	order []string // node IDs in insertion order
	edges []*Edge  // insertion order
	index map[edgeKey]*Edge
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*Node),
		index: make(map[edgeKey]*Edge),
	}
}

// AddNode creates a real node with a freshly generated identifier and
// returns the identifier. A supply node gets supply=amount, demand=0; a
// demand node the reverse. Returns INVALID_AMOUNT if amount is negative.
func (s *Store) AddNode(isSupply bool, amount float64) (string, error) {
	if amount < 0 {
		return "", errors.New(errors.ErrCodeInvalidAmount, "amount must be nonnegative, got %v", amount)
	}
	n := Node{ID: NewID()}
	if isSupply {
		n.Supply = amount
	} else {
		n.Demand = amount
	}
	if err := s.insertNode(n); err != nil {
		return "", err
	}
	return n.ID, nil
}

// AddFictitiousNode creates a balancer-synthesized node and returns its
// identifier. Only the balance package should call this.
func (s *Store) AddFictitiousNode(isSupply bool, amount float64) (string, error) {
	if amount < 0 {
		return "", errors.New(errors.ErrCodeInvalidAmount, "amount must be nonnegative, got %v", amount)
	}
	n := Node{ID: NewID(), Fictitious: true}
	if isSupply {
		n.Supply = amount
	} else {
		n.Demand = amount
	}
	if err := s.insertNode(n); err != nil {
		return "", err
	}
	return n.ID, nil
}

// insertNode validates and stores a node record.
func (s *Store) insertNode(n Node) error {
	if n.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "node ID must not be empty")
	}
	if _, exists := s.nodes[n.ID]; exists {
		return errors.New(errors.ErrCodeDuplicateID, "node %q already exists", n.ID)
	}
	if n.Supply < 0 || n.Demand < 0 {
		return errors.New(errors.ErrCodeInvalidAmount, "supply and demand must be nonnegative")
	}
	if n.Supply > 0 && n.Demand > 0 {
		return errors.New(errors.ErrCodeInvalidType, "node %q has both supply and demand", n.ID)
	}
	node := n
	s.nodes[node.ID] = &node
	s.order = append(s.order, node.ID)
	return nil
}

// DeleteNode removes the node and every edge where it appears as from or
// to. Returns NOT_FOUND if the ID is absent; the caller decides whether
// that is an error.
func (s *Store) DeleteNode(id string) error {
	if _, ok := s.nodes[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	s.edges = slices.DeleteFunc(s.edges, func(e *Edge) bool {
		if e.From == id || e.To == id {
			delete(s.index, edgeKey{e.From, e.To})
			return true
		}
		return false
	})
	return nil
}

// RenameNode changes a node's ID and rewrites from/to on all edges
// referencing the old ID. Returns NOT_FOUND if oldID is absent and
// DUPLICATE_ID if newID is already taken.
func (s *Store) RenameNode(oldID, newID string) error {
	if newID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "node ID must not be empty")
	}
	node, ok := s.nodes[oldID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", oldID)
	}
	if _, exists := s.nodes[newID]; exists {
		return errors.New(errors.ErrCodeDuplicateID, "node %q already exists", newID)
	}

	node.ID = newID
	delete(s.nodes, oldID)
	s.nodes[newID] = node

	for i, id := range s.order {
		if id == oldID {
			s.order[i] = newID
		}
	}

	for _, e := range s.edges {
		delete(s.index, edgeKey{e.From, e.To})
		if e.From == oldID {
			e.From = newID
		}
		if e.To == oldID {
			e.To = newID
		}
		s.index[edgeKey{e.From, e.To}] = e
	}
	return nil
}

// RetypeNode replaces a node's supply/demand amounts. Exactly one of
// newSupply, newDemand must be strictly positive. Fictitious nodes cannot
// be retyped.
//
// Retyping a supply node into a demand node (or vice versa) invalidates
// the direction of its incident edges, so those edges are removed.
func (s *Store) RetypeNode(id string, newSupply, newDemand float64) error {
	node, ok := s.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	if node.Fictitious {
		return errors.New(errors.ErrCodeFictitiousImmutable, "node %q is fictitious and cannot be modified", id)
	}
	if newSupply < 0 || newDemand < 0 {
		return errors.New(errors.ErrCodeInvalidAmount, "supply and demand must be nonnegative")
	}
	if (newSupply > 0) == (newDemand > 0) {
		return errors.New(errors.ErrCodeInvalidType, "exactly one of supply and demand must be positive")
	}

	flipped := node.IsSupply() != (newSupply > 0)
	node.Supply = newSupply
	node.Demand = newDemand
	if flipped {
		s.edges = slices.DeleteFunc(s.edges, func(e *Edge) bool {
			if e.From == id || e.To == id {
				delete(s.index, edgeKey{e.From, e.To})
				return true
			}
			return false
		})
	}
	return nil
}

// AddEdge creates a cost edge from a supply node to a demand node.
// Fails with NOT_FOUND if either endpoint is absent, INVALID_DIRECTION if
// the endpoints are not supply → demand, DUPLICATE_EDGE if the ordered
// pair already exists, and INVALID_COST if cost is negative.
func (s *Store) AddEdge(fromID, toID string, cost float64) error {
	from, ok := s.nodes[fromID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", fromID)
	}
	to, ok := s.nodes[toID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", toID)
	}
	if !from.IsSupply() || !to.IsDemand() {
		return errors.New(errors.ErrCodeInvalidDirection, "edges must run supply → demand, got %q → %q", fromID, toID)
	}
	if cost < 0 {
		return errors.New(errors.ErrCodeInvalidCost, "cost must be nonnegative, got %v", cost)
	}
	key := edgeKey{fromID, toID}
	if _, exists := s.index[key]; exists {
		return errors.New(errors.ErrCodeDuplicateEdge, "edge %q → %q already exists", fromID, toID)
	}
	e := &Edge{From: fromID, To: toID, Cost: cost}
	s.edges = append(s.edges, e)
	s.index[key] = e
	return nil
}

// DeleteEdge removes the edge fromID → toID.
func (s *Store) DeleteEdge(fromID, toID string) error {
	key := edgeKey{fromID, toID}
	if _, exists := s.index[key]; !exists {
		return errors.New(errors.ErrCodeNotFound, "edge %q → %q not found", fromID, toID)
	}
	delete(s.index, key)
	s.edges = slices.DeleteFunc(s.edges, func(e *Edge) bool { return e.From == fromID && e.To == toID })
	return nil
}

// UpdateEdgeCost replaces the cost of an existing edge.
func (s *Store) UpdateEdgeCost(fromID, toID string, newCost float64) error {
	e, exists := s.index[edgeKey{fromID, toID}]
	if !exists {
		return errors.New(errors.ErrCodeNotFound, "edge %q → %q not found", fromID, toID)
	}
	if newCost < 0 {
		return errors.New(errors.ErrCodeInvalidCost, "cost must be nonnegative, got %v", newCost)
	}
	e.Cost = newCost
	return nil
}

// FindEdge returns the edge fromID → toID, or false if absent.
// The returned edge is a copy; use UpdateEdgeCost to mutate.
func (s *Store) FindEdge(fromID, toID string) (Edge, bool) {
	e, ok := s.index[edgeKey{fromID, toID}]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Node returns the node with the given ID, or false if absent.
// The returned node is a copy.
func (s *Store) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// NodesWhere returns all nodes matching the predicate, in insertion order.
func (s *Store) NodesWhere(pred func(Node) bool) []Node {
	var out []Node
	for _, id := range s.order {
		if n := s.nodes[id]; pred(*n) {
			out = append(out, *n)
		}
	}
	return out
}

// SupplyNodes returns every supply node (fictitious included) in insertion
// order. This order is the enumeration convention shared by the model
// builder and the result mapper.
func (s *Store) SupplyNodes() []Node {
	return s.NodesWhere(func(n Node) bool { return n.IsSupply() })
}

// DemandNodes returns every demand node (fictitious included) in insertion
// order.
func (s *Store) DemandNodes() []Node {
	return s.NodesWhere(func(n Node) bool { return n.IsDemand() })
}

// Nodes returns all nodes in insertion order.
func (s *Store) Nodes() []Node {
	return s.NodesWhere(func(Node) bool { return true })
}

// Edges returns a copy of all edges in insertion order.
func (s *Store) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = *e
	}
	return out
}

// NodeCount returns the number of nodes in the store.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges in the store.
func (s *Store) EdgeCount() int { return len(s.edges) }

// RemoveFictitious discards every fictitious node and its incident edges.
// Called by the balancer before each balancing pass so stale fictitious
// state never leaks into a new solve.
func (s *Store) RemoveFictitious() {
	for _, id := range slices.Clone(s.order) {
		if s.nodes[id].Fictitious {
			_ = s.DeleteNode(id)
		}
	}
}

// Clear removes every node and edge.
func (s *Store) Clear() {
	s.nodes = make(map[string]*Node)
	s.order = nil
	s.edges = nil
	s.index = make(map[edgeKey]*Edge)
}
