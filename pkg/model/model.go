package model

import (
	"fmt"
	"strings"

	"github.com/optkit/flowplan/pkg/errors"
	"github.com/optkit/flowplan/pkg/graph"
)

// Kind selects the problem formulation.
type Kind string

const (
	Transportation Kind = "transportation"
	Assignment     Kind = "assignment"
)

// ParseKind validates a problem-kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case Transportation:
		return Transportation, nil
	case Assignment:
		return Assignment, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown problem kind %q (must be transportation or assignment)", s)
}

// Bounds is the variable-bounds policy of a program.
type Bounds int

const (
	// BoundsNonnegative bounds every variable to [0, ∞).
	BoundsNonnegative Bounds = iota
	// BoundsUnit bounds every variable to [0, 1].
	BoundsUnit
)

// LinearProgram is the canonical form handed to the solver: minimize
// Cost·x subject to Eq·x = EqRHS, Ub·x <= UbRHS, and the bounds policy.
// It exists only for the duration of one solve call.
type LinearProgram struct {
	Cost   []float64
	Eq     [][]float64
	EqRHS  []float64
	Ub     [][]float64
	UbRHS  []float64
	Bounds Bounds
}

// NumVars returns the number of decision variables.
func (p LinearProgram) NumVars() int { return len(p.Cost) }

// Ordering records the node enumeration the cost vector was built with.
// Index i of Supply and index j of Demand correspond to variable i*n+j.
type Ordering struct {
	Supply []string
	Demand []string
}

// BuildTransportation formulates the transportation problem over the
// store's current supply and demand nodes, fictitious included. The store
// must be balanced first; every (supply, demand) pair must have an edge.
//
// Rows: one inequality per supply node (outflow ≤ supply) and one equality
// per demand node (inflow = demand). Bounds: [0, ∞).
func BuildTransportation(s *graph.Store) (LinearProgram, Ordering, error) {
	ord := Ordering{
		Supply: nodeIDs(s.SupplyNodes()),
		Demand: nodeIDs(s.DemandNodes()),
	}
	if len(ord.Supply) == 0 || len(ord.Demand) == 0 {
		return LinearProgram{}, Ordering{}, errors.New(errors.ErrCodeInvalidInput,
			"need at least one supply node and one demand node")
	}

	cost, err := denseCosts(s, ord)
	if err != nil {
		return LinearProgram{}, Ordering{}, err
	}

	m, n := len(ord.Supply), len(ord.Demand)
	p := LinearProgram{Cost: cost, Bounds: BoundsNonnegative}

	for i, id := range ord.Supply {
		row := make([]float64, m*n)
		for j := 0; j < n; j++ {
			row[i*n+j] = 1
		}
		node, _ := s.Node(id)
		p.Ub = append(p.Ub, row)
		p.UbRHS = append(p.UbRHS, node.Supply)
	}
	for j, id := range ord.Demand {
		row := make([]float64, m*n)
		for i := 0; i < m; i++ {
			row[i*n+j] = 1
		}
		node, _ := s.Node(id)
		p.Eq = append(p.Eq, row)
		p.EqRHS = append(p.EqRHS, node.Demand)
	}
	return p, ord, nil
}

// BuildAssignment formulates the assignment problem over the store's real
// supply and demand nodes. Requires equal node counts and normalizes every
// amount to exactly one, mutating the store: assignment treats node
// amounts as irrelevant.
//
// Rows: one equality per supply node (row sum = 1) and one per demand node
// (column sum = 1). Bounds: [0, 1].
func BuildAssignment(s *graph.Store) (LinearProgram, Ordering, error) {
	real := func(n graph.Node) bool { return !n.Fictitious }
	supply := s.NodesWhere(func(n graph.Node) bool { return n.IsSupply() && real(n) })
	demand := s.NodesWhere(func(n graph.Node) bool { return n.IsDemand() && real(n) })

	if len(supply) == 0 || len(demand) == 0 {
		return LinearProgram{}, Ordering{}, errors.New(errors.ErrCodeInvalidInput,
			"need at least one supply node and one demand node")
	}
	if len(supply) != len(demand) {
		return LinearProgram{}, Ordering{}, errors.New(errors.ErrCodeUnbalancedAssignment,
			"assignment needs equal node counts, got %d supply and %d demand", len(supply), len(demand))
	}

	for _, n := range supply {
		if err := s.RetypeNode(n.ID, 1, 0); err != nil {
			return LinearProgram{}, Ordering{}, err
		}
	}
	for _, n := range demand {
		if err := s.RetypeNode(n.ID, 0, 1); err != nil {
			return LinearProgram{}, Ordering{}, err
		}
	}

	ord := Ordering{Supply: nodeIDs(supply), Demand: nodeIDs(demand)}
	cost, err := denseCosts(s, ord)
	if err != nil {
		return LinearProgram{}, Ordering{}, err
	}

	m := len(ord.Supply)
	n := len(ord.Demand) // == m
	p := LinearProgram{Cost: cost, Bounds: BoundsUnit}

	for i := 0; i < m; i++ {
		row := make([]float64, m*n)
		for j := 0; j < n; j++ {
			row[i*n+j] = 1
		}
		p.Eq = append(p.Eq, row)
		p.EqRHS = append(p.EqRHS, 1)
	}
	for j := 0; j < n; j++ {
		row := make([]float64, m*n)
		for i := 0; i < m; i++ {
			row[i*n+j] = 1
		}
		p.Eq = append(p.Eq, row)
		p.EqRHS = append(p.EqRHS, 1)
	}
	return p, ord, nil
}

// denseCosts builds the flattened cost vector, requiring an edge for every
// (supply, demand) pair in the ordering.
func denseCosts(s *graph.Store, ord Ordering) ([]float64, error) {
	n := len(ord.Demand)
	cost := make([]float64, len(ord.Supply)*n)
	for i, from := range ord.Supply {
		for j, to := range ord.Demand {
			e, ok := s.FindEdge(from, to)
			if !ok {
				return nil, errors.New(errors.ErrCodeMissingEdge, "missing edge %s → %s", from, to)
			}
			cost[i*n+j] = e.Cost
		}
	}
	return cost, nil
}

// Formulation renders the program as the objective and constraint listing
// shown to the user alongside the solution.
func Formulation(p LinearProgram, ord Ordering, kind Kind) string {
	if kind == Assignment {
		return assignmentFormulation(p, ord)
	}
	var b strings.Builder
	n := len(ord.Demand)

	b.WriteString("Objective (Transportation):\nMin Z = ")
	terms := make([]string, 0, len(p.Cost))
	for i := range ord.Supply {
		for j := range ord.Demand {
			terms = append(terms, fmt.Sprintf("%v*x_%d%d", p.Cost[i*n+j], i+1, j+1))
		}
	}
	b.WriteString(strings.Join(terms, " + "))
	b.WriteString("\n\nSupply constraints (≤):\n")
	for i, id := range ord.Supply {
		row := make([]string, 0, n)
		for j := 0; j < n; j++ {
			row = append(row, fmt.Sprintf("x_%d%d", i+1, j+1))
		}
		fmt.Fprintf(&b, "%s ≤ %v (%s)\n", strings.Join(row, " + "), p.UbRHS[i], short(id))
	}
	b.WriteString("\nDemand constraints (=):\n")
	for j, id := range ord.Demand {
		col := make([]string, 0, len(ord.Supply))
		for i := range ord.Supply {
			col = append(col, fmt.Sprintf("x_%d%d", i+1, j+1))
		}
		fmt.Fprintf(&b, "%s = %v (%s)\n", strings.Join(col, " + "), p.EqRHS[j], short(id))
	}
	b.WriteString("\nVariables x_ij ≥ 0\n")
	return b.String()
}

func assignmentFormulation(p LinearProgram, ord Ordering) string {
	var b strings.Builder
	m, n := len(ord.Supply), len(ord.Demand)

	fmt.Fprintf(&b, "Objective (Assignment):\nMin Z = ")
	terms := make([]string, 0, len(p.Cost))
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			terms = append(terms, fmt.Sprintf("%v*x_%d%d", p.Cost[i*n+j], i+1, j+1))
		}
	}
	b.WriteString(strings.Join(terms, " + "))
	b.WriteString("\n\nAgent constraints (= 1):\n")
	for i, id := range ord.Supply {
		row := make([]string, 0, n)
		for j := 0; j < n; j++ {
			row = append(row, fmt.Sprintf("x_%d%d", i+1, j+1))
		}
		fmt.Fprintf(&b, "%s = 1 (%s)\n", strings.Join(row, " + "), short(id))
	}
	b.WriteString("\nTask constraints (= 1):\n")
	for j, id := range ord.Demand {
		col := make([]string, 0, m)
		for i := 0; i < m; i++ {
			col = append(col, fmt.Sprintf("x_%d%d", i+1, j+1))
		}
		fmt.Fprintf(&b, "%s = 1 (%s)\n", strings.Join(col, " + "), short(id))
	}
	b.WriteString("\nVariables x_ij ∈ [0, 1]\n")
	return b.String()
}

// short truncates an ID for display, matching the editor's 8-char ids.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func nodeIDs(nodes []graph.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
