// Package report reshapes a flat solver solution into the route listing
// handed to the presentation layer.
//
// The mapper reads the same ordering the model builder used, so cell (i,j)
// of the reshaped matrix corresponds to variable i*n+j of the cost vector.
// Transportation reports every strictly positive flow; assignment rounds
// each cell to {0,1} (the relaxation is integral at the optimum, so
// rounding only removes float noise) and reports the cells equal to one.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/optkit/flowplan/pkg/errors"
	"github.com/optkit/flowplan/pkg/graph"
	"github.com/optkit/flowplan/pkg/model"
)

// Route is one used edge in the solution.
type Route struct {
	From       string  `json:"from" bson:"from"`
	To         string  `json:"to" bson:"to"`
	Flow       float64 `json:"flow" bson:"flow"`             // Units shipped; 1 for assignment
	UnitCost   float64 `json:"unit_cost" bson:"unit_cost"`   // Edge cost
	Cost       float64 `json:"cost" bson:"cost"`             // Flow * UnitCost
	Fictitious bool    `json:"fictitious,omitempty" bson:"fictitious,omitempty"`
}

// Report is the solve result consumed by the CLI, TUI, and API.
type Report struct {
	Kind           model.Kind `json:"kind" bson:"kind"`
	Routes         []Route    `json:"routes" bson:"routes"`
	TotalCost      float64    `json:"total_cost" bson:"total_cost"`
	UsedFictitious bool       `json:"used_fictitious,omitempty" bson:"used_fictitious,omitempty"`
	Formulation    string     `json:"formulation,omitempty" bson:"formulation,omitempty"`
	BalanceNote    string     `json:"balance_note,omitempty" bson:"balance_note,omitempty"`
	Cached         bool       `json:"cached,omitempty" bson:"-"`
}

// MapResult reshapes the flat solution vector onto graph edges and
// computes the total cost. The ordering must be the one the program was
// built with.
func MapResult(s *graph.Store, ord model.Ordering, kind model.Kind, values []float64) (Report, error) {
	m, n := len(ord.Supply), len(ord.Demand)
	if len(values) != m*n {
		return Report{}, errors.New(errors.ErrCodeInternal,
			"solution has %d values, expected %d", len(values), m*n)
	}

	rep := Report{Kind: kind}
	for i, fromID := range ord.Supply {
		for j, toID := range ord.Demand {
			qty := values[i*n+j]
			if kind == model.Assignment {
				qty = math.Round(qty)
				if qty != 1 {
					continue
				}
			} else if qty <= 0 {
				// Exact zero is not a used route.
				continue
			}

			e, ok := s.FindEdge(fromID, toID)
			if !ok {
				return Report{}, errors.New(errors.ErrCodeInternal,
					"solution uses missing edge %s → %s", fromID, toID)
			}
			from, _ := s.Node(fromID)
			to, _ := s.Node(toID)
			route := Route{
				From:       fromID,
				To:         toID,
				Flow:       qty,
				UnitCost:   e.Cost,
				Cost:       qty * e.Cost,
				Fictitious: from.Fictitious || to.Fictitious,
			}
			rep.Routes = append(rep.Routes, route)
			rep.TotalCost += route.Cost
			if route.Fictitious {
				rep.UsedFictitious = true
			}
		}
	}
	return rep, nil
}

// Render formats the report as plain text for terminal display.
func (r Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Optimal solution (%s):\n", r.Kind)
	for _, rt := range r.Routes {
		if r.Kind == model.Assignment {
			fmt.Fprintf(&b, "  %s → %s: cost %v\n", rt.From, rt.To, rt.Cost)
			continue
		}
		fmt.Fprintf(&b, "  %s → %s: %v units, cost %v\n", rt.From, rt.To, rt.Flow, rt.Cost)
	}
	fmt.Fprintf(&b, "Total cost: %v\n", r.TotalCost)
	if r.UsedFictitious {
		b.WriteString("Note: fictitious nodes carry flow; the original model was unbalanced.\n")
	}
	return b.String()
}
