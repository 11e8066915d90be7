// Package solver adapts a canonical linear program to gonum's simplex
// implementation.
//
// The adapter does no optimization itself: it marshals the general-form
// program (equality rows, inequality rows, nonnegative variables) into the
// standard form lp.Simplex consumes, invokes the routine, and interprets
// its outcome. Inequality rows gain one slack variable each; the decision
// variables are already constrained to x ≥ 0, so no sign-splitting is
// needed. Linearly dependent equality rows are dropped first - the
// assignment formulation's row/column constraints are rank deficient by
// exactly one, and simplex requires a full-rank constraint matrix.
package solver

import (
	stderrors "errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/optkit/flowplan/pkg/errors"
	"github.com/optkit/flowplan/pkg/model"
)

// tol is the pivot threshold for the row-reduction pass.
const tol = 1e-10

// Result holds an optimal solution: the decision-variable values in the
// builder's enumeration order and the objective value.
type Result struct {
	Values    []float64
	Objective float64
}

// Solve invokes the simplex routine on the program. Returns INFEASIBLE
// when no feasible point exists and SOLVER_FAILURE for any other solver
// error. The store is never touched here; the adapter is side-effect-free.
func Solve(p model.LinearProgram) (Result, error) {
	nVar := p.NumVars()
	if nVar == 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "program has no variables")
	}

	keep, err := independentEqRows(p.Eq, p.EqRHS, nVar)
	if err != nil {
		return Result{}, err
	}

	nUb := len(p.Ub)
	rows := nUb + len(keep)
	cols := nVar + nUb

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for i, row := range p.Ub {
		for j, v := range row {
			a.Set(i, j, v)
		}
		a.Set(i, nVar+i, 1) // slack
		b[i] = p.UbRHS[i]
	}
	for r, idx := range keep {
		for j, v := range p.Eq[idx] {
			a.Set(nUb+r, j, v)
		}
		b[nUb+r] = p.EqRHS[idx]
	}

	c := make([]float64, cols)
	copy(c, p.Cost)

	opt, x, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		if stderrors.Is(err, lp.ErrInfeasible) {
			return Result{}, errors.Wrap(errors.ErrCodeInfeasible, err, "no feasible flow satisfies the constraints")
		}
		return Result{}, errors.Wrap(errors.ErrCodeSolverFailure, err, "simplex failed")
	}

	return Result{Values: x[:nVar], Objective: opt}, nil
}

// independentEqRows returns the indices of a maximal linearly independent
// subset of the equality rows, via Gaussian elimination on the augmented
// system. A row that reduces to zero with a nonzero right-hand side makes
// the system inconsistent.
func independentEqRows(eq [][]float64, rhs []float64, nVar int) ([]int, error) {
	var keep []int
	var reduced [][]float64 // kept rows in echelon form, rhs appended
	var pivots []int

	for i, row := range eq {
		work := make([]float64, nVar+1)
		copy(work, row)
		work[nVar] = rhs[i]

		for k, red := range reduced {
			factor := work[pivots[k]]
			if math.Abs(factor) <= tol {
				continue
			}
			for j := range work {
				work[j] -= factor * red[j]
			}
		}

		pivot := -1
		for j := 0; j < nVar; j++ {
			if math.Abs(work[j]) > tol {
				pivot = j
				break
			}
		}
		if pivot < 0 {
			if math.Abs(work[nVar]) > tol {
				return nil, errors.New(errors.ErrCodeInfeasible, "equality constraints are inconsistent")
			}
			continue // redundant row
		}

		scale := work[pivot]
		for j := range work {
			work[j] /= scale
		}
		reduced = append(reduced, work)
		pivots = append(pivots, pivot)
		keep = append(keep, i)
	}
	return keep, nil
}
