// Package model translates a balanced store into the canonical linear
// program consumed by the solver package.
//
// Both problem kinds share one variable-enumeration convention: variable
// x_{i,j}, flattened to index i*n+j, is the flow (or assignment) from the
// i-th supply node to the j-th demand node, where i and j follow the
// store's insertion order at build time. The Ordering returned alongside
// the program records that enumeration so the report package can map the
// solution vector back onto edges.
//
// The transportation builder requires a dense cost matrix: every
// supply/demand pair must have an explicit edge, which is why balancing
// runs first and fully connects fictitious nodes to their counterparts. A
// missing pair aborts with MISSING_EDGE before any solver work.
//
// The assignment builder additionally requires equal supply and demand
// node counts and normalizes every node amount to exactly one; its
// constraint matrix is the row/column incidence structure of a bipartite
// graph, which is totally unimodular - the LP relaxation over [0,1] has an
// integral optimum, so the mapper only rounds and never re-solves.
package model
