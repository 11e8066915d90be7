// Package graph implements the bipartite supply/demand store at the heart
// of Flowplan.
//
// A Store holds typed nodes and cost edges under incremental mutation. Every
// node is either a supply node (positive supply, zero demand) or a demand
// node (positive demand, zero supply); edges run strictly supply → demand
// and carry a nonnegative cost. The store enforces referential integrity:
// no edge may reference a missing node, renaming a node rewrites all
// referencing edges, and deleting a node removes its incident edges.
//
// Nodes are either real (created through AddNode) or fictitious
// (synthesized by the balance package to absorb a supply/demand imbalance).
// Fictitious nodes cannot be retyped and are discarded wholesale before
// each balancing pass.
//
// Enumeration order matters: SupplyNodes and DemandNodes return nodes in
// insertion order, and the model and report packages rely on that order
// being identical between building the cost vector and mapping the solution
// back onto edges.
//
// All mutations are atomic - an operation either fully succeeds or leaves
// the store unchanged - and return structured errors from pkg/errors so the
// CLI and API can surface them as user-facing messages.
//
// The Model type is the serialization format for the store, used by the
// HTTP API payloads, the CLI input file, and cache keys. It carries only
// semantic data; presentation state (positions, highlighting) lives outside
// this package, keyed by node and edge identity.
//
// Store is not safe for concurrent use without external synchronization.
package graph
