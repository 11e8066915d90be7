// Package pkg provides the core libraries for Flowplan network-flow solving.
//
// # Overview
//
// Flowplan edits bipartite supply/demand networks and solves them as
// transportation or assignment problems. The pkg directory is organized
// around the solve pipeline:
//
//	[graph]    - Node/edge store with referential integrity
//	     ↓
//	[balance]  - Fictitious-node balancing of supply and demand
//	     ↓
//	[model]    - Linear program formulation (transportation, assignment)
//	     ↓
//	[solver]   - Simplex adapter over gonum optimize/convex/lp
//	     ↓
//	[report]   - Route listing, total cost, fictitious-use flags
//
// [pipeline] orchestrates the five stages with content-addressed caching
// backed by [cache] (file, Redis, MongoDB, or disabled). [errors] carries
// the structured error codes shared by the CLI and the HTTP API, and
// [buildinfo] holds ldflags-injected version metadata.
//
// # Quick Start
//
// Build a network and solve it:
//
//	import (
//	    "context"
//	    "github.com/optkit/flowplan/pkg/graph"
//	    "github.com/optkit/flowplan/pkg/model"
//	    "github.com/optkit/flowplan/pkg/pipeline"
//	)
//
//	s := graph.NewStore()
//	a, _ := s.AddNode(true, 20)  // supply of 20
//	b, _ := s.AddNode(false, 20) // demand of 20
//	_ = s.AddEdge(a, b, 4)       // unit cost 4
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Solve(context.Background(), s, pipeline.Options{
//	    Kind: model.Transportation,
//	})
//
// [graph]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/graph
// [balance]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/balance
// [model]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/model
// [solver]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/solver
// [report]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/report
// [pipeline]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/cache
// [errors]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/optkit/flowplan/pkg/buildinfo
package pkg
