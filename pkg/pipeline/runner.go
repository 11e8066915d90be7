package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/optkit/flowplan/pkg/balance"
	"github.com/optkit/flowplan/pkg/cache"
	"github.com/optkit/flowplan/pkg/graph"
	"github.com/optkit/flowplan/pkg/model"
	"github.com/optkit/flowplan/pkg/report"
	"github.com/optkit/flowplan/pkg/solver"
)

// Runner encapsulates solve execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store solve results. Callers must serialize access to a shared Store
// themselves, since balancing mutates the graph.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close releases the runner's cache resources.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Solve runs the complete balance → build → solve → map pipeline with
// caching. Balancing mutates the store: for transportation it regenerates
// the fictitious node, for assignment it strips any fictitious leftovers.
func (r *Runner) Solve(ctx context.Context, s *graph.Store, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	if err := precheck(len(s.SupplyNodes()), len(s.DemandNodes())); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Balance
	balanceStart := time.Now()
	var outcome balance.Outcome
	if opts.Kind == model.Transportation {
		var err error
		outcome, err = balance.Balance(s)
		if err != nil {
			return nil, err
		}
	} else {
		// Assignment never uses fictitious nodes; drop any left over
		// from an earlier transportation balance.
		s.RemoveFictitious()
	}
	result.Stats.BalanceTime = time.Since(balanceStart)

	// The cache key hashes the post-balance model, so any edit to the
	// graph lands on a different key.
	data, err := graph.MarshalModel(s.Snapshot())
	if err != nil {
		return nil, err
	}
	result.ModelHash = cache.Hash(data)
	cacheKey := r.Keyer.SolveKey(result.ModelHash, string(opts.Kind))

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var rep report.Report
			if err := json.Unmarshal(cached, &rep); err == nil {
				rep.Cached = true
				result.Report = rep
				result.CacheInfo.SolveHit = true
				logger.Info("served solve from cache",
					"kind", opts.Kind,
					"hash", result.ModelHash[:8])
				return result, nil
			}
			// Corrupt entry, fall through and recompute.
		}
	}

	// Stage 2: Build
	buildStart := time.Now()
	var (
		prog model.LinearProgram
		ord  model.Ordering
	)
	switch opts.Kind {
	case model.Assignment:
		prog, ord, err = model.BuildAssignment(s)
	default:
		prog, ord, err = model.BuildTransportation(s)
	}
	if err != nil {
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Variables = prog.NumVars()
	result.Stats.Constraints = len(prog.Eq) + len(prog.Ub)

	logger.Info("built linear program",
		"kind", opts.Kind,
		"variables", result.Stats.Variables,
		"constraints", result.Stats.Constraints)

	// Stage 3: Solve
	solveStart := time.Now()
	sol, err := solver.Solve(prog)
	if err != nil {
		return nil, err
	}
	result.Stats.SolveTime = time.Since(solveStart)

	logger.Info("solved linear program",
		"objective", sol.Objective,
		"duration", result.Stats.SolveTime)

	// Stage 4: Map
	rep, err := report.MapResult(s, ord, opts.Kind, sol.Values)
	if err != nil {
		return nil, err
	}
	rep.Formulation = model.Formulation(prog, ord, opts.Kind)
	if outcome.Kind != balance.AlreadyBalanced {
		rep.BalanceNote = outcome.String()
	}
	result.Report = rep

	if encoded, err := json.Marshal(rep); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, encoded, cache.TTLReport)
	}

	return result, nil
}
