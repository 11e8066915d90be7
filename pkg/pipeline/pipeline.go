// Package pipeline provides the complete balance → build → solve → map
// pipeline used by the CLI, TUI, and API. Centralizing this logic keeps the
// entry points consistent: every caller balances the same way, hashes the
// same serialized model for cache keys, and gets back the same report shape.
//
// # Usage
//
// Create a Runner and solve a graph:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Solve(ctx, store, pipeline.Options{
//	    Kind: model.Transportation,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.Render())
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/optkit/flowplan/pkg/errors"
	"github.com/optkit/flowplan/pkg/model"
	"github.com/optkit/flowplan/pkg/report"
)

// DefaultKind is the problem kind assumed when none is given.
const DefaultKind = model.Transportation

// Options configures a solve.
type Options struct {
	// Kind selects the problem interpretation of the graph.
	Kind model.Kind

	// Refresh bypasses the cache and recomputes the solution.
	Refresh bool

	// Logger overrides the runner's logger for this solve.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Kind == "" {
		o.Kind = DefaultKind
	}
	if _, err := model.ParseKind(string(o.Kind)); err != nil {
		return err
	}
	return nil
}

// Stats holds timing and size information for a solve.
type Stats struct {
	BalanceTime time.Duration `json:"balance_time"`
	BuildTime   time.Duration `json:"build_time"`
	SolveTime   time.Duration `json:"solve_time"`
	Variables   int           `json:"variables"`
	Constraints int           `json:"constraints"`
}

// CacheInfo reports whether the solve was served from cache.
type CacheInfo struct {
	SolveHit bool `json:"solve_hit"`
}

// Result is the outcome of a pipeline run.
type Result struct {
	Report    report.Report `json:"report"`
	ModelHash string        `json:"model_hash"`
	Stats     Stats         `json:"stats"`
	CacheInfo CacheInfo     `json:"cache_info"`
}

// precheck verifies the graph has something to solve before any work is done.
func precheck(supplies, demands int) error {
	if supplies == 0 || demands == 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"need at least one supply and one demand node, have %d supply and %d demand",
			supplies, demands)
	}
	return nil
}
