package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/optkit/flowplan/pkg/errors"
	"github.com/optkit/flowplan/pkg/graph"
	"github.com/optkit/flowplan/pkg/model"
	"github.com/optkit/flowplan/pkg/pipeline"
)

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		kindStr     string
		refresh     bool
		noCache     bool
		jsonOut     bool
		formulation bool
	)

	cmd := &cobra.Command{
		Use:   "solve [model.json]",
		Short: "Solve a transportation or assignment problem",
		Long: `Solve a transportation or assignment problem from a model file.

The model file is a JSON document with "nodes" and "edges" arrays, as
produced by 'flowplan edit' or GET /api/model. The solver balances the
network first: when total supply and demand differ, a fictitious node
covers the gap at zero cost and the affected routes are flagged.

Results are cached locally; identical models solve instantly on repeat
runs. Use --refresh to force a recompute.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(kindStr)
			if err != nil {
				return err
			}
			return c.runSolve(cmd.Context(), args[0], solveParams{
				kind:        kind,
				refresh:     refresh,
				noCache:     noCache,
				jsonOut:     jsonOut,
				formulation: formulation,
			})
		},
	}

	cmd.Flags().StringVarP(&kindStr, "kind", "k", "transportation", "problem kind: transportation (default), assignment")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the full result as JSON")
	cmd.Flags().BoolVar(&formulation, "formulation", false, "print the linear program formulation")

	return cmd
}

type solveParams struct {
	kind        model.Kind
	refresh     bool
	noCache     bool
	jsonOut     bool
	formulation bool
}

// runSolve loads the model, runs the pipeline, and prints the report.
func (c *CLI) runSolve(ctx context.Context, input string, params solveParams) error {
	store, err := loadModel(input)
	if err != nil {
		return fmt.Errorf("load model %s: %w", input, err)
	}

	runner, err := c.newRunner(params.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Solving %s problem...", params.kind))
	spinner.Start()

	result, err := runner.Solve(ctx, store, pipeline.Options{
		Kind:    params.kind,
		Refresh: params.refresh,
	})
	if err != nil {
		spinner.StopWithError("Solve failed")
		if errors.Is(err, errors.ErrCodeInfeasible) {
			printDetail("The model has no feasible flow; check amounts and edges.")
		}
		return err
	}
	spinner.Stop()

	if params.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printReport(result, params.formulation)
	return nil
}

// loadModel reads a JSON model file into a store.
func loadModel(path string) (*graph.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := graph.UnmarshalModel(data)
	if err != nil {
		return nil, err
	}
	return graph.FromModel(m)
}

// printReport renders a solve result to stdout.
func printReport(result *pipeline.Result, withFormulation bool) {
	rep := result.Report

	printSuccess("Optimal solution found")
	printStats(len(rep.Routes), result.Stats.Variables, rep.Cached)
	fmt.Println()

	if rep.BalanceNote != "" {
		printWarning("%s", rep.BalanceNote)
		fmt.Println()
	}

	if withFormulation && rep.Formulation != "" {
		fmt.Println(StyleDim.Render(rep.Formulation))
		fmt.Println()
	}

	for _, route := range rep.Routes {
		line := fmt.Sprintf("%s %s %s", StyleValue.Render(route.From), StyleDim.Render(iconArrow), StyleValue.Render(route.To))
		if rep.Kind == model.Assignment {
			line += StyleDim.Render(fmt.Sprintf("  cost %v", route.Cost))
		} else {
			line += StyleDim.Render(fmt.Sprintf("  %v units × %v = %v", route.Flow, route.UnitCost, route.Cost))
		}
		if route.Fictitious {
			line += " " + StyleWarning.Render("(fictitious)")
		}
		fmt.Println("  " + line)
	}

	fmt.Println()
	printKeyValue("Total cost", StyleHighlight.Render(fmt.Sprintf("%v", rep.TotalCost)))
}
