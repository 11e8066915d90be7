package pipeline

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/optkit/flowplan/pkg/cache"
	"github.com/optkit/flowplan/pkg/errors"
	"github.com/optkit/flowplan/pkg/graph"
	"github.com/optkit/flowplan/pkg/model"
)

// buildStore creates a store with the given supplies, demands, and a full
// cost matrix (rows indexed by supply, columns by demand).
func buildStore(t *testing.T, supplies, demands []float64, costs [][]float64) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	var sup, dem []string
	for _, amount := range supplies {
		id, err := s.AddNode(true, amount)
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		sup = append(sup, id)
	}
	for _, amount := range demands {
		id, err := s.AddNode(false, amount)
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		dem = append(dem, id)
	}
	for i, from := range sup {
		for j, to := range dem {
			if err := s.AddEdge(from, to, costs[i][j]); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
	}
	return s
}

func TestSolveTransportation(t *testing.T) {
	s := buildStore(t,
		[]float64{20, 30},
		[]float64{25, 25},
		[][]float64{{4, 6}, {5, 3}})

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Solve(context.Background(), s, Options{Kind: model.Transportation})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if math.Abs(result.Report.TotalCost-180) > 1e-9 {
		t.Errorf("TotalCost = %v, want 180", result.Report.TotalCost)
	}
	if result.Report.Kind != model.Transportation {
		t.Errorf("Kind = %v, want transportation", result.Report.Kind)
	}
	if result.Report.UsedFictitious {
		t.Error("balanced model should not use fictitious routes")
	}
	if result.Report.BalanceNote != "" {
		t.Errorf("unexpected balance note: %q", result.Report.BalanceNote)
	}
	if !strings.Contains(result.Report.Formulation, "Min Z") {
		t.Error("expected formulation text in report")
	}
	if result.Stats.Variables != 4 {
		t.Errorf("Variables = %d, want 4", result.Stats.Variables)
	}
	if result.ModelHash == "" {
		t.Error("expected a model hash")
	}
}

func TestSolveAddsFictitiousNote(t *testing.T) {
	// Demand exceeds supply by 10.
	s := buildStore(t,
		[]float64{20, 20},
		[]float64{25, 25},
		[][]float64{{4, 6}, {5, 3}})

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Solve(context.Background(), s, Options{Kind: model.Transportation})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if result.Report.BalanceNote == "" {
		t.Error("expected a balance note for unbalanced model")
	}
	if !result.Report.UsedFictitious {
		t.Error("expected fictitious routes in solution")
	}

	// Real flow still only covers the real supply.
	var realFlow float64
	for _, route := range result.Report.Routes {
		if !route.Fictitious {
			realFlow += route.Flow
		}
	}
	if math.Abs(realFlow-40) > 1e-9 {
		t.Errorf("real flow = %v, want 40", realFlow)
	}
}

func TestSolveAssignment(t *testing.T) {
	s := buildStore(t,
		[]float64{1, 1},
		[]float64{1, 1},
		[][]float64{{1, 2}, {2, 1}})

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Solve(context.Background(), s, Options{Kind: model.Assignment})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if math.Abs(result.Report.TotalCost-2) > 1e-9 {
		t.Errorf("TotalCost = %v, want 2", result.Report.TotalCost)
	}
	if len(result.Report.Routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(result.Report.Routes))
	}
	for _, route := range result.Report.Routes {
		if route.Flow != 1 {
			t.Errorf("assignment flow = %v, want 1", route.Flow)
		}
	}
}

func TestSolveCaching(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, nil)

	s := buildStore(t,
		[]float64{20, 30},
		[]float64{25, 25},
		[][]float64{{4, 6}, {5, 3}})

	first, err := runner.Solve(ctx, s, Options{Kind: model.Transportation})
	if err != nil {
		t.Fatalf("first Solve: %v", err)
	}
	if first.CacheInfo.SolveHit {
		t.Error("first solve should miss the cache")
	}

	second, err := runner.Solve(ctx, s, Options{Kind: model.Transportation})
	if err != nil {
		t.Fatalf("second Solve: %v", err)
	}
	if !second.CacheInfo.SolveHit {
		t.Error("second solve should hit the cache")
	}
	if !second.Report.Cached {
		t.Error("cached report should be marked as cached")
	}
	if second.Report.TotalCost != first.Report.TotalCost {
		t.Errorf("cached cost = %v, want %v", second.Report.TotalCost, first.Report.TotalCost)
	}
	if second.ModelHash != first.ModelHash {
		t.Error("identical model should hash identically")
	}

	// Refresh bypasses the cache.
	third, err := runner.Solve(ctx, s, Options{Kind: model.Transportation, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Solve: %v", err)
	}
	if third.CacheInfo.SolveHit {
		t.Error("refresh should not hit the cache")
	}

	// Editing the model changes the hash and misses.
	supID := s.SupplyNodes()[0].ID
	demID := s.DemandNodes()[0].ID
	if err := s.UpdateEdgeCost(supID, demID, 9); err != nil {
		t.Fatalf("UpdateEdgeCost: %v", err)
	}
	fourth, err := runner.Solve(ctx, s, Options{Kind: model.Transportation})
	if err != nil {
		t.Fatalf("fourth Solve: %v", err)
	}
	if fourth.CacheInfo.SolveHit {
		t.Error("edited model should miss the cache")
	}
	if fourth.ModelHash == first.ModelHash {
		t.Error("edited model should hash differently")
	}
}

func TestSolveKindsCachedSeparately(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, nil)

	s := buildStore(t,
		[]float64{1, 1},
		[]float64{1, 1},
		[][]float64{{1, 2}, {2, 1}})

	if _, err := runner.Solve(ctx, s, Options{Kind: model.Transportation}); err != nil {
		t.Fatalf("transportation Solve: %v", err)
	}
	asg, err := runner.Solve(ctx, s, Options{Kind: model.Assignment})
	if err != nil {
		t.Fatalf("assignment Solve: %v", err)
	}
	if asg.CacheInfo.SolveHit {
		t.Error("assignment must not reuse the transportation cache entry")
	}
}

func TestSolveEmptyGraph(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Solve(context.Background(), graph.NewStore(), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestSolveUnbalancedAssignment(t *testing.T) {
	s := buildStore(t,
		[]float64{1, 1},
		[]float64{1},
		[][]float64{{1}, {2}})

	runner := NewRunner(nil, nil, nil)
	_, err := runner.Solve(context.Background(), s, Options{Kind: model.Assignment})
	if !errors.Is(err, errors.ErrCodeUnbalancedAssignment) {
		t.Errorf("expected UNBALANCED_ASSIGNMENT, got %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Kind != model.Transportation {
		t.Errorf("default kind = %v, want transportation", opts.Kind)
	}

	bad := Options{Kind: "quadratic"}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("expected error for unknown kind")
	}
}
