package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/optkit/flowplan/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(pipeline.NewRunner(nil, nil, nil), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// addNode posts a node and returns its generated id.
func addNode(t *testing.T, base, nodeType string, amount float64) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/api/nodes", map[string]any{
		"type":   nodeType,
		"amount": amount,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add node: status %d, body %v", resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("add node: no id in response")
	}
	return id
}

func addEdge(t *testing.T, base, from, to string, cost float64) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/api/edges", map[string]any{
		"from": from,
		"to":   to,
		"cost": cost,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add edge: status %d, body %v", resp.StatusCode, body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestNodeLifecycle(t *testing.T) {
	ts := newTestServer(t)

	id := addNode(t, ts.URL, "supply", 20)

	// Rename.
	resp, body := doJSON(t, http.MethodPatch, ts.URL+"/api/nodes/"+id, map[string]any{
		"new_id": "plant-a",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename: status %d, body %v", resp.StatusCode, body)
	}
	if body["id"] != "plant-a" {
		t.Errorf("renamed id = %v, want plant-a", body["id"])
	}

	// Old id is gone.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/nodes/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete old id: status %d, want 404", resp.StatusCode)
	}

	// New id deletes fine.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/nodes/plant-a", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status %d, want 204", resp.StatusCode)
	}
}

func TestAddNodeValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"BadType", map[string]any{"type": "warehouse", "amount": 5}, http.StatusBadRequest},
		{"NegativeAmount", map[string]any{"type": "supply", "amount": -5}, http.StatusBadRequest},
		{"ZeroAmount", map[string]any{"type": "demand", "amount": 0}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/nodes", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (body %v)", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestEdgeEndpoints(t *testing.T) {
	ts := newTestServer(t)
	sup := addNode(t, ts.URL, "supply", 10)
	dem := addNode(t, ts.URL, "demand", 10)

	addEdge(t, ts.URL, sup, dem, 4)

	// Duplicate conflicts.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/edges", map[string]any{
		"from": sup, "to": dem, "cost": 9,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate edge: status %d, want 409 (body %v)", resp.StatusCode, body)
	}
	if body["code"] != "DUPLICATE_EDGE" {
		t.Errorf("code = %v, want DUPLICATE_EDGE", body["code"])
	}

	// Wrong direction rejected.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/edges", map[string]any{
		"from": dem, "to": sup, "cost": 4,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("reversed edge: status %d, want 400 (body %v)", resp.StatusCode, body)
	}

	// Update cost.
	url := fmt.Sprintf("%s/api/edges/%s/%s", ts.URL, sup, dem)
	resp, _ = doJSON(t, http.MethodPatch, url, map[string]any{"cost": 7})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("update cost: status %d, want 200", resp.StatusCode)
	}

	// Delete.
	resp, _ = doJSON(t, http.MethodDelete, url, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete edge: status %d, want 204", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, url, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete missing edge: status %d, want 404", resp.StatusCode)
	}
}

func TestModelRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	sup := addNode(t, ts.URL, "supply", 20)
	dem := addNode(t, ts.URL, "demand", 20)
	addEdge(t, ts.URL, sup, dem, 4)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/model", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get model: status %d", resp.StatusCode)
	}
	nodes, _ := body["nodes"].([]any)
	edges, _ := body["edges"].([]any)
	if len(nodes) != 2 || len(edges) != 1 {
		t.Fatalf("model has %d nodes and %d edges, want 2 and 1", len(nodes), len(edges))
	}

	// Replace the whole model.
	resp, putBody := doJSON(t, http.MethodPut, ts.URL+"/api/model", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put model: status %d, body %v", resp.StatusCode, putBody)
	}

	// Clearing empties it.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/model", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear model: status %d, want 204", resp.StatusCode)
	}
	_, body = doJSON(t, http.MethodGet, ts.URL+"/api/model", nil)
	if nodes, _ := body["nodes"].([]any); len(nodes) != 0 {
		t.Errorf("cleared model still has %d nodes", len(nodes))
	}
}

func TestSolveEndpoint(t *testing.T) {
	ts := newTestServer(t)
	supA := addNode(t, ts.URL, "supply", 20)
	supB := addNode(t, ts.URL, "supply", 30)
	demC := addNode(t, ts.URL, "demand", 25)
	demD := addNode(t, ts.URL, "demand", 25)
	for _, e := range []struct {
		from, to string
		cost     float64
	}{
		{supA, demC, 4}, {supA, demD, 6},
		{supB, demC, 5}, {supB, demD, 3},
	} {
		addEdge(t, ts.URL, e.from, e.to, e.cost)
	}

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/solve", map[string]any{
		"kind": "transportation",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("solve: status %d, body %v", resp.StatusCode, body)
	}
	report, _ := body["report"].(map[string]any)
	if report == nil {
		t.Fatal("no report in solve response")
	}
	if cost, _ := report["total_cost"].(float64); cost != 180 {
		t.Errorf("total_cost = %v, want 180", cost)
	}
}

func TestSolveEmptyModel(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/solve", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("solve empty model: status %d, want 400 (body %v)", resp.StatusCode, body)
	}
	if body["code"] != "INVALID_INPUT" {
		t.Errorf("code = %v, want INVALID_INPUT", body["code"])
	}
}
