// Package api exposes the graph editor and solver over HTTP. The server
// holds one model per process, mirroring the single-document editing flow
// of the CLI and TUI. All mutation endpoints serialize through a mutex
// since solving mutates the graph during balancing.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/optkit/flowplan/pkg/errors"
	"github.com/optkit/flowplan/pkg/graph"
	"github.com/optkit/flowplan/pkg/model"
	"github.com/optkit/flowplan/pkg/pipeline"
)

// Server serves the model editing and solve API.
type Server struct {
	mu     sync.Mutex
	store  *graph.Store
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server with an empty model.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:  graph.NewStore(),
		runner: runner,
		logger: logger,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/nodes", s.handleAddNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)
		r.Patch("/nodes/{id}", s.handleUpdateNode)

		r.Post("/edges", s.handleAddEdge)
		r.Delete("/edges/{from}/{to}", s.handleDeleteEdge)
		r.Patch("/edges/{from}/{to}", s.handleUpdateEdge)

		r.Get("/model", s.handleGetModel)
		r.Put("/model", s.handlePutModel)
		r.Delete("/model", s.handleClearModel)

		r.Post("/solve", s.handleSolve)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type addNodeRequest struct {
	Type   string  `json:"type"` // "supply" or "demand"
	Amount float64 `json:"amount"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	isSupply, err := parseNodeType(req.Type)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	id, err := s.store.AddNode(isSupply, req.Amount)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("added node", "id", id, "type", req.Type, "amount", req.Amount)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	err := s.store.DeleteNode(id)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("deleted node", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

type updateNodeRequest struct {
	NewID  *string  `json:"new_id,omitempty"`
	Supply *float64 `json:"supply,omitempty"`
	Demand *float64 `json:"demand,omitempty"`
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.NewID == nil && req.Supply == nil && req.Demand == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput,
			"nothing to update, set new_id or supply/demand"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Supply != nil || req.Demand != nil {
		var supply, demand float64
		if req.Supply != nil {
			supply = *req.Supply
		}
		if req.Demand != nil {
			demand = *req.Demand
		}
		if err := s.store.RetypeNode(id, supply, demand); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if req.NewID != nil {
		if err := s.store.RenameNode(id, *req.NewID); err != nil {
			s.writeError(w, r, err)
			return
		}
		id = *req.NewID
	}

	s.logger.Info("updated node", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

type addEdgeRequest struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Cost float64 `json:"cost"`
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req addEdgeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	err := s.store.AddEdge(req.From, req.To, req.Cost)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("added edge", "from", req.From, "to", req.To, "cost", req.Cost)
	writeJSON(w, http.StatusCreated, map[string]any{
		"from": req.From,
		"to":   req.To,
		"cost": req.Cost,
	})
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")

	s.mu.Lock()
	err := s.store.DeleteEdge(from, to)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("deleted edge", "from", from, "to", to)
	w.WriteHeader(http.StatusNoContent)
}

type updateEdgeRequest struct {
	Cost float64 `json:"cost"`
}

func (s *Server) handleUpdateEdge(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")

	var req updateEdgeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	err := s.store.UpdateEdgeCost(from, to, req.Cost)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"from": from,
		"to":   to,
		"cost": req.Cost,
	})
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	m := s.store.Snapshot()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handlePutModel(w http.ResponseWriter, r *http.Request) {
	var m graph.Model
	if err := decodeJSON(r, &m); err != nil {
		s.writeError(w, r, err)
		return
	}

	store, err := graph.FromModel(m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	s.store = store
	s.mu.Unlock()

	s.logger.Info("replaced model", "nodes", store.NodeCount(), "edges", store.EdgeCount())
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": store.NodeCount(),
		"edges": store.EdgeCount(),
	})
}

func (s *Server) handleClearModel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.store.Clear()
	s.mu.Unlock()

	s.logger.Info("cleared model")
	w.WriteHeader(http.StatusNoContent)
}

type solveRequest struct {
	Kind    string `json:"kind"`
	Refresh bool   `json:"refresh,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	// An empty body means default options.
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	kind := pipeline.DefaultKind
	if req.Kind != "" {
		parsed, err := model.ParseKind(req.Kind)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		kind = parsed
	}

	s.mu.Lock()
	result, err := s.runner.Solve(r.Context(), s.store, pipeline.Options{
		Kind:    kind,
		Refresh: req.Refresh,
	})
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// errorResponse is the JSON error body for all failures.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func parseNodeType(t string) (bool, error) {
	switch t {
	case "supply":
		return true, nil
	case "demand":
		return false, nil
	default:
		return false, errors.New(errors.ErrCodeInvalidType,
			"node type must be supply or demand, got %q", t)
	}
}
