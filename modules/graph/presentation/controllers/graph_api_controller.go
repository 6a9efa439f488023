package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
	"github.com/iota-uz/career-graph/modules/graph/services"
	"github.com/iota-uz/career-graph/pkg/middleware"
)

type GraphAPIController struct {
	ingest    *services.IngestService
	graph     *services.GraphService
	apiPrefix string
}

func NewGraphAPIController(ingest *services.IngestService, graph *services.GraphService) *GraphAPIController {
	return &GraphAPIController{
		ingest:    ingest,
		graph:     graph,
		apiPrefix: "/api/v1",
	}
}

func (c *GraphAPIController) Key() string {
	return c.apiPrefix
}

func (c *GraphAPIController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.GetHealth).Methods(http.MethodGet)

	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.HandleFunc("/roles", c.ListRoles).Methods(http.MethodGet)
	api.HandleFunc("/roles", c.UpsertRole).Methods(http.MethodPost)
	api.HandleFunc("/roles/adjacency", c.GetRoleAdjacency).Methods(http.MethodGet)
	api.HandleFunc("/roles/{id}", c.GetRole).Methods(http.MethodGet)
}

type healthResponse struct {
	Status    string               `json:"status"`
	Timestamp string               `json:"timestamp"`
	Graph     graphComponentHealth `json:"graph"`
}

type graphComponentHealth struct {
	Status  string                 `json:"status"`
	Details services.HealthDetails `json:"details"`
}

// GetHealth reports process liveness plus the graph availability state. The
// endpoint answers 200 even while degraded: the process is alive, the graph
// detail says the rest.
func (c *GraphAPIController) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, details := c.graph.Health(r.Context())

	overall := "ok"
	if status != services.StatusHealthy && status != services.StatusDisabled {
		overall = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Graph:     graphComponentHealth{Status: string(status), Details: details},
	})
}

type rolesResponse struct {
	Roles []services.RoleView `json:"roles"`
	Count int                 `json:"count"`
}

func (c *GraphAPIController) ListRoles(w http.ResponseWriter, r *http.Request) {
	requestID := resolveRequestID(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, requestID, "GRAPH_INVALID_QUERY", "limit must be an integer")
			return
		}
		limit = parsed
	}

	roles, err := c.graph.ListRoles(r.Context(), limit)
	if err != nil {
		writeGraphError(w, requestID, err)
		return
	}
	if roles == nil {
		roles = []services.RoleView{}
	}
	writeJSON(w, http.StatusOK, rolesResponse{Roles: roles, Count: len(roles)})
}

func (c *GraphAPIController) GetRole(w http.ResponseWriter, r *http.Request) {
	requestID := resolveRequestID(r)
	id := mux.Vars(r)["id"]

	role, err := c.graph.GetRole(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			writeAPIError(w, http.StatusNotFound, requestID, "GRAPH_ROLE_NOT_FOUND", "role not found")
			return
		}
		writeGraphError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

type upsertRoleRequest struct {
	ID          string            `json:"id"`
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	Source      *string           `json:"source"`
	Version     *string           `json:"version"`
}

type upsertRoleResponse struct {
	ID          string `json:"id"`
	Created     bool   `json:"created"`
	ViaFallback bool   `json:"viaFallback"`
}

func (c *GraphAPIController) UpsertRole(w http.ResponseWriter, r *http.Request) {
	requestID := resolveRequestID(r)

	var req upsertRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "GRAPH_INVALID_BODY", "invalid json body")
		return
	}

	created, viaFallback, err := c.ingest.UpsertRole(r.Context(), record.Role{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
		Source:      req.Source,
		Version:     req.Version,
	})
	if err != nil {
		var mappingErr record.MappingError
		if errors.As(err, &mappingErr) {
			writeAPIError(w, http.StatusUnprocessableEntity, requestID, "GRAPH_INVALID_ROLE", mappingErr.Reason())
			return
		}
		writeGraphError(w, requestID, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, upsertRoleResponse{ID: req.ID, Created: created, ViaFallback: viaFallback})
}

type adjacencyResponse struct {
	Roles []services.AdjacentRole `json:"roles"`
	Count int                     `json:"count"`
}

func (c *GraphAPIController) GetRoleAdjacency(w http.ResponseWriter, r *http.Request) {
	requestID := resolveRequestID(r)
	query := r.URL.Query()

	q := services.AdjacencyQuery{
		CurrentRoleID: query.Get("current_role_id"),
		TargetRoleID:  query.Get("target_role_id"),
	}
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, requestID, "GRAPH_INVALID_QUERY", "limit must be an integer")
			return
		}
		q.Limit = parsed
	}

	roles, err := c.graph.RoleAdjacency(r.Context(), q)
	if err != nil {
		writeGraphError(w, requestID, err)
		return
	}
	if roles == nil {
		roles = []services.AdjacentRole{}
	}
	writeJSON(w, http.StatusOK, adjacencyResponse{Roles: roles, Count: len(roles)})
}

func resolveRequestID(r *http.Request) string {
	if id := middleware.RequestID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeGraphError(w http.ResponseWriter, requestID string, err error) {
	var unavailable *services.GraphUnavailableError
	if errors.As(err, &unavailable) {
		writeAPIError(w, http.StatusServiceUnavailable, requestID, "GRAPH_UNAVAILABLE",
			"graph store is "+string(unavailable.Status))
		return
	}
	if errors.Is(err, services.ErrGraphUnavailable) {
		writeAPIError(w, http.StatusServiceUnavailable, requestID, "GRAPH_UNAVAILABLE", "graph store unavailable")
		return
	}
	writeAPIError(w, http.StatusInternalServerError, requestID, "GRAPH_INTERNAL", err.Error())
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func writeAPIError(w http.ResponseWriter, status int, requestID, code, message string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	writeJSON(w, status, apiError{Code: code, Message: message, Meta: meta})
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
