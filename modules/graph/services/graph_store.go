package services

import (
	"context"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
)

// Status is the operational state of the graph backing store as seen by this
// process. It is recomputed on every health query and never cached here.
type Status string

const (
	StatusDisabled      Status = "disabled"
	StatusMisconfigured Status = "misconfigured"
	StatusUnhealthy     Status = "unhealthy"
	StatusHealthy       Status = "healthy"
)

// HealthDetails carries the probe outcome behind a Status, shaped for the
// health endpoint.
type HealthDetails struct {
	Healthy  bool   `json:"healthy"`
	Category string `json:"category"` // ok|disabled|misconfigured|auth|network|timeout|other
	Message  string `json:"message,omitempty"`
	Hint     string `json:"hint,omitempty"`
	Code     string `json:"code,omitempty"`
}

// HealthChecker is the availability source of truth consulted by both the
// ingest and read paths.
type HealthChecker interface {
	Status(ctx context.Context) Status
	CheckHealth(ctx context.Context) (Status, HealthDetails)
}

// RoleView is a stored role as returned by reads, regardless of whether it
// came from the graph or the fallback store.
type RoleView struct {
	ID          string            `json:"id"`
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Source      *string           `json:"source,omitempty"`
	Version     *string           `json:"version,omitempty"`
}

// AdjacencyQuery selects adjacent role suggestions. TargetRoleID biases
// results toward roles that also lead to the target via a second hop.
type AdjacencyQuery struct {
	CurrentRoleID string
	TargetRoleID  string
	Limit         int
}

// AdjacentRole is one suggestion from the adjacency read path.
type AdjacentRole struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Score       float64 `json:"score"`
	Rationale   string  `json:"rationale,omitempty"`
}

// GraphStore is the write/read surface of the property graph. Upserts are
// idempotent merges: non-nil record fields overwrite, nil fields leave stored
// values untouched. The created return is true when the node or edge did not
// exist before the call.
type GraphStore interface {
	UpsertRole(ctx context.Context, role record.Role) (created bool, err error)
	UpsertCompetency(ctx context.Context, comp record.Competency) (created bool, err error)
	UpsertRequires(ctx context.Context, req record.Requires) (created bool, err error)
	// UpsertAdjacencyDirected writes one physical direction of a mirrored
	// adjacency pair. Pairing the two directions is the ingest engine's job.
	UpsertAdjacencyDirected(ctx context.Context, from, to string, adj record.Adjacency) (created bool, err error)

	GetRole(ctx context.Context, id string) (RoleView, error)
	ListRoles(ctx context.Context, limit int) ([]RoleView, error)
	RoleAdjacency(ctx context.Context, q AdjacencyQuery) ([]AdjacentRole, error)
}

// RoleFallback is the process-local substitute consulted for roles while the
// graph is not healthy. It holds nothing but roles and is never reconciled
// back into the graph.
type RoleFallback interface {
	Upsert(role record.Role) (created bool)
	Get(id string) (RoleView, bool)
	List(limit int) []RoleView
}
