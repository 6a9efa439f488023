package services

import (
	"context"
)

// GraphService is the read side: role lookups, listings and adjacency
// queries, with the same availability routing as ingestion. Roles fall back
// to the in-memory store while the graph is not healthy; adjacency queries
// have no degraded answer and are rejected instead.
type GraphService struct {
	store    GraphStore
	health   HealthChecker
	fallback RoleFallback

	defaultLimit int
	maxLimit     int
}

func NewGraphService(store GraphStore, health HealthChecker, fallback RoleFallback, defaultLimit, maxLimit int) *GraphService {
	return &GraphService{
		store:        store,
		health:       health,
		fallback:     fallback,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (s *GraphService) Status(ctx context.Context) Status {
	return s.health.Status(ctx)
}

func (s *GraphService) Health(ctx context.Context) (Status, HealthDetails) {
	return s.health.CheckHealth(ctx)
}

func (s *GraphService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// ListRoles returns up to limit roles. A non-positive limit picks the
// configured default; oversized limits are clamped, not rejected.
func (s *GraphService) ListRoles(ctx context.Context, limit int) ([]RoleView, error) {
	limit = s.clampLimit(limit)
	if s.health.Status(ctx) != StatusHealthy {
		return s.fallback.List(limit), nil
	}
	return s.store.ListRoles(ctx, limit)
}

// GetRole returns one role by exact id, or ErrRoleNotFound.
func (s *GraphService) GetRole(ctx context.Context, id string) (RoleView, error) {
	if s.health.Status(ctx) != StatusHealthy {
		if role, ok := s.fallback.Get(id); ok {
			return role, nil
		}
		return RoleView{}, ErrRoleNotFound
	}
	return s.store.GetRole(ctx, id)
}

// RoleAdjacency answers an adjacency query against the live graph. There is
// no fallback answer for adjacency, so anything short of healthy is an error.
func (s *GraphService) RoleAdjacency(ctx context.Context, q AdjacencyQuery) ([]AdjacentRole, error) {
	status := s.health.Status(ctx)
	if status != StatusHealthy {
		return nil, &GraphUnavailableError{Status: status}
	}
	q.Limit = s.clampLimit(q.Limit)
	return s.store.RoleAdjacency(ctx, q)
}
