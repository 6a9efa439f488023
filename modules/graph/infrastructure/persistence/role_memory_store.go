package persistence

import (
	"sync"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
	"github.com/iota-uz/career-graph/modules/graph/services"
)

const (
	defaultListLimit = 500
	maxListLimit     = 5000
)

// RoleMemoryStore is the process-local fallback consulted for roles while
// the graph is unavailable. It applies the same merge semantics as the graph
// upsert and returns roles in first-insertion order. Contents are lost on
// restart and never reconciled back into the graph.
type RoleMemoryStore struct {
	mu    sync.RWMutex
	order []string
	roles map[string]record.Role
}

func NewRoleMemoryStore() *RoleMemoryStore {
	return &RoleMemoryStore{roles: map[string]record.Role{}}
}

// Upsert merges a role into the store and reports whether it was new.
// Non-nil incoming fields overwrite; nil fields keep the stored value.
// Metadata merges key by key instead of being replaced wholesale.
func (s *RoleMemoryStore) Upsert(role record.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, existed := s.roles[role.ID]
	if !existed {
		s.order = append(s.order, role.ID)
		s.roles[role.ID] = cloneRole(role)
		return true
	}

	if role.Name != nil {
		stored.Name = role.Name
	}
	if role.Description != nil {
		stored.Description = role.Description
	}
	if role.Source != nil {
		stored.Source = role.Source
	}
	if role.Version != nil {
		stored.Version = role.Version
	}
	if len(role.Metadata) > 0 {
		if stored.Metadata == nil {
			stored.Metadata = map[string]string{}
		}
		for k, v := range role.Metadata {
			stored.Metadata[k] = v
		}
	}
	s.roles[role.ID] = stored
	return false
}

func (s *RoleMemoryStore) Get(id string) (services.RoleView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[id]
	if !ok {
		return services.RoleView{}, false
	}
	return roleToView(role), true
}

// List returns up to limit roles in first-insertion order. A non-positive
// limit picks the default; oversized values are clamped.
func (s *RoleMemoryStore) List(limit int) []services.RoleView {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]services.RoleView, 0, min(limit, len(s.order)))
	for _, id := range s.order {
		if len(out) == limit {
			break
		}
		out = append(out, roleToView(s.roles[id]))
	}
	return out
}

func (s *RoleMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func cloneRole(role record.Role) record.Role {
	if role.Metadata != nil {
		metadata := make(map[string]string, len(role.Metadata))
		for k, v := range role.Metadata {
			metadata[k] = v
		}
		role.Metadata = metadata
	}
	return role
}

func roleToView(role record.Role) services.RoleView {
	view := services.RoleView{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Source:      role.Source,
		Version:     role.Version,
	}
	if len(role.Metadata) > 0 {
		view.Metadata = make(map[string]string, len(role.Metadata))
		for k, v := range role.Metadata {
			view.Metadata[k] = v
		}
	}
	return view
}
