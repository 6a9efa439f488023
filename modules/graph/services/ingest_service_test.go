package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
)

type fakeStore struct {
	mu           sync.Mutex
	roles        map[string]record.Role
	competencies map[string]record.Competency
	requires     map[string]record.Requires
	adjacency    map[string]record.Adjacency

	failRoleIDs map[string]error
	// failDirected counts down: a positive value fails that many writes of
	// the given from->to direction before letting them through.
	failDirected map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:        map[string]record.Role{},
		competencies: map[string]record.Competency{},
		requires:     map[string]record.Requires{},
		adjacency:    map[string]record.Adjacency{},
		failRoleIDs:  map[string]error{},
		failDirected: map[string]int{},
	}
}

func (f *fakeStore) UpsertRole(_ context.Context, role record.Role) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failRoleIDs[role.ID]; err != nil {
		return false, err
	}
	_, existed := f.roles[role.ID]
	f.roles[role.ID] = role
	return !existed, nil
}

func (f *fakeStore) UpsertCompetency(_ context.Context, comp record.Competency) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, existed := f.competencies[comp.ID]
	f.competencies[comp.ID] = comp
	return !existed, nil
}

func (f *fakeStore) UpsertRequires(_ context.Context, req record.Requires) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := req.RoleID + "->" + req.CompetencyID
	_, existed := f.requires[key]
	f.requires[key] = req
	return !existed, nil
}

func (f *fakeStore) UpsertAdjacencyDirected(_ context.Context, from, to string, adj record.Adjacency) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := from + "->" + to
	if n := f.failDirected[key]; n > 0 {
		f.failDirected[key] = n - 1
		return false, fmt.Errorf("write %s refused", key)
	}
	_, existed := f.adjacency[key]
	f.adjacency[key] = adj
	return !existed, nil
}

func (f *fakeStore) GetRole(_ context.Context, id string) (RoleView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return RoleView{}, ErrRoleNotFound
	}
	return RoleView{ID: role.ID, Name: role.Name, Description: role.Description, Metadata: role.Metadata}, nil
}

func (f *fakeStore) ListRoles(_ context.Context, limit int) ([]RoleView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	views := make([]RoleView, 0, len(f.roles))
	for _, role := range f.roles {
		if len(views) == limit {
			break
		}
		views = append(views, RoleView{ID: role.ID, Name: role.Name})
	}
	return views, nil
}

func (f *fakeStore) RoleAdjacency(_ context.Context, q AdjacencyQuery) ([]AdjacentRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []AdjacentRole
	for key, adj := range f.adjacency {
		if !strings.HasPrefix(key, q.CurrentRoleID+"->") {
			continue
		}
		score := 0.0
		if adj.Score != nil {
			score = *adj.Score
		}
		out = append(out, AdjacentRole{ID: strings.TrimPrefix(key, q.CurrentRoleID+"->"), Score: score})
	}
	return out, nil
}

type fakeHealth struct {
	status Status
}

func (f *fakeHealth) Status(context.Context) Status { return f.status }

func (f *fakeHealth) CheckHealth(context.Context) (Status, HealthDetails) {
	return f.status, HealthDetails{Healthy: f.status == StatusHealthy, Category: string(f.status)}
}

type fakeFallback struct {
	mu    sync.Mutex
	order []string
	roles map[string]record.Role
}

func newFakeFallback() *fakeFallback {
	return &fakeFallback{roles: map[string]record.Role{}}
}

func (f *fakeFallback) Upsert(role record.Role) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, existed := f.roles[role.ID]
	if !existed {
		f.order = append(f.order, role.ID)
	}
	f.roles[role.ID] = role
	return !existed
}

func (f *fakeFallback) Get(id string) (RoleView, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return RoleView{}, false
	}
	return RoleView{ID: role.ID, Name: role.Name, Metadata: role.Metadata}, true
}

func (f *fakeFallback) List(limit int) []RoleView {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []RoleView
	for _, id := range f.order {
		if len(out) == limit {
			break
		}
		role := f.roles[id]
		out = append(out, RoleView{ID: role.ID, Name: role.Name})
	}
	return out
}

func newTestIngest(store GraphStore, status Status, fallback RoleFallback) *IngestService {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewIngestService(store, &fakeHealth{status: status}, fallback, nil, log)
}

func roleRow(id, name string) record.Fields {
	return record.Fields{"id": id, "name": name}
}

func TestIngestRoles_PartialFailure(t *testing.T) {
	store := newFakeStore()
	svc := newTestIngest(store, StatusHealthy, newFakeFallback())

	rows := []record.Fields{
		roleRow("R1", "Data Analyst"),
		{"name": "No Identifier"},
		roleRow("R2", "Data Engineer"),
	}
	rep, err := svc.IngestRoles(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Created)
	assert.Equal(t, 0, rep.Updated)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, 1, rep.Failed[0].Index)
	assert.Equal(t, "MissingRequiredField:id", rep.Failed[0].Reason)
}

func TestIngestRoles_SecondBatchUpdates(t *testing.T) {
	store := newFakeStore()
	svc := newTestIngest(store, StatusHealthy, newFakeFallback())

	rows := []record.Fields{roleRow("R1", "Data Analyst")}
	_, err := svc.IngestRoles(context.Background(), rows)
	require.NoError(t, err)

	rep, err := svc.IngestRoles(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Created)
	assert.Equal(t, 1, rep.Updated)
	assert.Empty(t, rep.Failed)
}

func TestIngestRoles_WriteFailureReportedPerRow(t *testing.T) {
	store := newFakeStore()
	store.failRoleIDs["R2"] = errors.New("deadline exceeded")
	svc := newTestIngest(store, StatusHealthy, newFakeFallback())

	rep, err := svc.IngestRoles(context.Background(), []record.Fields{
		roleRow("R1", "A"),
		roleRow("R2", "B"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Created)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, 1, rep.Failed[0].Index)
	assert.Equal(t, "StoreWriteFailure:deadline exceeded", rep.Failed[0].Reason)
}

func TestIngestRoles_FallbackWhenUnhealthy(t *testing.T) {
	store := newFakeStore()
	fallback := newFakeFallback()
	svc := newTestIngest(store, StatusUnhealthy, fallback)

	rep, err := svc.IngestRoles(context.Background(), []record.Fields{roleRow("R1", "A")})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Created)
	assert.Empty(t, store.roles, "graph must not be touched while unhealthy")

	view, ok := fallback.Get("R1")
	require.True(t, ok)
	assert.Equal(t, "R1", view.ID)
}

func TestIngestCompetencies_RejectedWhenMisconfigured(t *testing.T) {
	svc := newTestIngest(newFakeStore(), StatusMisconfigured, newFakeFallback())

	_, err := svc.IngestCompetencies(context.Background(), []record.Fields{
		{"id": "C1", "name": "SQL"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGraphUnavailable)

	var unavailable *GraphUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, StatusMisconfigured, unavailable.Status)
}

func TestIngestRequires_CreatedThenUpdated(t *testing.T) {
	store := newFakeStore()
	svc := newTestIngest(store, StatusHealthy, newFakeFallback())

	rows := []record.Fields{
		{"role_id": "R1", "competency_id": "C1", "required_level": "3"},
	}
	rep, err := svc.IngestRequires(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Created)

	rep, err = svc.IngestRequires(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Updated)
}

func adjacencyRow(a, b string, score string) record.Fields {
	return record.Fields{"role_a": a, "role_b": b, "score": score}
}

func TestIngestAdjacency_BothMirrorsCounted(t *testing.T) {
	store := newFakeStore()
	svc := newTestIngest(store, StatusHealthy, newFakeFallback())

	rows := []record.Fields{adjacencyRow("R1", "R2", "0.8")}
	rep, err := svc.IngestAdjacency(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Created)
	assert.Contains(t, store.adjacency, "R1->R2")
	assert.Contains(t, store.adjacency, "R2->R1")

	rep, err = svc.IngestAdjacency(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Created)
	assert.Equal(t, 2, rep.Updated)
}

func TestIngestAdjacency_SelfEdgeRejected(t *testing.T) {
	svc := newTestIngest(newFakeStore(), StatusHealthy, newFakeFallback())

	rep, err := svc.IngestAdjacency(context.Background(), []record.Fields{
		adjacencyRow("R1", "R1", "0.5"),
	})
	require.NoError(t, err)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, "SelfEdgeRejected", rep.Failed[0].Reason)
}

func TestIngestAdjacency_SecondMirrorRetriesOnce(t *testing.T) {
	store := newFakeStore()
	store.failDirected["R2->R1"] = 1
	svc := newTestIngest(store, StatusHealthy, newFakeFallback())

	rep, err := svc.IngestAdjacency(context.Background(), []record.Fields{
		adjacencyRow("R1", "R2", "0.8"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Created)
	assert.Empty(t, rep.Failed)
}

func TestIngestAdjacency_PartialMirrorFailure(t *testing.T) {
	store := newFakeStore()
	store.failDirected["R2->R1"] = 2
	svc := newTestIngest(store, StatusHealthy, newFakeFallback())

	rep, err := svc.IngestAdjacency(context.Background(), []record.Fields{
		adjacencyRow("R1", "R2", "0.8"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Created)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, "PartialMirrorFailure:R1<->R2", rep.Failed[0].Reason)
}

func TestUpsertRole_RoutedByAvailability(t *testing.T) {
	store := newFakeStore()
	fallback := newFakeFallback()

	healthy := newTestIngest(store, StatusHealthy, fallback)
	created, viaFallback, err := healthy.UpsertRole(context.Background(), record.Role{ID: "R1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, viaFallback)

	degraded := newTestIngest(store, StatusUnhealthy, fallback)
	created, viaFallback, err = degraded.UpsertRole(context.Background(), record.Role{ID: "R2"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, viaFallback)
}

func TestUpsertRole_EmptyID(t *testing.T) {
	svc := newTestIngest(newFakeStore(), StatusHealthy, newFakeFallback())

	_, _, err := svc.UpsertRole(context.Background(), record.Role{})
	require.Error(t, err)

	var missing *record.MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, record.FieldID, missing.Field)
}
