package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
	"github.com/iota-uz/career-graph/pkg/eventbus"
	"github.com/iota-uz/career-graph/pkg/metrics"
)

// Report is the outcome of one ingestion batch. A batch never aborts on a bad
// row: mapping and write failures are collected per item and the rest of the
// batch proceeds.
type Report struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  []ItemFailure `json:"failed"`
}

type ItemFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (r *Report) fail(index int, reason string) {
	r.Failed = append(r.Failed, ItemFailure{Index: index, Reason: reason})
}

// BatchIngested is published on the event bus after every batch.
type BatchIngested struct {
	Kind   record.Kind
	Target string // "graph" or "fallback"
	Report Report
}

const (
	targetGraph    = "graph"
	targetFallback = "fallback"
)

// IngestService is the upsert engine: it maps raw rows to canonical records
// and applies idempotent merge writes against the graph store, or routes Role
// writes to the fallback store while the graph is not healthy.
type IngestService struct {
	store    GraphStore
	health   HealthChecker
	fallback RoleFallback
	bus      eventbus.EventBus
	log      *logrus.Logger
}

func NewIngestService(
	store GraphStore,
	health HealthChecker,
	fallback RoleFallback,
	bus eventbus.EventBus,
	log *logrus.Logger,
) *IngestService {
	return &IngestService{
		store:    store,
		health:   health,
		fallback: fallback,
		bus:      bus,
		log:      log,
	}
}

type reasoner interface {
	Reason() string
}

// failureReason renders an error as the compact reason string carried in
// batch reports.
func failureReason(err error) string {
	if r, ok := err.(reasoner); ok {
		return r.Reason()
	}
	return "StoreWriteFailure:" + err.Error()
}

// IngestRoles applies one batch of role rows. Roles are the only kind with a
// degraded path: while the graph is not healthy they land in the in-memory
// fallback store instead of being rejected.
func (s *IngestService) IngestRoles(ctx context.Context, rows []record.Fields) (Report, error) {
	status := s.health.Status(ctx)
	target := targetGraph
	if status != StatusHealthy {
		target = targetFallback
	}

	var rep Report
	for i, row := range rows {
		role, err := record.MapRole(row)
		if err != nil {
			rep.fail(i, failureReason(err))
			continue
		}
		if target == targetFallback {
			if s.fallback.Upsert(role) {
				rep.Created++
			} else {
				rep.Updated++
			}
			continue
		}
		created, err := s.store.UpsertRole(ctx, role)
		if err != nil {
			rep.fail(i, failureReason(err))
			continue
		}
		rep.count(created)
	}

	s.finish(record.KindRole, target, rep)
	return rep, nil
}

// IngestCompetencies applies one batch of competency rows. Competencies have
// no fallback: writes are rejected outright while the graph is not healthy.
func (s *IngestService) IngestCompetencies(ctx context.Context, rows []record.Fields) (Report, error) {
	status := s.health.Status(ctx)
	if status != StatusHealthy {
		return Report{}, &GraphUnavailableError{Status: status}
	}

	var rep Report
	for i, row := range rows {
		comp, err := record.MapCompetency(row)
		if err != nil {
			rep.fail(i, failureReason(err))
			continue
		}
		created, err := s.store.UpsertCompetency(ctx, comp)
		if err != nil {
			rep.fail(i, failureReason(err))
			continue
		}
		rep.count(created)
	}

	s.finish(record.KindCompetency, targetGraph, rep)
	return rep, nil
}

// IngestRequires applies one batch of REQUIRES edge rows. Missing endpoints
// are created as stub nodes by the store; an edge write never fails for a
// missing endpoint.
func (s *IngestService) IngestRequires(ctx context.Context, rows []record.Fields) (Report, error) {
	status := s.health.Status(ctx)
	if status != StatusHealthy {
		return Report{}, &GraphUnavailableError{Status: status}
	}

	var rep Report
	for i, row := range rows {
		req, err := record.MapRequires(row)
		if err != nil {
			rep.fail(i, failureReason(err))
			continue
		}
		created, err := s.store.UpsertRequires(ctx, req)
		if err != nil {
			rep.fail(i, failureReason(err))
			continue
		}
		rep.count(created)
	}

	s.finish(record.KindRequires, targetGraph, rep)
	return rep, nil
}

// IngestAdjacency applies one batch of adjacency rows. Each row is written as
// two directed mirrors inside one logical operation: either both directions
// land (each counted separately) or the row is reported as a whole failure.
func (s *IngestService) IngestAdjacency(ctx context.Context, rows []record.Fields) (Report, error) {
	status := s.health.Status(ctx)
	if status != StatusHealthy {
		return Report{}, &GraphUnavailableError{Status: status}
	}

	var rep Report
	for i, row := range rows {
		adj, err := record.MapAdjacency(row)
		if err != nil {
			rep.fail(i, failureReason(err))
			continue
		}
		createdAB, createdBA, err := s.upsertMirroredPair(ctx, adj)
		if err != nil {
			rep.fail(i, failureReason(err))
			continue
		}
		rep.count(createdAB)
		rep.count(createdBA)
	}

	s.finish(record.KindAdjacency, targetGraph, rep)
	return rep, nil
}

// upsertMirroredPair writes both directions of one adjacency. A failure of
// the second direction gets one retry; if it still fails the pair is reported
// as a PartialMirrorError rather than left half-applied silently.
func (s *IngestService) upsertMirroredPair(ctx context.Context, adj record.Adjacency) (createdAB, createdBA bool, err error) {
	createdAB, err = s.store.UpsertAdjacencyDirected(ctx, adj.RoleA, adj.RoleB, adj)
	if err != nil {
		return false, false, err
	}
	createdBA, err = s.store.UpsertAdjacencyDirected(ctx, adj.RoleB, adj.RoleA, adj)
	if err != nil {
		createdBA, err = s.store.UpsertAdjacencyDirected(ctx, adj.RoleB, adj.RoleA, adj)
		if err != nil {
			return false, false, &PartialMirrorError{RoleA: adj.RoleA, RoleB: adj.RoleB, Cause: err}
		}
	}
	return createdAB, createdBA, nil
}

// UpsertRole applies a single already-canonical role, routed by availability
// exactly like a batch of one. Used by the role write endpoint.
func (s *IngestService) UpsertRole(ctx context.Context, role record.Role) (created bool, viaFallback bool, err error) {
	if role.ID == "" {
		return false, false, &record.MissingRequiredFieldError{Field: record.FieldID}
	}
	if s.health.Status(ctx) != StatusHealthy {
		return s.fallback.Upsert(role), true, nil
	}
	created, err = s.store.UpsertRole(ctx, role)
	return created, false, err
}

func (r *Report) count(created bool) {
	if created {
		r.Created++
	} else {
		r.Updated++
	}
}

func (s *IngestService) finish(kind record.Kind, target string, rep Report) {
	metrics.UpsertsCreated.WithLabelValues(string(kind)).Add(float64(rep.Created))
	metrics.UpsertsUpdated.WithLabelValues(string(kind)).Add(float64(rep.Updated))
	metrics.UpsertsFailed.WithLabelValues(string(kind)).Add(float64(len(rep.Failed)))

	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"kind":    kind,
			"target":  target,
			"created": rep.Created,
			"updated": rep.Updated,
			"failed":  len(rep.Failed),
		}).Info("ingestion batch finished")
	}
	if s.bus != nil {
		s.bus.Publish(&BatchIngested{Kind: kind, Target: target, Report: rep})
	}
}
