package persistence

import (
	"context"
	"encoding/json"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
	"github.com/iota-uz/career-graph/modules/graph/services"
)

// GraphRepository implements the graph store against Neo4j. All writes are
// MERGE-based COALESCE upserts: a null parameter leaves the stored property
// untouched, a non-null one overwrites it. Each upsert reports whether the
// node or relationship was created by this call, via a transient marker
// property set in the ON CREATE branch and removed in the same statement.
type GraphRepository struct {
	client *GraphClient
}

func NewGraphRepository(client *GraphClient) *GraphRepository {
	return &GraphRepository{client: client}
}

func (r *GraphRepository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.client.Driver().NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: r.client.opts.Database,
	})
}

// runCreatedWrite executes a single-record write statement returning a
// "created" boolean column.
func (r *GraphRepository) runCreatedWrite(ctx context.Context, cypher string, params map[string]any) (bool, error) {
	if r.client.Driver() == nil {
		return false, services.ErrGraphUnavailable
	}
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return false, err
	}
	rec, err := result.Single(ctx)
	if err != nil {
		return false, err
	}
	created, _ := rec.Get("created")
	flag, ok := created.(bool)
	if !ok {
		return false, errors.Errorf("created column has unexpected type %T", created)
	}
	return flag, nil
}

// nullable turns an optional field into a driver parameter, nil meaning
// "leave the stored value alone".
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// metadataParam flattens the free-form metadata map into a JSON string
// property. Neo4j properties cannot hold maps, so the map is stored as text
// and decoded on the way out.
func metadataParam(m map[string]string) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "encode metadata")
	}
	return string(raw), nil
}

const upsertRoleCypher = `
MERGE (r:Role {id: $id})
ON CREATE SET r.creating = true
WITH r, coalesce(r.creating, false) AS created
REMOVE r.creating
SET r.name = COALESCE($name, r.name),
    r.description = COALESCE($description, r.description),
    r.metadata = COALESCE($metadata, r.metadata),
    r.source = COALESCE($source, r.source),
    r.version = COALESCE($version, r.version),
    r.updatedAt = timestamp()
RETURN created`

func (r *GraphRepository) UpsertRole(ctx context.Context, role record.Role) (bool, error) {
	metadata, err := metadataParam(role.Metadata)
	if err != nil {
		return false, err
	}
	created, err := r.runCreatedWrite(ctx, upsertRoleCypher, map[string]any{
		"id":          role.ID,
		"name":        nullable(role.Name),
		"description": nullable(role.Description),
		"metadata":    metadata,
		"source":      nullable(role.Source),
		"version":     nullable(role.Version),
	})
	return created, errors.Wrapf(err, "upsert role %s", role.ID)
}

const upsertCompetencyCypher = `
MERGE (c:Competency {id: $id})
ON CREATE SET c.creating = true
WITH c, coalesce(c.creating, false) AS created
REMOVE c.creating
SET c.name = COALESCE($name, c.name),
    c.definition = COALESCE($definition, c.definition),
    c.source = COALESCE($source, c.source),
    c.version = COALESCE($version, c.version),
    c.updatedAt = timestamp()
RETURN created`

func (r *GraphRepository) UpsertCompetency(ctx context.Context, comp record.Competency) (bool, error) {
	created, err := r.runCreatedWrite(ctx, upsertCompetencyCypher, map[string]any{
		"id":         comp.ID,
		"name":       nullable(comp.Name),
		"definition": nullable(comp.Definition),
		"source":     nullable(comp.Source),
		"version":    nullable(comp.Version),
	})
	return created, errors.Wrapf(err, "upsert competency %s", comp.ID)
}

// Endpoints are merged too: a requires edge may arrive before its role or
// competency batch and must not fail, the stub nodes get their properties
// filled in by a later upsert.
const upsertRequiresCypher = `
MERGE (r:Role {id: $role_id})
MERGE (c:Competency {id: $competency_id})
MERGE (r)-[rel:REQUIRES]->(c)
ON CREATE SET rel.creating = true
WITH rel, coalesce(rel.creating, false) AS created
REMOVE rel.creating
SET rel.requiredLevel = COALESCE($required_level, rel.requiredLevel),
    rel.version = COALESCE($version, rel.version),
    rel.source = COALESCE($source, rel.source),
    rel.validFrom = COALESCE($valid_from, rel.validFrom),
    rel.validTo = COALESCE($valid_to, rel.validTo),
    rel.updatedAt = timestamp()
RETURN created`

func (r *GraphRepository) UpsertRequires(ctx context.Context, req record.Requires) (bool, error) {
	created, err := r.runCreatedWrite(ctx, upsertRequiresCypher, map[string]any{
		"role_id":        req.RoleID,
		"competency_id":  req.CompetencyID,
		"required_level": nullable(req.RequiredLevel),
		"version":        nullable(req.Version),
		"source":         nullable(req.Source),
		"valid_from":     nullable(req.ValidFrom),
		"valid_to":       nullable(req.ValidTo),
	})
	return created, errors.Wrapf(err, "upsert requires %s->%s", req.RoleID, req.CompetencyID)
}

const upsertAdjacencyCypher = `
MERGE (a:Role {id: $from})
MERGE (b:Role {id: $to})
MERGE (a)-[adj:ADJACENT_TO]->(b)
ON CREATE SET adj.creating = true
WITH adj, coalesce(adj.creating, false) AS created
REMOVE adj.creating
SET adj.score = COALESCE($score, adj.score),
    adj.rationale = COALESCE($rationale, adj.rationale),
    adj.version = COALESCE($version, adj.version),
    adj.source = COALESCE($source, adj.source),
    adj.updatedAt = timestamp()
RETURN created`

// UpsertAdjacencyDirected writes one direction of a mirrored pair. Both
// mirrors carry the same properties; the ingest engine is responsible for
// calling this twice per logical adjacency.
func (r *GraphRepository) UpsertAdjacencyDirected(ctx context.Context, from, to string, adj record.Adjacency) (bool, error) {
	created, err := r.runCreatedWrite(ctx, upsertAdjacencyCypher, map[string]any{
		"from":      from,
		"to":        to,
		"score":     nullableFloat(adj.Score),
		"rationale": nullable(adj.Rationale),
		"version":   nullable(adj.Version),
		"source":    nullable(adj.Source),
	})
	return created, errors.Wrapf(err, "upsert adjacency %s->%s", from, to)
}

const getRoleCypher = `
MATCH (r:Role {id: $id})
RETURN r.id AS id,
       r.name AS name,
       r.description AS description,
       r.metadata AS metadata,
       r.source AS source,
       r.version AS version`

func (r *GraphRepository) GetRole(ctx context.Context, id string) (services.RoleView, error) {
	if r.client.Driver() == nil {
		return services.RoleView{}, services.ErrGraphUnavailable
	}
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, getRoleCypher, map[string]any{"id": id})
	if err != nil {
		return services.RoleView{}, errors.Wrapf(err, "get role %s", id)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return services.RoleView{}, errors.Wrapf(err, "get role %s", id)
		}
		return services.RoleView{}, services.ErrRoleNotFound
	}
	return roleViewFromRecord(result.Record())
}

const listRolesCypher = `
MATCH (r:Role)
RETURN r.id AS id,
       r.name AS name,
       r.description AS description,
       r.metadata AS metadata,
       r.source AS source,
       r.version AS version
ORDER BY r.id
LIMIT $limit`

func (r *GraphRepository) ListRoles(ctx context.Context, limit int) ([]services.RoleView, error) {
	if r.client.Driver() == nil {
		return nil, services.ErrGraphUnavailable
	}
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, listRolesCypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, errors.Wrap(err, "list roles")
	}

	var views []services.RoleView
	for result.Next(ctx) {
		view, err := roleViewFromRecord(result.Record())
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	if err := result.Err(); err != nil {
		return nil, errors.Wrap(err, "list roles")
	}
	return views, nil
}

// Adjacency suggestions. With a target role, suggestions that also lead to
// the target via a second hop rank higher; without a current role the query
// falls back to the globally best-connected roles.
const adjacencyTowardTargetCypher = `
MATCH (cur:Role {id: $current_role_id})-[adj1:ADJACENT_TO]->(sug:Role)
OPTIONAL MATCH (sug)-[adj2:ADJACENT_TO]->(tgt:Role {id: $target_role_id})
WITH sug, adj1, adj2
RETURN sug.id AS id,
       sug.name AS name,
       sug.description AS description,
       COALESCE(adj1.score, 0) + COALESCE(adj2.score, 0) AS score,
       COALESCE(adj1.rationale, '') + CASE WHEN adj2 IS NULL OR adj2.rationale IS NULL THEN '' ELSE ' | ' + adj2.rationale END AS rationale
ORDER BY score DESC
LIMIT $limit`

const adjacencyFromCurrentCypher = `
MATCH (cur:Role {id: $current_role_id})-[adj:ADJACENT_TO]->(sug:Role)
RETURN sug.id AS id,
       sug.name AS name,
       sug.description AS description,
       COALESCE(adj.score, 0) AS score,
       COALESCE(adj.rationale, '') AS rationale
ORDER BY score DESC
LIMIT $limit`

const adjacencyByDegreeCypher = `
MATCH (a:Role)-[adj:ADJACENT_TO]->(b:Role)
WITH b, sum(COALESCE(adj.score, 0)) AS s
RETURN b.id AS id, b.name AS name, b.description AS description, s AS score, '' AS rationale
ORDER BY s DESC
LIMIT $limit`

func (r *GraphRepository) RoleAdjacency(ctx context.Context, q services.AdjacencyQuery) ([]services.AdjacentRole, error) {
	if r.client.Driver() == nil {
		return nil, services.ErrGraphUnavailable
	}

	var cypher string
	params := map[string]any{"limit": q.Limit}
	switch {
	case q.CurrentRoleID != "" && q.TargetRoleID != "":
		cypher = adjacencyTowardTargetCypher
		params["current_role_id"] = q.CurrentRoleID
		params["target_role_id"] = q.TargetRoleID
	case q.CurrentRoleID != "":
		cypher = adjacencyFromCurrentCypher
		params["current_role_id"] = q.CurrentRoleID
	default:
		cypher = adjacencyByDegreeCypher
	}

	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, errors.Wrap(err, "role adjacency")
	}

	var out []services.AdjacentRole
	for result.Next(ctx) {
		rec := result.Record()
		adjacent := services.AdjacentRole{
			ID:          stringColumn(rec, "id"),
			Name:        stringPtrColumn(rec, "name"),
			Description: stringPtrColumn(rec, "description"),
			Rationale:   stringColumn(rec, "rationale"),
		}
		if v, ok := rec.Get("score"); ok {
			switch n := v.(type) {
			case float64:
				adjacent.Score = n
			case int64:
				adjacent.Score = float64(n)
			}
		}
		out = append(out, adjacent)
	}
	if err := result.Err(); err != nil {
		return nil, errors.Wrap(err, "role adjacency")
	}
	return out, nil
}

func roleViewFromRecord(rec *neo4j.Record) (services.RoleView, error) {
	view := services.RoleView{
		ID:          stringColumn(rec, "id"),
		Name:        stringPtrColumn(rec, "name"),
		Description: stringPtrColumn(rec, "description"),
		Source:      stringPtrColumn(rec, "source"),
		Version:     stringPtrColumn(rec, "version"),
	}
	if raw, ok := rec.Get("metadata"); ok {
		if encoded, ok := raw.(string); ok && encoded != "" {
			if err := json.Unmarshal([]byte(encoded), &view.Metadata); err != nil {
				return view, errors.Wrapf(err, "decode metadata for role %s", view.ID)
			}
		}
	}
	return view, nil
}

func stringColumn(rec *neo4j.Record, key string) string {
	if v, ok := rec.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func stringPtrColumn(rec *neo4j.Record, key string) *string {
	if v, ok := rec.Get(key); ok {
		if s, ok := v.(string); ok {
			return &s
		}
	}
	return nil
}
