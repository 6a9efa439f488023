package record

import (
	"strconv"
	"strings"
	"time"
)

// absent reports whether a raw cell value should be treated as no value at
// all. Empty strings and the literals "null"/"none" never reach the store.
func absent(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	switch strings.ToLower(v) {
	case "null", "none":
		return true
	}
	return false
}

// scan resolves a raw row against the canonical column table of the given
// kind. Unrecognized columns land in extras with their trimmed original
// header; absent values are dropped entirely.
func scan(kind Kind, fields Fields) (canonical map[string]string, extras map[string]string) {
	canonical = make(map[string]string, len(fields))
	extras = make(map[string]string)
	for header, value := range fields {
		if absent(value) {
			continue
		}
		field, ok := CanonicalColumn(kind, header)
		if !ok {
			extras[strings.TrimSpace(header)] = strings.TrimSpace(value)
			continue
		}
		canonical[field] = strings.TrimSpace(value)
	}
	return canonical, extras
}

func checkRequired(kind Kind, canonical map[string]string) error {
	for _, field := range RequiredColumns(kind) {
		if _, ok := canonical[field]; !ok {
			return &MissingRequiredFieldError{Field: field}
		}
	}
	return nil
}

func optional(canonical map[string]string, field string) *string {
	if v, ok := canonical[field]; ok {
		return &v
	}
	return nil
}

// MapRole converts a raw row into a canonical Role record. Unrecognized
// columns are folded into Metadata.
func MapRole(fields Fields) (Role, error) {
	canonical, extras := scan(KindRole, fields)
	if err := checkRequired(KindRole, canonical); err != nil {
		return Role{}, err
	}
	role := Role{
		ID:          canonical[FieldID],
		Name:        optional(canonical, FieldName),
		Description: optional(canonical, FieldDescription),
		Source:      optional(canonical, FieldSource),
		Version:     optional(canonical, FieldVersion),
	}
	if len(extras) > 0 {
		role.Metadata = extras
	}
	return role, nil
}

// MapCompetency converts a raw row into a canonical Competency record.
func MapCompetency(fields Fields) (Competency, error) {
	canonical, _ := scan(KindCompetency, fields)
	if err := checkRequired(KindCompetency, canonical); err != nil {
		return Competency{}, err
	}
	return Competency{
		ID:         canonical[FieldID],
		Name:       optional(canonical, FieldName),
		Definition: optional(canonical, FieldDefinition),
		Source:     optional(canonical, FieldSource),
		Version:    optional(canonical, FieldVersion),
	}, nil
}

// validityLayouts are accepted for validFrom/validTo cells.
var validityLayouts = []string{time.RFC3339, "2006-01-02"}

func parseValidity(field, value string) (time.Time, error) {
	for _, layout := range validityLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &FieldTypeError{Field: field, Value: value}
}

// MapRequires converts a raw row into a canonical Requires edge record. A
// validity window with validFrom after validTo fails validation; it is never
// silently reordered.
func MapRequires(fields Fields) (Requires, error) {
	canonical, _ := scan(KindRequires, fields)
	if err := checkRequired(KindRequires, canonical); err != nil {
		return Requires{}, err
	}
	req := Requires{
		RoleID:        canonical[FieldRoleID],
		CompetencyID:  canonical[FieldCompetencyID],
		RequiredLevel: optional(canonical, FieldRequiredLevel),
		Version:       optional(canonical, FieldVersion),
		Source:        optional(canonical, FieldSource),
		ValidFrom:     optional(canonical, FieldValidFrom),
		ValidTo:       optional(canonical, FieldValidTo),
	}

	var from, to time.Time
	if req.ValidFrom != nil {
		t, err := parseValidity(FieldValidFrom, *req.ValidFrom)
		if err != nil {
			return Requires{}, err
		}
		from = t
	}
	if req.ValidTo != nil {
		t, err := parseValidity(FieldValidTo, *req.ValidTo)
		if err != nil {
			return Requires{}, err
		}
		to = t
	}
	if req.ValidFrom != nil && req.ValidTo != nil && from.After(to) {
		return Requires{}, &ValidityWindowError{From: *req.ValidFrom, To: *req.ValidTo}
	}

	return req, nil
}

// MapAdjacency converts a raw row into a canonical Adjacency edge record.
// Self-edges are rejected; role identity comparison is case-sensitive.
func MapAdjacency(fields Fields) (Adjacency, error) {
	canonical, _ := scan(KindAdjacency, fields)
	if err := checkRequired(KindAdjacency, canonical); err != nil {
		return Adjacency{}, err
	}
	adj := Adjacency{
		RoleA:     canonical[FieldRoleA],
		RoleB:     canonical[FieldRoleB],
		Rationale: optional(canonical, FieldRationale),
		Version:   optional(canonical, FieldVersion),
		Source:    optional(canonical, FieldSource),
	}
	if adj.RoleA == adj.RoleB {
		return Adjacency{}, &SelfEdgeError{Role: adj.RoleA}
	}
	if raw, ok := canonical[FieldScore]; ok {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Adjacency{}, &FieldTypeError{Field: FieldScore, Value: raw}
		}
		adj.Score = &score
	}
	return adj, nil
}
