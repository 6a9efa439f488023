// Package record defines the canonical ingestion record shapes and the
// mapping from raw tabular rows into them. Input columns are matched
// case-insensitively and tolerate underscore, dash and space variation, so
// "Role Id", "role_id" and "ROLE-ID" all resolve to the same canonical field.
package record

import "strings"

type Kind string

const (
	KindRole       Kind = "role"
	KindCompetency Kind = "competency"
	KindRequires   Kind = "requires"
	KindAdjacency  Kind = "adjacency"
)

// Canonical field names, as persisted to the graph store.
const (
	FieldID            = "id"
	FieldName          = "name"
	FieldDescription   = "description"
	FieldDefinition    = "definition"
	FieldSource        = "source"
	FieldVersion       = "version"
	FieldRoleID        = "roleId"
	FieldCompetencyID  = "competencyId"
	FieldRequiredLevel = "requiredLevel"
	FieldValidFrom     = "validFrom"
	FieldValidTo       = "validTo"
	FieldRoleA         = "roleA"
	FieldRoleB         = "roleB"
	FieldScore         = "score"
	FieldRationale     = "rationale"
)

var recognizedColumns = map[Kind][]string{
	KindRole:       {FieldID, FieldName, FieldDescription, FieldSource, FieldVersion},
	KindCompetency: {FieldID, FieldName, FieldDefinition, FieldSource, FieldVersion},
	KindRequires:   {FieldRoleID, FieldCompetencyID, FieldRequiredLevel, FieldVersion, FieldSource, FieldValidFrom, FieldValidTo},
	KindAdjacency:  {FieldRoleA, FieldRoleB, FieldScore, FieldRationale, FieldVersion, FieldSource},
}

var requiredColumns = map[Kind][]string{
	KindRole:       {FieldID},
	KindCompetency: {FieldID, FieldName},
	KindRequires:   {FieldRoleID, FieldCompetencyID},
	KindAdjacency:  {FieldRoleA, FieldRoleB},
}

// columnTables maps the squashed form of each header to its canonical field,
// one static table per entity kind, built once at package init.
var columnTables = func() map[Kind]map[string]string {
	tables := make(map[Kind]map[string]string, len(recognizedColumns))
	for kind, canonical := range recognizedColumns {
		table := make(map[string]string, len(canonical))
		for _, field := range canonical {
			table[squashHeader(field)] = field
		}
		tables[kind] = table
	}
	return tables
}()

// squashHeader lowercases a header and strips underscore/dash/space noise so
// naming variants collapse onto one key.
func squashHeader(header string) string {
	var b strings.Builder
	b.Grow(len(header))
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		switch r {
		case '_', '-', ' ':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalColumn resolves a raw header to the canonical field it represents
// for the given entity kind. The second return is false for unrecognized
// headers.
func CanonicalColumn(kind Kind, header string) (string, bool) {
	field, ok := columnTables[kind][squashHeader(header)]
	return field, ok
}

// RequiredColumns lists the canonical fields a row of the given kind must
// carry a value for.
func RequiredColumns(kind Kind) []string {
	return requiredColumns[kind]
}
