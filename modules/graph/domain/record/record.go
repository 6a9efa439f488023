package record

// Fields is one raw input row: original column names mapped to raw cell
// values. Decoding files into Fields is the concern of the tabular package.
type Fields map[string]string

// Role is the canonical Role node record. Optional attributes are pointers so
// an absent value (leave stored value untouched) is distinct from an explicit
// overwrite.
type Role struct {
	ID          string
	Name        *string
	Description *string
	Source      *string
	Version     *string
	// Metadata holds columns that are not part of the recognized Role set.
	Metadata map[string]string
}

// Competency is the canonical Competency node record.
type Competency struct {
	ID         string
	Name       *string
	Definition *string
	Source     *string
	Version    *string
}

// Requires is the canonical Role-[REQUIRES]->Competency edge record, keyed by
// (RoleID, CompetencyID).
type Requires struct {
	RoleID        string
	CompetencyID  string
	RequiredLevel *string
	Version       *string
	Source        *string
	ValidFrom     *string
	ValidTo       *string
}

// Adjacency is the canonical Role<->Role edge record for one unordered pair.
// It is persisted as two directed ADJACENT_TO edges with identical properties.
type Adjacency struct {
	RoleA     string
	RoleB     string
	Score     *float64
	Rationale *string
	Version   *string
	Source    *string
}
