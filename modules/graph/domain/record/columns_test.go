package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalColumn_HeaderVariants(t *testing.T) {
	for _, header := range []string{"Role Id", "role_id", "ROLE-ID", "roleId", " roleid "} {
		field, ok := CanonicalColumn(KindRequires, header)
		require.True(t, ok, "header %q should be recognized", header)
		assert.Equal(t, FieldRoleID, field, "header %q", header)
	}
}

func TestCanonicalColumn_PerKindTables(t *testing.T) {
	_, ok := CanonicalColumn(KindRole, "definition")
	assert.False(t, ok, "definition is a Competency column, not a Role column")

	field, ok := CanonicalColumn(KindCompetency, "DEFINITION")
	require.True(t, ok)
	assert.Equal(t, FieldDefinition, field)

	field, ok = CanonicalColumn(KindAdjacency, "Role A")
	require.True(t, ok)
	assert.Equal(t, FieldRoleA, field)

	_, ok = CanonicalColumn(KindAdjacency, "favorite color")
	assert.False(t, ok)
}

func TestRequiredColumns(t *testing.T) {
	assert.Equal(t, []string{FieldID}, RequiredColumns(KindRole))
	assert.Equal(t, []string{FieldID, FieldName}, RequiredColumns(KindCompetency))
	assert.Equal(t, []string{FieldRoleID, FieldCompetencyID}, RequiredColumns(KindRequires))
	assert.Equal(t, []string{FieldRoleA, FieldRoleB}, RequiredColumns(KindAdjacency))
}
