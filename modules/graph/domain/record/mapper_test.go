package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRole(t *testing.T) {
	role, err := MapRole(Fields{
		"ID":          "CA",
		"Name":        "Cloud Architect",
		"description": "Designs cloud platforms",
		"Team Size":   "12",
		"org-unit":    "Platform",
	})
	require.NoError(t, err)

	assert.Equal(t, "CA", role.ID)
	require.NotNil(t, role.Name)
	assert.Equal(t, "Cloud Architect", *role.Name)
	require.NotNil(t, role.Description)
	assert.Equal(t, "Designs cloud platforms", *role.Description)
	assert.Nil(t, role.Source)
	assert.Equal(t, map[string]string{"Team Size": "12", "org-unit": "Platform"}, role.Metadata)
}

func TestMapRole_MissingID(t *testing.T) {
	_, err := MapRole(Fields{"name": "No identity"})
	require.Error(t, err)

	var mapErr MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "MissingRequiredField:id", mapErr.Reason())
}

func TestMapRole_NullLiteralsAreAbsent(t *testing.T) {
	role, err := MapRole(Fields{
		"id":          "PM",
		"name":        "null",
		"description": "NONE",
		"source":      "   ",
	})
	require.NoError(t, err)
	assert.Nil(t, role.Name)
	assert.Nil(t, role.Description)
	assert.Nil(t, role.Source)
	assert.Nil(t, role.Metadata)
}

func TestMapCompetency(t *testing.T) {
	comp, err := MapCompetency(Fields{
		"Id":         "k8s",
		"NAME":       "Kubernetes",
		"Definition": "Container orchestration",
		"version":    "2024.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "k8s", comp.ID)
	require.NotNil(t, comp.Name)
	assert.Equal(t, "Kubernetes", *comp.Name)
	require.NotNil(t, comp.Definition)
	assert.Equal(t, "Container orchestration", *comp.Definition)

	_, err = MapCompetency(Fields{"id": "k8s"})
	var mapErr MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "MissingRequiredField:name", mapErr.Reason())
}

func TestMapRequires(t *testing.T) {
	req, err := MapRequires(Fields{
		"Role Id":        "CA",
		"Competency_Id":  "k8s",
		"Required Level": "expert",
		"valid_from":     "2024-01-01",
		"valid_to":       "2025-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "CA", req.RoleID)
	assert.Equal(t, "k8s", req.CompetencyID)
	require.NotNil(t, req.RequiredLevel)
	assert.Equal(t, "expert", *req.RequiredLevel)
}

func TestMapRequires_InvertedValidityWindow(t *testing.T) {
	_, err := MapRequires(Fields{
		"roleId":       "CA",
		"competencyId": "k8s",
		"validFrom":    "2025-06-01",
		"validTo":      "2024-06-01",
	})
	require.Error(t, err)

	var winErr *ValidityWindowError
	require.ErrorAs(t, err, &winErr)
	assert.Equal(t, "2025-06-01", winErr.From)
}

func TestMapRequires_MalformedValidity(t *testing.T) {
	_, err := MapRequires(Fields{
		"roleId":       "CA",
		"competencyId": "k8s",
		"validFrom":    "whenever",
	})
	var typeErr *FieldTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, FieldValidFrom, typeErr.Field)
	assert.Equal(t, "whenever", typeErr.Value)
}

func TestMapAdjacency(t *testing.T) {
	adj, err := MapAdjacency(Fields{
		"Role A":    "CA",
		"role_b":    "PM",
		"Score":     "0.8",
		"rationale": "shared platform ownership",
	})
	require.NoError(t, err)
	assert.Equal(t, "CA", adj.RoleA)
	assert.Equal(t, "PM", adj.RoleB)
	require.NotNil(t, adj.Score)
	assert.InDelta(t, 0.8, *adj.Score, 1e-9)
}

func TestMapAdjacency_SelfEdge(t *testing.T) {
	_, err := MapAdjacency(Fields{"roleA": "CA", "roleB": "CA"})
	require.Error(t, err)

	var mapErr MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "SelfEdgeRejected", mapErr.Reason())
}

func TestMapAdjacency_CaseSensitiveIdentity(t *testing.T) {
	adj, err := MapAdjacency(Fields{"roleA": "CA", "roleB": "ca"})
	require.NoError(t, err)
	assert.Equal(t, "CA", adj.RoleA)
	assert.Equal(t, "ca", adj.RoleB)
}

func TestMapAdjacency_BadScore(t *testing.T) {
	_, err := MapAdjacency(Fields{"roleA": "CA", "roleB": "PM", "score": "very high"})
	require.Error(t, err)

	var typeErr *FieldTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, FieldScore, typeErr.Field)
	assert.Equal(t, "very high", typeErr.Value)
}
