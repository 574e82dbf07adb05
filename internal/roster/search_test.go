package roster

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer_hub_backend/internal/models"
)

func TestBuildSearchText_PhoneDigitsAcrossPunctuation(t *testing.T) {
	s := &models.VolunteerSignup{Name: "Dana Reyes", Phone: strPtr("(313) 555-0100")}
	blob := BuildSearchText(s, nil)

	assert.True(t, Matches(blob, "313"))
	assert.True(t, Matches(blob, "555-0100"))
	assert.True(t, Matches(blob, "3135550100"))
}

func TestMatches_PocEmailOnly(t *testing.T) {
	s := &models.VolunteerSignup{Name: "Dana Reyes", RoleID: "r1"}
	role := &models.VolunteerRole{
		ID:        "r1",
		RoleLabel: "Setup Crew",
		PocContacts: []models.PocContact{
			{Name: "Pat Organizer", Email: strPtr("poc@example.org")},
		},
	}
	blob := BuildSearchText(s, role)
	assert.True(t, Matches(blob, "poc@example.org"))
}

func TestBuildSearchText_LegacySingularPoc(t *testing.T) {
	role := &models.VolunteerRole{
		RoleLabel:  "Greeter",
		PocContact: &models.PocContact{Name: "Lee Chen", Phone: strPtr("415.555.0123")},
	}
	blob := BuildSearchText(&models.VolunteerSignup{Name: "Sam"}, role)

	assert.True(t, Matches(blob, "lee chen"))
	assert.True(t, Matches(blob, "4155550123"))
}

func TestBuildSearchText_SuggestedPocStringAndArray(t *testing.T) {
	asString := &models.VolunteerRole{SuggestedPoc: json.RawMessage(`"Morgan Diaz"`)}
	asArray := &models.VolunteerRole{SuggestedPoc: json.RawMessage(`["Morgan Diaz","Kim Park"]`)}

	assert.True(t, Matches(BuildSearchText(&models.VolunteerSignup{}, asString), "morgan"))
	assert.True(t, Matches(BuildSearchText(&models.VolunteerSignup{}, asArray), "kim park"))
}

func TestBuildSearchText_MalformedSuggestedPocSkipped(t *testing.T) {
	role := &models.VolunteerRole{
		RoleLabel:    "Cleanup",
		SuggestedPoc: json.RawMessage(`{"unexpected":"shape"}`),
	}
	blob := BuildSearchText(&models.VolunteerSignup{Name: "Ari"}, role)

	assert.True(t, Matches(blob, "ari"))
	assert.True(t, Matches(blob, "cleanup"))
	assert.False(t, Matches(blob, "unexpected"))
}

func TestMatches_EmptyQueryMatchesEverything(t *testing.T) {
	assert.True(t, Matches("anything at all", ""))
	assert.True(t, Matches("anything at all", "   "))
}

func TestMatches_NonDigitMissIsAMiss(t *testing.T) {
	blob := BuildSearchText(&models.VolunteerSignup{Name: "Dana"}, nil)
	assert.False(t, Matches(blob, "zzz"))
}

func TestParseFacet(t *testing.T) {
	assert.Equal(t, FacetCheckedIn, ParseFacet("in"))
	assert.Equal(t, FacetNotCheckedIn, ParseFacet(" NOT-IN "))
	assert.Equal(t, FacetAll, ParseFacet("all"))
	assert.Equal(t, FacetAll, ParseFacet("bogus"))
	assert.Equal(t, FacetAll, ParseFacet(""))
}

func TestFilter_FacetAndQueryCompose(t *testing.T) {
	now := time.Now()
	rows := []models.VolunteerSignup{
		{ID: "s1", RoleID: "r1", Name: "Alice Ng", CheckedInAt: &now},
		{ID: "s2", RoleID: "r1", Name: "Bob Tran"},
		{ID: "s3", RoleID: "r2", Name: "Cara Alonso", CheckedInAt: &now},
	}
	roles := map[string]*models.VolunteerRole{
		"r1": {ID: "r1", RoleLabel: "Setup"},
		"r2": {ID: "r2", RoleLabel: "Greeter"},
	}

	checkedIn := Filter(rows, roles, "", FacetCheckedIn)
	require.Len(t, checkedIn, 2)

	setupOnly := Filter(rows, roles, "setup", FacetAll)
	require.Len(t, setupOnly, 2)
	assert.Equal(t, "s1", setupOnly[0].ID)

	both := Filter(rows, roles, "setup", FacetCheckedIn)
	require.Len(t, both, 1)
	assert.Equal(t, "s1", both[0].ID)

	notIn := Filter(rows, roles, "", FacetNotCheckedIn)
	require.Len(t, notIn, 1)
	assert.Equal(t, "s2", notIn[0].ID)
}
