package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/repositories"
	"volunteer_hub_backend/internal/roster"
)

type fakeRoleRepo struct {
	roles map[string]*models.VolunteerRole
}

func (f *fakeRoleRepo) GetRoleByID(id string) (*models.VolunteerRole, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRoleRepo) GetRolesByEvent(eventID string) ([]models.VolunteerRole, error) {
	var out []models.VolunteerRole
	for _, r := range f.roles {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func newRosterFixture(signups ...models.VolunteerSignup) (RosterService, *roster.Manager) {
	vr := newFakeVolunteerRepo(signups...)
	rr := &fakeRoleRepo{roles: map[string]*models.VolunteerRole{
		"r1": {ID: "r1", EventID: "ev-1", RoleLabel: "Setup Crew"},
	}}
	er := &fakeEventRepo{events: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Title: "Park Cleanup", Status: models.EventStatusActive},
	}}
	caches := roster.NewManager()
	return NewRosterService(vr, rr, er, caches), caches
}

func TestGetRoster_SeedsStaleCacheAndCounts(t *testing.T) {
	now := time.Now()
	svc, caches := newRosterFixture(
		models.VolunteerSignup{ID: "s1", EventID: "ev-1", RoleID: "r1", Name: "Alice", CheckedInAt: &now},
		models.VolunteerSignup{ID: "s2", EventID: "ev-1", RoleID: "r1", Name: "Bob"},
		models.VolunteerSignup{ID: "s3", EventID: "ev-1", RoleID: "r1", Name: "Cara", CheckedInAt: &now, CheckedOutAt: &now},
	)

	view, err := svc.GetRoster("ev-1", "", roster.FacetAll)
	require.NoError(t, err)

	assert.Equal(t, 3, view.TotalCount)
	// Checked-out volunteers never count as checked in.
	assert.Equal(t, 1, view.CheckedInCount)
	assert.Len(t, view.Entries, 3)

	cache, ok := caches.Peek("ev-1")
	require.True(t, ok)
	assert.False(t, cache.Stale())
}

func TestGetRoster_SearchByRoleLabel(t *testing.T) {
	svc, _ := newRosterFixture(
		models.VolunteerSignup{ID: "s1", EventID: "ev-1", RoleID: "r1", Name: "Alice"},
		models.VolunteerSignup{ID: "s2", EventID: "ev-1", RoleID: "r-unknown", Name: "Bob"},
	)

	view, err := svc.GetRoster("ev-1", "setup crew", roster.FacetAll)
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, "Alice", view.Entries[0].Name)
	// Counts stay global even when the filter narrows the view.
	assert.Equal(t, 2, view.TotalCount)
}

func TestGetRoster_StatusFacet(t *testing.T) {
	now := time.Now()
	svc, _ := newRosterFixture(
		models.VolunteerSignup{ID: "s1", EventID: "ev-1", RoleID: "r1", Name: "Alice", CheckedInAt: &now},
		models.VolunteerSignup{ID: "s2", EventID: "ev-1", RoleID: "r1", Name: "Bob"},
	)

	view, err := svc.GetRoster("ev-1", "", roster.FacetNotCheckedIn)
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, "Bob", view.Entries[0].Name)
	assert.Equal(t, roster.StatusNotCheckedIn, view.Entries[0].Status.Status)
}

func TestGetRoster_UnknownEvent(t *testing.T) {
	svc, _ := newRosterFixture()
	_, err := svc.GetRoster("ghost", "", roster.FacetAll)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRefresh_MarksCacheStale(t *testing.T) {
	svc, caches := newRosterFixture(
		models.VolunteerSignup{ID: "s1", EventID: "ev-1", RoleID: "r1", Name: "Alice"},
	)
	_, err := svc.GetRoster("ev-1", "", roster.FacetAll)
	require.NoError(t, err)

	svc.Refresh("ev-1")
	cache, _ := caches.Peek("ev-1")
	assert.True(t, cache.Stale())
}
