package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/repositories"
	"volunteer_hub_backend/internal/roster"
)

type fakeEventRepo struct {
	events map[string]*models.Event
}

func (f *fakeEventRepo) GetEventByID(id string) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEventRepo) GetEvents(page, pageSize int, status *string) ([]models.Event, int, error) {
	var out []models.Event
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) CloseEvent(_ repositories.SQLExecutor, id string) error {
	e, ok := f.events[id]
	if !ok || e.Status == models.EventStatusClosed {
		return repositories.ErrNotFound
	}
	e.Status = models.EventStatusClosed
	return nil
}

type fakeContactRepo struct {
	contacts map[string]*models.Contact
	// noShowOrphans is what DeleteNoShowOrphans removes, keyed by event.
	noShowOrphans map[string][]models.RemovedContact
	lastExec      repositories.SQLExecutor
}

func (f *fakeContactRepo) CreateContact(executor repositories.SQLExecutor, c *models.Contact) (string, error) {
	f.lastExec = executor
	copied := *c
	if copied.ID == "" {
		copied.ID = uuid.NewString()
	}
	f.contacts[copied.ID] = &copied
	return copied.ID, nil
}

func (f *fakeContactRepo) GetContactByID(id string) (*models.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeContactRepo) FindContactByPhoneDigits(digits string) (*models.Contact, error) {
	for _, c := range f.contacts {
		if c.PhoneNumber != nil && phoneDigits(*c.PhoneNumber) == digits {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeContactRepo) UpdateContact(executor repositories.SQLExecutor, c *models.Contact) error {
	f.lastExec = executor
	if _, ok := f.contacts[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *c
	f.contacts[c.ID] = &copied
	return nil
}

func (f *fakeContactRepo) DeleteNoShowOrphans(_ repositories.SQLExecutor, eventID string) ([]models.RemovedContact, error) {
	removed := f.noShowOrphans[eventID]
	for _, rc := range removed {
		delete(f.contacts, rc.ID)
	}
	return removed, nil
}

// nopDB returns a *sql.DB whose transactions are no-ops. The fake
// repositories ignore their executor argument, so ResolveEvent's Begin and
// Commit run against this stub while all data lives in the fakes.
func nopDB(t *testing.T) *sql.DB {
	t.Helper()
	db := sql.OpenDB(nopConnector{})
	t.Cleanup(func() { db.Close() })
	return db
}

type nopConnector struct{}

func (nopConnector) Connect(context.Context) (driver.Conn, error) {
	return nopConn{}, nil
}
func (nopConnector) Driver() driver.Driver { return nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

func TestResolveEvent_ThreeSignupsOneCheckedIn(t *testing.T) {
	now := time.Now()
	vr := newFakeVolunteerRepo(
		models.VolunteerSignup{ID: "s1", EventID: "ev-1", Name: "Alice", CheckedInAt: &now},
		models.VolunteerSignup{ID: "s2", EventID: "ev-1", Name: "Bob"},
		models.VolunteerSignup{ID: "s3", EventID: "ev-1", Name: "Cara"},
	)
	er := &fakeEventRepo{events: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Title: "Park Cleanup", Status: models.EventStatusActive},
	}}
	cr := &fakeContactRepo{
		contacts: map[string]*models.Contact{
			"c2": {ID: "c2", FullName: "Bob"},
		},
		noShowOrphans: map[string][]models.RemovedContact{
			"ev-1": {{ID: "c2", Name: "Bob"}},
		},
	}
	caches := roster.NewManager()
	cache := caches.ForEvent("ev-1")
	cache.Seed([]models.VolunteerSignup{{ID: "s1", EventID: "ev-1"}})

	svc := NewNoShowService(vr, cr, er, caches, nopDB(t))
	report, err := svc.ResolveEvent("ev-1", true)
	require.NoError(t, err)

	assert.Equal(t, "Park Cleanup", report.EventTitle)
	assert.Equal(t, 2, report.NoShowCount)
	require.Len(t, report.RemovedContacts, 1)
	assert.Equal(t, "c2", report.RemovedContacts[0].ID)

	// The event is closed and the roster cache must reseed before serving.
	event, _ := er.GetEventByID("ev-1")
	assert.Equal(t, models.EventStatusClosed, event.Status)
	assert.True(t, cache.Stale())
}

func TestResolveEvent_AlreadyClosed(t *testing.T) {
	vr := newFakeVolunteerRepo()
	er := &fakeEventRepo{events: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Title: "Done", Status: models.EventStatusClosed},
	}}
	cr := &fakeContactRepo{contacts: map[string]*models.Contact{}, noShowOrphans: map[string][]models.RemovedContact{}}

	svc := NewNoShowService(vr, cr, er, roster.NewManager(), nopDB(t))
	_, err := svc.ResolveEvent("ev-1", true)
	assert.ErrorIs(t, err, ErrEventAlreadyClosed)
}

func TestResolveEvent_UnknownEvent(t *testing.T) {
	svc := NewNoShowService(
		newFakeVolunteerRepo(),
		&fakeContactRepo{contacts: map[string]*models.Contact{}, noShowOrphans: map[string][]models.RemovedContact{}},
		&fakeEventRepo{events: map[string]*models.Event{}},
		roster.NewManager(),
		nopDB(t),
	)
	_, err := svc.ResolveEvent("ghost", true)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestResolveEvent_WithoutContactRemoval(t *testing.T) {
	vr := newFakeVolunteerRepo(
		models.VolunteerSignup{ID: "s1", EventID: "ev-1", Name: "Bob"},
	)
	er := &fakeEventRepo{events: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Title: "Food Drive", Status: models.EventStatusUpcoming},
	}}
	cr := &fakeContactRepo{
		contacts:      map[string]*models.Contact{"c1": {ID: "c1", FullName: "Bob"}},
		noShowOrphans: map[string][]models.RemovedContact{"ev-1": {{ID: "c1", Name: "Bob"}}},
	}

	svc := NewNoShowService(vr, cr, er, roster.NewManager(), nopDB(t))
	report, err := svc.ResolveEvent("ev-1", false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.NoShowCount)
	assert.Empty(t, report.RemovedContacts)
	// Contact survives when removal was not requested.
	_, err = cr.GetContactByID("c1")
	assert.NoError(t, err)
}
