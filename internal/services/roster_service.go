package services

import (
	"errors"
	"fmt"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/repositories"
	"volunteer_hub_backend/internal/roster"
)

// --- Custom Service Errors for Roster ---
var (
	ErrEventNotFound = errors.New("event not found")
)

// RosterEntry is one roster row with its derived status badge.
type RosterEntry struct {
	models.VolunteerSignup
	Status roster.StatusInfo `json:"status"`
}

// RosterView is the filtered roster projection served to operators. Counts
// are computed over the full cache, not the filtered subset, and a volunteer
// who checked out does not count as checked in.
type RosterView struct {
	EventID        string        `json:"event_id"`
	Entries        []RosterEntry `json:"entries"`
	TotalCount     int           `json:"total_count"`
	CheckedInCount int           `json:"checked_in_count"`
}

// --- RosterService Interface ---
type RosterService interface {
	// GetRoster serves the event's roster from the in-memory cache,
	// reseeding it from the store when stale, filtered by the text query and
	// status facet.
	GetRoster(eventID, search string, facet roster.Facet) (*RosterView, error)
	// Refresh forces a reseed on next read. Used after the no-show resolver
	// rewrites the event's rows.
	Refresh(eventID string)
}

type rosterService struct {
	volunteerRepo repositories.VolunteerRepository
	roleRepo      repositories.RoleRepository
	eventRepo     repositories.EventRepository
	caches        *roster.Manager
}

// NewRosterService creates a new instance of RosterService.
func NewRosterService(
	vr repositories.VolunteerRepository,
	rr repositories.RoleRepository,
	er repositories.EventRepository,
	caches *roster.Manager,
) RosterService {
	return &rosterService{volunteerRepo: vr, roleRepo: rr, eventRepo: er, caches: caches}
}

func (s *rosterService) GetRoster(eventID, search string, facet roster.Facet) (*RosterView, error) {
	cache := s.caches.ForEvent(eventID)
	if cache.Stale() {
		if err := s.seed(cache, eventID); err != nil {
			return nil, err
		}
	}

	roles, err := s.roleRepo.GetRolesByEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles for event %s: %w", eventID, err)
	}
	rolesByID := make(map[string]*models.VolunteerRole, len(roles))
	for i := range roles {
		rolesByID[roles[i].ID] = &roles[i]
	}

	rows := cache.Snapshot()
	view := &RosterView{EventID: eventID, TotalCount: len(rows)}
	for i := range rows {
		if roster.IsCheckedIn(&rows[i]) {
			view.CheckedInCount++
		}
	}

	filtered := roster.Filter(rows, rolesByID, search, facet)
	view.Entries = make([]RosterEntry, 0, len(filtered))
	for i := range filtered {
		view.Entries = append(view.Entries, RosterEntry{
			VolunteerSignup: filtered[i],
			Status:          roster.DeriveStatus(&filtered[i]),
		})
	}
	return view, nil
}

func (s *rosterService) Refresh(eventID string) {
	if cache, ok := s.caches.Peek(eventID); ok {
		cache.MarkStale()
	}
}

// seed performs the initial full fetch. The event lookup runs first so a
// bogus event id reads as not-found rather than an empty roster.
func (s *rosterService) seed(cache *roster.Cache, eventID string) error {
	if _, err := s.eventRepo.GetEventByID(eventID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to load event %s: %w", eventID, err)
	}

	signups, err := s.volunteerRepo.GetSignupsByEvent(eventID)
	if err != nil {
		return fmt.Errorf("failed to load signups for event %s: %w", eventID, err)
	}
	cache.Seed(signups)
	return nil
}
