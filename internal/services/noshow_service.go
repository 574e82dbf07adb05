package services

import (
	"database/sql"
	"errors"
	"fmt"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/repositories"
	"volunteer_hub_backend/internal/roster"
)

// --- Custom Service Errors for No-Show Resolution ---
var (
	ErrEventAlreadyClosed = errors.New("event is already closed")
)

// --- NoShowService Interface ---
//
// The close-event batch. Irreversible: the handler layer is responsible for
// communicating that to the operator before invoking it.
type NoShowService interface {
	// ResolveEvent partitions the event's signups into attended and no-show,
	// optionally deletes the no-show contact records that have no checked-in
	// association anywhere (system-wide, not event-scoped), closes the
	// event, and returns the report. The event's roster cache is marked for
	// reseed so the next read refetches consistently with the report.
	ResolveEvent(eventID string, removeContacts bool) (*models.NoShowReport, error)
}

type noShowService struct {
	volunteerRepo repositories.VolunteerRepository
	contactRepo   repositories.ContactRepository
	eventRepo     repositories.EventRepository
	caches        *roster.Manager
	db            *sql.DB
}

// NewNoShowService creates a new instance of NoShowService.
func NewNoShowService(
	vr repositories.VolunteerRepository,
	cr repositories.ContactRepository,
	er repositories.EventRepository,
	caches *roster.Manager,
	db *sql.DB,
) NoShowService {
	return &noShowService{volunteerRepo: vr, contactRepo: cr, eventRepo: er, caches: caches, db: db}
}

func (s *noShowService) ResolveEvent(eventID string, removeContacts bool) (*models.NoShowReport, error) {
	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event for no-show resolution: %w", err)
	}
	if event.Status == models.EventStatusClosed {
		return nil, ErrEventAlreadyClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin no-show transaction: %w", err)
	}
	defer tx.Rollback()

	// Count before any deletion: contact removal cascades into its signup
	// rows and would shrink the partition under us.
	noShowCount, err := s.volunteerRepo.CountNoShows(tx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to partition signups: %w", err)
	}

	var removed []models.RemovedContact
	if removeContacts {
		removed, err = s.contactRepo.DeleteNoShowOrphans(tx, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to remove no-show contacts: %w", err)
		}
	}

	if err := s.eventRepo.CloseEvent(tx, eventID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventAlreadyClosed
		}
		return nil, fmt.Errorf("failed to close event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit no-show resolution: %w", err)
	}

	if cache, ok := s.caches.Peek(eventID); ok {
		cache.MarkStale()
	}

	if removed == nil {
		removed = []models.RemovedContact{}
	}
	return &models.NoShowReport{
		EventTitle:      event.Title,
		NoShowCount:     noShowCount,
		RemovedContacts: removed,
	}, nil
}
