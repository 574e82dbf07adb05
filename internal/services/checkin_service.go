package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/repositories"
	"volunteer_hub_backend/internal/roster"
)

// --- Custom Service Errors for Check-In ---
var (
	ErrSignupNotFound    = errors.New("volunteer signup not found")
	ErrAlreadyCheckedIn  = errors.New("volunteer is already checked in")
	ErrCheckinPermission = errors.New("check-in update affected no rows; likely a permissions or stale-id problem")
)

// notesRunningLate is what the stored function writes for the running-late
// action; mirrored here for the optimistic cache patch.
const notesRunningLate = "Running late"

// --- CheckinService Interface ---
//
// The four write paths of the roster. Each is idempotent at the field level,
// not wrapped in any app-level lock: concurrent edits to the same row are
// accepted as rare and resolved last-write-wins at the store. On success each
// operation applies an optimistic patch to the event's roster cache using the
// service clock; the push channel later delivers the authoritative row and
// the cache merge keeps whichever landed last.
type CheckinService interface {
	CheckIn(signupID string) (*models.VolunteerSignup, error)
	CheckOut(signupID string) (*models.VolunteerSignup, error)
	SetNotes(signupID string, notes *string) (*models.VolunteerSignup, error)
	MarkRunningLate(signupID string) (*models.VolunteerSignup, error)
}

type checkinService struct {
	volunteerRepo repositories.VolunteerRepository
	caches        *roster.Manager
	db            *sql.DB
}

// NewCheckinService creates a new instance of CheckinService.
func NewCheckinService(vr repositories.VolunteerRepository, caches *roster.Manager, db *sql.DB) CheckinService {
	return &checkinService{volunteerRepo: vr, caches: caches, db: db}
}

// CheckIn marks the volunteer as arrived. Precondition: not already in the
// checked-in state. A re-check-in after a checkout is allowed and clears the
// prior checkout.
func (s *checkinService) CheckIn(signupID string) (*models.VolunteerSignup, error) {
	signup, err := s.getSignup(signupID)
	if err != nil {
		return nil, err
	}
	if roster.IsCheckedIn(signup) {
		return nil, ErrAlreadyCheckedIn
	}

	now := time.Now()
	if err := s.volunteerRepo.CheckIn(s.db, signupID, now); err != nil {
		return nil, s.mapWriteError(err, "check-in", signupID)
	}

	return s.patch(signup, models.CheckinFields{
		CheckedInAt:  &now,
		CheckedOutAt: nil,
		CheckInNotes: signup.CheckInNotes,
	}), nil
}

// CheckOut marks the volunteer as departed. Deliberately no precondition on
// having checked in: the store accepts the write and the status derivation
// classifies the resulting row as not-checked-in.
func (s *checkinService) CheckOut(signupID string) (*models.VolunteerSignup, error) {
	signup, err := s.getSignup(signupID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.volunteerRepo.CheckOut(s.db, signupID, now); err != nil {
		return nil, s.mapWriteError(err, "check-out", signupID)
	}

	return s.patch(signup, models.CheckinFields{
		CheckedInAt:  signup.CheckedInAt,
		CheckedOutAt: &now,
		CheckInNotes: signup.CheckInNotes,
	}), nil
}

// SetNotes writes the operator annotation, unconditionally, through the
// stored function so delegated POC operators can annotate without a direct
// row-update grant. nil clears the notes.
func (s *checkinService) SetNotes(signupID string, notes *string) (*models.VolunteerSignup, error) {
	signup, err := s.getSignup(signupID)
	if err != nil {
		return nil, err
	}

	if err := s.volunteerRepo.UpdateCheckinStatus(s.db, signupID, repositories.CheckinActionNotes, notes); err != nil {
		return nil, s.mapWriteError(err, "notes update", signupID)
	}

	return s.patch(signup, models.CheckinFields{
		CheckedInAt:  signup.CheckedInAt,
		CheckedOutAt: signup.CheckedOutAt,
		CheckInNotes: notes,
	}), nil
}

// MarkRunningLate records the running-late annotation and forces
// checked_in_at back to null even if an earlier optimistic patch had set it:
// running-late and checked-in are mutually exclusive display states.
func (s *checkinService) MarkRunningLate(signupID string) (*models.VolunteerSignup, error) {
	signup, err := s.getSignup(signupID)
	if err != nil {
		return nil, err
	}

	if err := s.volunteerRepo.UpdateCheckinStatus(s.db, signupID, repositories.CheckinActionRunningLate, nil); err != nil {
		return nil, s.mapWriteError(err, "running-late update", signupID)
	}

	lateNotes := notesRunningLate
	return s.patch(signup, models.CheckinFields{
		CheckedInAt:  nil,
		CheckedOutAt: signup.CheckedOutAt,
		CheckInNotes: &lateNotes,
	}), nil
}

func (s *checkinService) getSignup(signupID string) (*models.VolunteerSignup, error) {
	signup, err := s.volunteerRepo.GetSignupByID(signupID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSignupNotFound
		}
		return nil, fmt.Errorf("failed to load signup %s: %w", signupID, err)
	}
	return signup, nil
}

// mapWriteError distinguishes zero-rows-affected (permissions / stale id)
// from transport failures, which callers surface differently.
func (s *checkinService) mapWriteError(err error, op, signupID string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s for signup %s", ErrCheckinPermission, op, signupID)
	}
	return fmt.Errorf("%s failed for signup %s: %w", op, signupID, err)
}

// patch applies the optimistic same-tick update to the event's cache, if one
// exists, and returns the patched projection. Failures before this point
// leave both the store and the cache untouched, which is what makes every
// write path safely retryable.
func (s *checkinService) patch(signup *models.VolunteerSignup, fields models.CheckinFields) *models.VolunteerSignup {
	if cache, ok := s.caches.Peek(signup.EventID); ok {
		cache.ApplyLocalPatch(signup.ID, fields)
	}
	patched := *signup
	patched.CheckedInAt = fields.CheckedInAt
	patched.CheckedOutAt = fields.CheckedOutAt
	patched.CheckInNotes = fields.CheckInNotes
	return &patched
}
