package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Error

	"volunteer_hub_backend/internal/models"
)

// Actions accepted by the update_volunteer_checkin_status stored function.
const (
	CheckinActionNotes       = "notes"
	CheckinActionRunningLate = "running_late"
)

// VolunteerRepository defines the database operations for volunteer signups.
type VolunteerRepository interface {
	CreateSignup(executor SQLExecutor, signup *models.VolunteerSignup) (string, error)
	GetSignupByID(id string) (*models.VolunteerSignup, error)
	GetSignupsByEvent(eventID string) ([]models.VolunteerSignup, error)
	// CheckIn sets checked_in_at and clears checked_out_at, so a re-check-in
	// after a checkout returns the volunteer to the checked-in state.
	CheckIn(executor SQLExecutor, id string, at time.Time) error
	CheckOut(executor SQLExecutor, id string, at time.Time) error
	// UpdateCheckinStatus routes through the update_volunteer_checkin_status
	// SQL function rather than a direct table write, so delegated POC
	// operators without row-update grants can still annotate.
	UpdateCheckinStatus(executor SQLExecutor, id, action string, notes *string) error
	CountNoShows(executor SQLExecutor, eventID string) (int, error)
}

type volunteerRepository struct {
	db *sql.DB
}

// NewVolunteerRepository creates a new instance of VolunteerRepository.
func NewVolunteerRepository(db *sql.DB) VolunteerRepository {
	return &volunteerRepository{db: db}
}

const signupColumns = `id, event_id, role_id, contact_id, name, phone, email,
	checked_in_at, checked_out_at, check_in_notes, created_at, updated_at`

func scanSignup(row scanner) (*models.VolunteerSignup, error) {
	s := &models.VolunteerSignup{}
	var contactID, phone, email, notes sql.NullString
	var checkedInAt, checkedOutAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.EventID, &s.RoleID, &contactID, &s.Name, &phone, &email,
		&checkedInAt, &checkedOutAt, &notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if contactID.Valid {
		s.ContactID = &contactID.String
	}
	if phone.Valid {
		s.Phone = &phone.String
	}
	if email.Valid {
		s.Email = &email.String
	}
	if checkedInAt.Valid {
		s.CheckedInAt = &checkedInAt.Time
	}
	if checkedOutAt.Valid {
		s.CheckedOutAt = &checkedOutAt.Time
	}
	if notes.Valid {
		s.CheckInNotes = &notes.String
	}
	return s, nil
}

// CreateSignup inserts a new signup row. Check-in fields always start null.
func (r *volunteerRepository) CreateSignup(executor SQLExecutor, signup *models.VolunteerSignup) (string, error) {
	query := `INSERT INTO volunteer_signups (id, event_id, role_id, contact_id, name, phone, email, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	if signup.ID == "" {
		signup.ID = uuid.NewString()
	}
	currentTime := time.Now()
	if signup.CreatedAt.IsZero() {
		signup.CreatedAt = currentTime
	}
	signup.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		signup.ID, signup.EventID, signup.RoleID, signup.ContactID,
		signup.Name, signup.Phone, signup.Email, signup.CreatedAt, signup.UpdatedAt,
	).Scan(&signup.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return "", fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return "", fmt.Errorf("%w: event or role does not exist", ErrNotFound)
			}
		}
		return "", fmt.Errorf("%w: creating signup: %v", ErrDatabaseError, err)
	}
	return signup.ID, nil
}

// GetSignupByID retrieves a single signup.
func (r *volunteerRepository) GetSignupByID(id string) (*models.VolunteerSignup, error) {
	query := `SELECT ` + signupColumns + ` FROM volunteer_signups WHERE id = $1`
	s, err := scanSignup(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting signup by ID %s: %v", ErrDatabaseError, id, err)
	}
	return s, nil
}

// GetSignupsByEvent retrieves all signup rows for one event, the full fetch
// that seeds the roster cache. Ordered by creation so the roster is stable
// across reloads.
func (r *volunteerRepository) GetSignupsByEvent(eventID string) ([]models.VolunteerSignup, error) {
	query := `SELECT ` + signupColumns + ` FROM volunteer_signups
	          WHERE event_id = $1
	          ORDER BY created_at, id`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing signups for event %s: %v", ErrDatabaseError, eventID, err)
	}
	defer rows.Close()

	var signups []models.VolunteerSignup
	for rows.Next() {
		s, err := scanSignup(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning signup row: %v", ErrDatabaseError, err)
		}
		signups = append(signups, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating signup rows: %v", ErrDatabaseError, err)
	}
	return signups, nil
}

// CheckIn marks arrival. The paired NULL on checked_out_at is what makes
// re-check-in after a checkout work.
func (r *volunteerRepository) CheckIn(executor SQLExecutor, id string, at time.Time) error {
	query := `UPDATE volunteer_signups
	          SET checked_in_at = $2, checked_out_at = NULL, updated_at = $3
	          WHERE id = $1`
	return r.execCheckinUpdate(executor, query, id, at)
}

// CheckOut marks departure. No precondition on checked_in_at is enforced
// here; a checkout on a never-checked-in row succeeds and lands in the
// defective bucket the status derivation classifies as not-checked-in.
func (r *volunteerRepository) CheckOut(executor SQLExecutor, id string, at time.Time) error {
	query := `UPDATE volunteer_signups
	          SET checked_out_at = $2, updated_at = $3
	          WHERE id = $1`
	return r.execCheckinUpdate(executor, query, id, at)
}

func (r *volunteerRepository) execCheckinUpdate(executor SQLExecutor, query, id string, at time.Time) error {
	result, err := executor.Exec(query, id, at, time.Now())
	if err != nil {
		return fmt.Errorf("%w: updating check-in fields for signup %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCheckinStatus invokes the stored function for the notes and
// running-late actions. The function runs with elevated rights and applies
// its own permission checks, so its zero-updated result is reported the same
// way as a missing row.
func (r *volunteerRepository) UpdateCheckinStatus(executor SQLExecutor, id, action string, notes *string) error {
	query := `SELECT update_volunteer_checkin_status($1, $2, $3)`

	var updated bool
	err := executor.QueryRow(query, id, action, notes).Scan(&updated)
	if err != nil {
		return mapCheckinStatusError(id, action, err)
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

// mapCheckinStatusError translates stored-function failures. The function
// raises invalid_parameter_value for an unknown action; everything else is a
// plain database error.
func mapCheckinStatusError(id, action string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "invalid_parameter_value" {
		return fmt.Errorf("%w: invalid check-in action %q", ErrDatabaseError, action)
	}
	return fmt.Errorf("%w: update_volunteer_checkin_status for signup %s: %v", ErrDatabaseError, id, err)
}

// CountNoShows counts the event's signups that never checked in.
func (r *volunteerRepository) CountNoShows(executor SQLExecutor, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM volunteer_signups
	          WHERE event_id = $1 AND checked_in_at IS NULL`

	var count int
	if err := executor.QueryRow(query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting no-shows for event %s: %v", ErrDatabaseError, eventID, err)
	}
	return count, nil
}
