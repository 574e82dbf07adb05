package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"volunteer_hub_backend/internal/models"
)

// EventRepository defines the database operations for events.
type EventRepository interface {
	GetEventByID(id string) (*models.Event, error)
	GetEvents(page, pageSize int, status *string) ([]models.Event, int, error)
	// CloseEvent transitions an event to closed. Closing an already-closed
	// event affects zero rows and is reported as ErrNotFound so the caller
	// can refuse to run the no-show resolver twice.
	CloseEvent(executor SQLExecutor, id string) error
}

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func scanEvent(row scanner) (*models.Event, error) {
	e := &models.Event{}
	var description, location sql.NullString
	var organizerID sql.NullInt64

	err := row.Scan(
		&e.ID, &e.Title, &description, &location, &e.StartsAt, &e.EndsAt,
		&e.Status, &organizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		e.Description = &description.String
	}
	if location.Valid {
		e.Location = &location.String
	}
	if organizerID.Valid {
		e.OrganizerID = &organizerID.Int64
	}
	return e, nil
}

const eventColumns = `id, title, description, location, starts_at, ends_at, status, organizer_id, created_at, updated_at`

// GetEventByID retrieves one event.
func (r *eventRepository) GetEventByID(id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting event by ID %s: %v", ErrDatabaseError, id, err)
	}
	return e, nil
}

// GetEvents retrieves events with pagination and an optional status filter.
func (r *eventRepository) GetEvents(page, pageSize int, status *string) ([]models.Event, int, error) {
	countQuery := `SELECT COUNT(*) FROM events`
	listQuery := `SELECT ` + eventColumns + ` FROM events`

	var args []interface{}
	if status != nil {
		countQuery += ` WHERE status = $1`
		listQuery += ` WHERE status = $1`
		args = append(args, *status)
	}

	var totalCount int
	if err := r.db.QueryRow(countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("%w: counting events: %v", ErrDatabaseError, err)
	}

	offset := (page - 1) * pageSize
	listQuery += fmt.Sprintf(` ORDER BY starts_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing events: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning event row: %v", ErrDatabaseError, err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating event rows: %v", ErrDatabaseError, err)
	}
	return events, totalCount, nil
}

// CloseEvent marks an event closed.
func (r *eventRepository) CloseEvent(executor SQLExecutor, id string) error {
	query := `UPDATE events SET status = $2, updated_at = $3
	          WHERE id = $1 AND status <> $2`

	result, err := executor.Exec(query, id, models.EventStatusClosed, time.Now())
	if err != nil {
		return fmt.Errorf("%w: closing event %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
