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

// ContactRepository defines the database operations for CRM contact records.
type ContactRepository interface {
	CreateContact(executor SQLExecutor, contact *models.Contact) (string, error)
	GetContactByID(id string) (*models.Contact, error)
	// FindContactByPhoneDigits matches on digits-only phone so punctuation
	// differences between signups do not fork contact records.
	FindContactByPhoneDigits(digits string) (*models.Contact, error)
	UpdateContact(executor SQLExecutor, contact *models.Contact) error
	// DeleteNoShowOrphans removes, system-wide, the contacts behind an
	// event's no-show signups, but only those with no checked-in signup
	// anywhere. Returns the removed contacts for the resolver's report.
	DeleteNoShowOrphans(executor SQLExecutor, eventID string) ([]models.RemovedContact, error)
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new instance of ContactRepository.
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

func scanContact(row scanner) (*models.Contact, error) {
	contact := &models.Contact{}
	var phone, email, notes sql.NullString

	err := row.Scan(
		&contact.ID, &contact.FullName, &phone, &email, &notes,
		&contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		contact.PhoneNumber = &phone.String
	}
	if email.Valid {
		contact.Email = &email.String
	}
	if notes.Valid {
		contact.Notes = &notes.String
	}
	return contact, nil
}

const contactColumns = `id, full_name, phone_number, email, notes, created_at, updated_at`

// CreateContact inserts a new contact.
func (r *contactRepository) CreateContact(executor SQLExecutor, contact *models.Contact) (string, error) {
	query := `INSERT INTO contacts (id, full_name, phone_number, email, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	currentTime := time.Now()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = currentTime
	}
	contact.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		contact.ID, contact.FullName, contact.PhoneNumber, contact.Email,
		contact.Notes, contact.CreatedAt, contact.UpdatedAt,
	).Scan(&contact.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return "", fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return "", fmt.Errorf("%w: creating contact: %v", ErrDatabaseError, err)
	}
	return contact.ID, nil
}

// GetContactByID retrieves a contact by id.
func (r *contactRepository) GetContactByID(id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	contact, err := scanContact(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting contact by ID %s: %v", ErrDatabaseError, id, err)
	}
	return contact, nil
}

// FindContactByPhoneDigits retrieves a contact whose phone number, stripped
// to digits, equals the supplied digits.
func (r *contactRepository) FindContactByPhoneDigits(digits string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
	          WHERE regexp_replace(COALESCE(phone_number, ''), '[^0-9]', '', 'g') = $1
	          ORDER BY created_at
	          LIMIT 1`

	contact, err := scanContact(r.db.QueryRow(query, digits))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding contact by phone digits: %v", ErrDatabaseError, err)
	}
	return contact, nil
}

// UpdateContact updates a contact's mutable fields.
func (r *contactRepository) UpdateContact(executor SQLExecutor, contact *models.Contact) error {
	query := `UPDATE contacts
	          SET full_name = $2, phone_number = $3, email = $4, notes = $5, updated_at = $6
	          WHERE id = $1`

	result, err := executor.Exec(query,
		contact.ID, contact.FullName, contact.PhoneNumber, contact.Email,
		contact.Notes, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("%w: updating contact %s: %v", ErrDatabaseError, contact.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNoShowOrphans deletes the contacts behind this event's no-shows that
// have no non-no-show association anywhere. Signups referencing a deleted
// contact go with it via ON DELETE CASCADE.
func (r *contactRepository) DeleteNoShowOrphans(executor SQLExecutor, eventID string) ([]models.RemovedContact, error) {
	query := `DELETE FROM contacts c
	          WHERE c.id IN (
	              SELECT vs.contact_id FROM volunteer_signups vs
	              WHERE vs.event_id = $1
	                AND vs.checked_in_at IS NULL
	                AND vs.contact_id IS NOT NULL
	          )
	          AND NOT EXISTS (
	              SELECT 1 FROM volunteer_signups other
	              WHERE other.contact_id = c.id
	                AND other.checked_in_at IS NOT NULL
	          )
	          RETURNING c.id, c.full_name, c.phone_number`

	rows, err := executor.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: deleting no-show contacts for event %s: %v", ErrDatabaseError, eventID, err)
	}
	defer rows.Close()

	var removed []models.RemovedContact
	for rows.Next() {
		var rc models.RemovedContact
		var phone sql.NullString
		if err := rows.Scan(&rc.ID, &rc.Name, &phone); err != nil {
			return nil, fmt.Errorf("%w: scanning removed contact: %v", ErrDatabaseError, err)
		}
		if phone.Valid {
			rc.Phone = &phone.String
		}
		removed = append(removed, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating removed contacts: %v", ErrDatabaseError, err)
	}
	return removed, nil
}
