package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"volunteer_hub_backend/internal/models"
)

// RoleRepository defines the read operations for volunteer roles. Roles are
// read-only in this service; they are consumed for roster display and
// search-text construction.
type RoleRepository interface {
	GetRoleByID(id string) (*models.VolunteerRole, error)
	GetRolesByEvent(eventID string) ([]models.VolunteerRole, error)
}

type roleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new instance of RoleRepository.
func NewRoleRepository(db *sql.DB) RoleRepository {
	return &roleRepository{db: db}
}

const roleColumns = `id, event_id, role_label, shift_start, shift_end, capacity,
	poc_contacts, poc_contact, suggested_poc, created_at, updated_at`

// scanRole decodes a role row including all three historical POC shapes.
// A malformed JSON fragment in any of them is dropped, not fatal: the data
// predates this service and only feeds presentation logic.
func scanRole(row scanner) (*models.VolunteerRole, error) {
	role := &models.VolunteerRole{}
	var shiftStart, shiftEnd sql.NullTime
	var capacity sql.NullInt32
	var pocContacts, pocContact, suggestedPoc []byte

	err := row.Scan(
		&role.ID, &role.EventID, &role.RoleLabel, &shiftStart, &shiftEnd, &capacity,
		&pocContacts, &pocContact, &suggestedPoc, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if shiftStart.Valid {
		role.ShiftStart = &shiftStart.Time
	}
	if shiftEnd.Valid {
		role.ShiftEnd = &shiftEnd.Time
	}
	if capacity.Valid {
		c := int(capacity.Int32)
		role.Capacity = &c
	}
	if len(pocContacts) > 0 {
		var contacts []models.PocContact
		if err := json.Unmarshal(pocContacts, &contacts); err == nil {
			role.PocContacts = contacts
		}
	}
	if len(pocContact) > 0 {
		var contact models.PocContact
		if err := json.Unmarshal(pocContact, &contact); err == nil {
			role.PocContact = &contact
		}
	}
	if len(suggestedPoc) > 0 {
		role.SuggestedPoc = json.RawMessage(suggestedPoc)
	}
	return role, nil
}

// GetRoleByID retrieves one volunteer role.
func (r *roleRepository) GetRoleByID(id string) (*models.VolunteerRole, error) {
	query := `SELECT ` + roleColumns + ` FROM volunteer_roles WHERE id = $1`
	role, err := scanRole(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting role by ID %s: %v", ErrDatabaseError, id, err)
	}
	return role, nil
}

// GetRolesByEvent retrieves all roles for one event.
func (r *roleRepository) GetRolesByEvent(eventID string) ([]models.VolunteerRole, error) {
	query := `SELECT ` + roleColumns + ` FROM volunteer_roles
	          WHERE event_id = $1
	          ORDER BY shift_start NULLS LAST, role_label`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing roles for event %s: %v", ErrDatabaseError, eventID, err)
	}
	defer rows.Close()

	var roles []models.VolunteerRole
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning role row: %v", ErrDatabaseError, err)
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating role rows: %v", ErrDatabaseError, err)
	}
	return roles, nil
}
