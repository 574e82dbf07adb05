package models

import (
	"encoding/json"
	"time"
)

// Event statuses used across the application.
const (
	EventStatusUpcoming = "upcoming"
	EventStatusActive   = "active"
	EventStatusClosed   = "closed"
)

// Event represents a single volunteer event with time-boxed roles.
type Event struct {
	ID          string          `json:"id" db:"id"`
	Title       string          `json:"title" db:"title" binding:"required"`
	Description *string         `json:"description,omitempty" db:"description"`
	Location    *string         `json:"location,omitempty" db:"location"`
	StartsAt    time.Time       `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time       `json:"ends_at" db:"ends_at"`
	Status      string          `json:"status" db:"status"`
	OrganizerID *int64          `json:"organizer_id,omitempty" db:"organizer_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	Roles       []VolunteerRole `json:"roles,omitempty"` // Populated on detail reads
}

// PocContact is a point-of-contact descriptor attached to a volunteer role.
type PocContact struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// VolunteerRole represents one time-boxed role within an event.
//
// Point-of-contact data exists in three historical shapes: the current
// poc_contacts array, a legacy singular poc_contact object, and an even older
// suggested_poc column that holds either a JSON string or a JSON array of
// strings. All three are preserved on the model; normalization happens at the
// search-text boundary, never in business logic.
type VolunteerRole struct {
	ID           string          `json:"id" db:"id"`
	EventID      string          `json:"event_id" db:"event_id"`
	RoleLabel    string          `json:"role_label" db:"role_label"`
	ShiftStart   *time.Time      `json:"shift_start,omitempty" db:"shift_start"`
	ShiftEnd     *time.Time      `json:"shift_end,omitempty" db:"shift_end"`
	Capacity     *int            `json:"capacity,omitempty" db:"capacity"`
	PocContacts  []PocContact    `json:"poc_contacts,omitempty"`
	PocContact   *PocContact     `json:"poc_contact,omitempty"`
	SuggestedPoc json.RawMessage `json:"suggested_poc,omitempty"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}
