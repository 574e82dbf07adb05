package models

import "time"

// VolunteerSignup is one volunteer's signup for a role at an event.
//
// CheckedOutAt is only meaningful when CheckedInAt is set; a row with a
// checkout but no check-in is a defective bucket the display logic never
// treats as checked in. CheckInNotes is free text and, by a convention
// inherited from the data, may encode a "running late" pseudo-status via
// substring. That convention is interpreted in exactly one place
// (roster.DeriveStatus) and written in exactly one place (the
// update_volunteer_checkin_status SQL function).
type VolunteerSignup struct {
	ID           string     `json:"id" db:"id"`
	EventID      string     `json:"event_id" db:"event_id"`
	RoleID       string     `json:"role_id" db:"role_id"`
	ContactID    *string    `json:"contact_id,omitempty" db:"contact_id"`
	Name         string     `json:"name" db:"name"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	Email        *string    `json:"email,omitempty" db:"email"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty" db:"checked_out_at"`
	CheckInNotes *string    `json:"check_in_notes,omitempty" db:"check_in_notes"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// CheckinFields is the patchable projection of a signup: the three fields the
// roster cache merges on, both for optimistic local patches and for rows
// delivered by the push channel.
type CheckinFields struct {
	CheckedInAt  *time.Time `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at"`
	CheckInNotes *string    `json:"check_in_notes"`
}

// Checkin returns the signup's current check-in field projection.
func (s *VolunteerSignup) Checkin() CheckinFields {
	return CheckinFields{
		CheckedInAt:  s.CheckedInAt,
		CheckedOutAt: s.CheckedOutAt,
		CheckInNotes: s.CheckInNotes,
	}
}

// NoShowReport is the result of resolving no-shows when an event is closed.
type NoShowReport struct {
	EventTitle      string           `json:"event_title"`
	NoShowCount     int              `json:"no_show_count"`
	RemovedContacts []RemovedContact `json:"removed_contacts"`
}

// RemovedContact identifies a contact record deleted by the no-show resolver.
type RemovedContact struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
}
