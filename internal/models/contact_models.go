package models

import "time"

// Contact is a CRM-style record that accumulates across events. One contact
// may back many signups; contacts are matched by digits-only phone so
// punctuation differences do not fork records.
type Contact struct {
	ID          string    `json:"id" db:"id"`
	FullName    string    `json:"full_name" db:"full_name" binding:"required"`
	PhoneNumber *string   `json:"phone_number,omitempty" db:"phone_number"`
	Email       *string   `json:"email,omitempty" db:"email"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
