package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/repositories"
	"volunteer_hub_backend/pkg/utils"
)

// --- Custom Service Errors for Signup ---
var (
	ErrEventClosed         = errors.New("event is closed to signups")
	ErrRoleNotFoundInEvent = errors.New("volunteer role not found for this event")
	ErrSignupValidation    = errors.New("signup data validation error")
)

// --- Signup DTOs ---
type CreateSignupRequest struct {
	RoleID string  `json:"role_id" binding:"required"`
	Name   string  `json:"name" binding:"required"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
}

// --- SignupService Interface ---
//
// The public signup path. Besides inserting the signup row it accumulates a
// CRM contact record: an existing contact is matched by digits-only phone so
// "(313) 555-0100" and "313-555-0100" land on the same record across events.
type SignupService interface {
	CreateSignup(eventID string, req CreateSignupRequest) (*models.VolunteerSignup, error)
}

type signupService struct {
	volunteerRepo repositories.VolunteerRepository
	contactRepo   repositories.ContactRepository
	roleRepo      repositories.RoleRepository
	eventRepo     repositories.EventRepository
	db            *sql.DB
}

// NewSignupService creates a new instance of SignupService.
func NewSignupService(
	vr repositories.VolunteerRepository,
	cr repositories.ContactRepository,
	rr repositories.RoleRepository,
	er repositories.EventRepository,
	db *sql.DB,
) SignupService {
	return &signupService{volunteerRepo: vr, contactRepo: cr, roleRepo: rr, eventRepo: er, db: db}
}

func (s *signupService) CreateSignup(eventID string, req CreateSignupRequest) (*models.VolunteerSignup, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name is required", ErrSignupValidation)
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrSignupValidation)
	}

	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event for signup: %w", err)
	}
	if event.Status == models.EventStatusClosed {
		return nil, ErrEventClosed
	}

	role, err := s.roleRepo.GetRoleByID(req.RoleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoleNotFoundInEvent
		}
		return nil, fmt.Errorf("failed to load role for signup: %w", err)
	}
	if role.EventID != eventID {
		return nil, ErrRoleNotFoundInEvent
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin signup transaction: %w", err)
	}
	defer tx.Rollback()

	// Contact writes share the signup transaction so a failed signup insert
	// does not leave an orphaned contact row behind.
	contactID, err := s.resolveContact(tx, req)
	if err != nil {
		return nil, err
	}

	signup := &models.VolunteerSignup{
		EventID:   eventID,
		RoleID:    req.RoleID,
		ContactID: contactID,
		Name:      strings.TrimSpace(req.Name),
		Phone:     req.Phone,
		Email:     req.Email,
	}
	if _, err := s.volunteerRepo.CreateSignup(tx, signup); err != nil {
		return nil, fmt.Errorf("failed to create signup: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit signup: %w", err)
	}

	return s.volunteerRepo.GetSignupByID(signup.ID)
}

// resolveContact finds or creates the CRM contact behind a signup. Signups
// without a phone stay contactless; there is nothing reliable to match on.
func (s *signupService) resolveContact(executor repositories.SQLExecutor, req CreateSignupRequest) (*string, error) {
	if req.Phone == nil {
		return nil, nil
	}
	digits := phoneDigits(*req.Phone)
	if digits == "" {
		return nil, nil
	}

	existing, err := s.contactRepo.FindContactByPhoneDigits(digits)
	if err == nil {
		// Backfill an email the contact record is missing; never overwrite
		// what an organizer may have curated.
		if existing.Email == nil && req.Email != nil {
			existing.Email = req.Email
			if err := s.contactRepo.UpdateContact(executor, existing); err != nil {
				return nil, fmt.Errorf("failed to update contact: %w", err)
			}
		}
		return &existing.ID, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to match contact by phone: %w", err)
	}

	contact := &models.Contact{
		FullName:    strings.TrimSpace(req.Name),
		PhoneNumber: req.Phone,
		Email:       req.Email,
	}
	id, err := s.contactRepo.CreateContact(executor, contact)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &id, nil
}

func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
