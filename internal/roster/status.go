package roster

import (
	"strings"

	"volunteer_hub_backend/internal/models"
)

// Status is the displayable check-in state of a volunteer signup.
type Status string

const (
	StatusCheckedIn    Status = "checked-in"
	StatusRunningLate  Status = "running-late"
	StatusNotCheckedIn Status = "not-checked-in"
)

// runningLateMarker is the substring convention that encodes the
// running-late pseudo-status inside free-text notes. Nothing outside this
// file may sniff notes text for it.
const runningLateMarker = "running late"

// StatusInfo pairs the derived status with its display label and badge
// variant.
type StatusInfo struct {
	Status  Status `json:"status"`
	Label   string `json:"label"`
	Variant string `json:"variant"`
}

// DeriveStatus maps a signup to exactly one of three displayable states.
// Priority order, first match wins:
//
//  1. checked_in_at set and checked_out_at unset -> checked-in
//  2. not checked in and notes contain "running late" -> running-late
//  3. everything else -> not-checked-in
//
// There is deliberately no "checked-out" state: a volunteer who checked out
// falls through to not-checked-in, and the checked-in counts depend on that
// asymmetry.
func DeriveStatus(s *models.VolunteerSignup) StatusInfo {
	if s.CheckedInAt != nil && s.CheckedOutAt == nil {
		return StatusInfo{Status: StatusCheckedIn, Label: "Checked In", Variant: "success"}
	}
	if s.CheckedInAt == nil && s.CheckInNotes != nil {
		notes := strings.ToLower(strings.TrimSpace(*s.CheckInNotes))
		if strings.Contains(notes, runningLateMarker) {
			return StatusInfo{Status: StatusRunningLate, Label: "Running Late", Variant: "warning"}
		}
	}
	return StatusInfo{Status: StatusNotCheckedIn, Label: "Not Checked In", Variant: "muted"}
}

// IsCheckedIn reports whether the signup derives to checked-in. Used for the
// roster's checked-in count and the "in"/"not-in" status facet.
func IsCheckedIn(s *models.VolunteerSignup) bool {
	return DeriveStatus(s).Status == StatusCheckedIn
}
