package repositories

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapCheckinStatusError(t *testing.T) {
	// The stored function raises SQLSTATE 22023 for an unknown action.
	unknownAction := &pq.Error{Code: "22023", Message: "unknown check-in action: archive"}
	err := mapCheckinStatusError("s1", "archive", unknownAction)
	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.Contains(t, err.Error(), `invalid check-in action "archive"`)

	// Any other failure keeps the generic wrapping.
	err = mapCheckinStatusError("s1", "notes", fmt.Errorf("connection reset"))
	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.Contains(t, err.Error(), "update_volunteer_checkin_status for signup s1")

	// errors.As digs the pq error out of wrapping layers too.
	wrapped := fmt.Errorf("query failed: %w", &pq.Error{Code: "22023"})
	assert.Contains(t, mapCheckinStatusError("s1", "archive", wrapped).Error(), "invalid check-in action")
}
