package handlers

import (
	"errors"
	"net/http"

	"volunteer_hub_backend/internal/services"
	"volunteer_hub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CheckinHandler serves the volunteer check-in state transitions.
type CheckinHandler struct {
	checkinService services.CheckinService
}

// NewCheckinHandler creates a new CheckinHandler.
func NewCheckinHandler(cs services.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: cs}
}

// CheckIn handles checking a volunteer in. Re-checking in after a checkout
// clears the checkout; checking in an already-checked-in volunteer conflicts.
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	signupID := c.Param("id")

	signup, err := h.checkinService.CheckIn(signupID)
	if err != nil {
		h.respondCheckinError(c, err, "CheckIn", signupID)
		return
	}
	c.JSON(http.StatusOK, signup)
}

// CheckOut handles checking a volunteer out.
func (h *CheckinHandler) CheckOut(c *gin.Context) {
	signupID := c.Param("id")

	signup, err := h.checkinService.CheckOut(signupID)
	if err != nil {
		h.respondCheckinError(c, err, "CheckOut", signupID)
		return
	}
	c.JSON(http.StatusOK, signup)
}

// SetNotesRequest carries free-text check-in notes. A null value clears them.
type SetNotesRequest struct {
	Notes *string `json:"notes"`
}

// SetNotes handles updating a signup's check-in notes.
func (h *CheckinHandler) SetNotes(c *gin.Context) {
	signupID := c.Param("id")

	var req SetNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	signup, err := h.checkinService.SetNotes(signupID, req.Notes)
	if err != nil {
		h.respondCheckinError(c, err, "SetNotes", signupID)
		return
	}
	c.JSON(http.StatusOK, signup)
}

// MarkRunningLate handles flagging a volunteer as running late. This also
// clears any check-in, since a present volunteer cannot be late.
func (h *CheckinHandler) MarkRunningLate(c *gin.Context) {
	signupID := c.Param("id")

	signup, err := h.checkinService.MarkRunningLate(signupID)
	if err != nil {
		h.respondCheckinError(c, err, "MarkRunningLate", signupID)
		return
	}
	c.JSON(http.StatusOK, signup)
}

func (h *CheckinHandler) respondCheckinError(c *gin.Context, err error, op, signupID string) {
	utils.LogError(err, op+": Error from checkinService for signup "+signupID)
	if errors.Is(err, services.ErrSignupNotFound) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Volunteer signup not found.", err.Error()))
	} else if errors.Is(err, services.ErrAlreadyCheckedIn) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Volunteer is already checked in.", err.Error()))
	} else if errors.Is(err, services.ErrCheckinPermission) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Update was rejected by the data store.", err.Error()))
	} else {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update check-in state.", "Internal error"))
	}
}
