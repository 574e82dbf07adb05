package handlers

import (
	"errors"
	"net/http"

	"volunteer_hub_backend/internal/services"
	"volunteer_hub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SignupHandler serves the public volunteer signup endpoint.
type SignupHandler struct {
	signupService services.SignupService
}

// NewSignupHandler creates a new SignupHandler.
func NewSignupHandler(ss services.SignupService) *SignupHandler {
	return &SignupHandler{signupService: ss}
}

// CreateSignup handles a volunteer signing up for a role at an event. This
// endpoint is public; volunteers have no account.
func (h *SignupHandler) CreateSignup(c *gin.Context) {
	eventID := c.Param("id")

	var req services.CreateSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateSignup: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	signup, err := h.signupService.CreateSignup(eventID, req)
	if err != nil {
		utils.LogError(err, "CreateSignup: Error from signupService.CreateSignup for event "+eventID)
		if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", err.Error()))
		} else if errors.Is(err, services.ErrEventClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Event is closed to signups.", err.Error()))
		} else if errors.Is(err, services.ErrRoleNotFoundInEvent) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Volunteer role not found for this event.", err.Error()))
		} else if errors.Is(err, services.ErrSignupValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create signup.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, signup)
}
