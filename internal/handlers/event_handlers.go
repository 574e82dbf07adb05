package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"volunteer_hub_backend/internal/models"
	"volunteer_hub_backend/internal/repositories"
	"volunteer_hub_backend/internal/services"
	"volunteer_hub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EventHandler serves event listings and the close-event flow.
type EventHandler struct {
	eventRepo     repositories.EventRepository
	roleRepo      repositories.RoleRepository
	noShowService services.NoShowService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(er repositories.EventRepository, rr repositories.RoleRepository, ns services.NoShowService) *EventHandler {
	return &EventHandler{eventRepo: er, roleRepo: rr, noShowService: ns}
}

// GetEvents handles fetching events with pagination and an optional status filter.
func (h *EventHandler) GetEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	events, totalCount, err := h.eventRepo.GetEvents(page, pageSize, utils.NewNullString(status))
	if err != nil {
		utils.LogError(err, "GetEvents: Error from eventRepo.GetEvents")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch events.", "Internal error"))
		return
	}

	if events == nil {
		events = []models.Event{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      events,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetEventByID handles fetching a single event together with its volunteer roles.
func (h *EventHandler) GetEventByID(c *gin.Context) {
	eventID := c.Param("id")

	event, err := h.eventRepo.GetEventByID(eventID)
	if err != nil {
		utils.LogError(err, "GetEventByID: Error from eventRepo.GetEventByID for ID "+eventID)
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch event.", "Internal error"))
		}
		return
	}

	roles, err := h.roleRepo.GetRolesByEvent(eventID)
	if err != nil {
		utils.LogError(err, "GetEventByID: Error from roleRepo.GetRolesByEvent for ID "+eventID)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch event roles.", "Internal error"))
		return
	}
	event.Roles = roles

	c.JSON(http.StatusOK, event)
}

// CloseEventRequest controls the close-event flow. RemoveNoShowContacts asks
// the resolver to also delete orphaned contact records for the no-shows.
type CloseEventRequest struct {
	RemoveNoShowContacts bool `json:"remove_no_show_contacts"`
}

// CloseEvent resolves no-shows for an event and transitions it to closed.
// Responds with the no-show report.
func (h *EventHandler) CloseEvent(c *gin.Context) {
	eventID := c.Param("id")

	var req CloseEventRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
	}

	report, err := h.noShowService.ResolveEvent(eventID, req.RemoveNoShowContacts)
	if err != nil {
		utils.LogError(err, "CloseEvent: Error from noShowService.ResolveEvent for ID "+eventID)
		if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", err.Error()))
		} else if errors.Is(err, services.ErrEventAlreadyClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Event is already closed.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to close event.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, report)
}
