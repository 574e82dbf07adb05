package handlers

import (
	"errors"
	"net/http"

	"volunteer_hub_backend/internal/realtime"
	"volunteer_hub_backend/internal/roster"
	"volunteer_hub_backend/internal/services"
	"volunteer_hub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// RosterHandler serves roster reads and the live roster websocket.
type RosterHandler struct {
	rosterService services.RosterService
	hub           *realtime.Hub
	upgrader      websocket.Upgrader
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(rs services.RosterService, hub *realtime.Hub) *RosterHandler {
	return &RosterHandler{
		rosterService: rs,
		hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS layer in front of the API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// GetRoster handles fetching an event's roster, filtered by an optional text
// search and status facet ("all", "in", "not-in").
func (h *RosterHandler) GetRoster(c *gin.Context) {
	eventID := c.Param("id")
	search := c.Query("search")
	facet := roster.ParseFacet(c.Query("status"))

	view, err := h.rosterService.GetRoster(eventID, search, facet)
	if err != nil {
		utils.LogError(err, "GetRoster: Error from rosterService.GetRoster for event "+eventID)
		if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch roster.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// RosterWS upgrades the connection and streams roster updates for the event
// until the client disconnects. The event must exist; a fresh subscriber is
// expected to fetch the full roster over GET first and then apply patches.
func (h *RosterHandler) RosterWS(c *gin.Context) {
	eventID := c.Param("id")

	if _, err := h.rosterService.GetRoster(eventID, "", roster.FacetAll); err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Event not found.", err.Error()))
		} else {
			utils.LogError(err, "RosterWS: Error priming roster for event "+eventID)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to open roster stream.", "Internal error"))
		}
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogError(err, "RosterWS: Failed to upgrade connection for event "+eventID)
		return
	}

	client := realtime.NewClient(conn, eventID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.hub)
}
