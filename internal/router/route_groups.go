package router

import (
	"volunteer_hub_backend/internal/handlers"
	"volunteer_hub_backend/internal/middleware"
	"volunteer_hub_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterUser)
		authRoutes.POST("/login", authHandler.LoginUser)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/logout", authHandler.LogoutUser)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupPublicSignupRoutes sets up the unauthenticated signup route.
// Volunteers have no account; the form posts directly.
func SetupPublicSignupRoutes(apiGroup *gin.RouterGroup, signupHandler *handlers.SignupHandler) {
	apiGroup.POST("/events/:id/signups", signupHandler.CreateSignup)
}

// SetupEventRoutes sets up the event and roster routes.
func SetupEventRoutes(apiGroup *gin.RouterGroup, eventHandler *handlers.EventHandler, rosterHandler *handlers.RosterHandler) {
	eventRoutes := apiGroup.Group("/events")
	eventRoutes.Use(middleware.AuthMiddleware())
	{
		eventRoutes.GET("", eventHandler.GetEvents)
		eventRoutes.GET("/:id", eventHandler.GetEventByID)
		eventRoutes.GET("/:id/roster", rosterHandler.GetRoster)
		eventRoutes.GET("/:id/roster/ws", rosterHandler.RosterWS)

		// Closing an event runs the no-show resolver; organizers only.
		closeRoutes := eventRoutes.Group("")
		closeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOrganizer))
		{
			closeRoutes.POST("/:id/close", eventHandler.CloseEvent)
		}
	}
}

// SetupCheckinRoutes sets up the volunteer check-in state routes. Check-in
// and check-out are organizer actions; a delegated point of contact may only
// touch notes and the running-late flag.
func SetupCheckinRoutes(apiGroup *gin.RouterGroup, checkinHandler *handlers.CheckinHandler) {
	volunteerRoutes := apiGroup.Group("/volunteers")
	volunteerRoutes.Use(middleware.AuthMiddleware())
	{
		organizerRoutes := volunteerRoutes.Group("")
		organizerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOrganizer))
		{
			organizerRoutes.PATCH("/:id/check-in", checkinHandler.CheckIn)
			organizerRoutes.PATCH("/:id/check-out", checkinHandler.CheckOut)
		}

		delegatedRoutes := volunteerRoutes.Group("")
		delegatedRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOrganizer, models.RolePoc))
		{
			delegatedRoutes.PATCH("/:id/notes", checkinHandler.SetNotes)
			delegatedRoutes.PATCH("/:id/running-late", checkinHandler.MarkRunningLate)
		}
	}
}
