package router

import (
	"database/sql"

	"volunteer_hub_backend/internal/handlers"
	"volunteer_hub_backend/internal/realtime"
	"volunteer_hub_backend/internal/repositories"
	"volunteer_hub_backend/internal/roster"
	"volunteer_hub_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application. The roster cache
// manager and the websocket hub are shared with the push listener, which is
// constructed in main alongside this.
func Setup(engine *gin.Engine, db *sql.DB, caches *roster.Manager, hub *realtime.Hub) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	volunteerRepo := repositories.NewVolunteerRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db)
	rosterService := services.NewRosterService(volunteerRepo, roleRepo, eventRepo, caches)
	checkinService := services.NewCheckinService(volunteerRepo, caches, db)
	signupService := services.NewSignupService(volunteerRepo, contactRepo, roleRepo, eventRepo, db)
	noShowService := services.NewNoShowService(volunteerRepo, contactRepo, eventRepo, caches, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventRepo, roleRepo, noShowService)
	rosterHandler := handlers.NewRosterHandler(rosterService, hub)
	checkinHandler := handlers.NewCheckinHandler(checkinService)
	signupHandler := handlers.NewSignupHandler(signupService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)
	SetupPublicSignupRoutes(apiV1, signupHandler)
	SetupEventRoutes(apiV1, eventHandler, rosterHandler)
	SetupCheckinRoutes(apiV1, checkinHandler)
}
