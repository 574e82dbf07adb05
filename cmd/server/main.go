package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"volunteer_hub_backend/internal/database"
	"volunteer_hub_backend/internal/realtime"
	"volunteer_hub_backend/internal/roster"
	routerpkg "volunteer_hub_backend/internal/router"
	"volunteer_hub_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	utils.InitLogger()
	utils.InitJWT()

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "volunteer_hub_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "volunteer_hub_password")
	dbName := utils.Getenv("DB_NAME", "volunteer_hub_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "db_schema.sql")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	engine := gin.Default()

	// Add GinLogger middleware for request logging
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"} // Default origins
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Roster caches and the websocket hub are shared between the HTTP layer
	// and the database notification listener.
	caches := roster.NewManager()
	hub := realtime.NewHub()

	dbConn := database.GetDB()
	routerpkg.Setup(engine, dbConn, caches, hub)

	listener := realtime.NewListener(database.ConnString(), caches, hub)
	if err := listener.Start(); err != nil {
		utils.LogError(err, "Failed to start signup change listener")
		log.Fatalf("Failed to start signup change listener: %v", err)
	}
	defer listener.Stop()

	// Server port configuration
	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
