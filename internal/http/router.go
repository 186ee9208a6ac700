// Package http provides the HTTP API for dataset inspection.
package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.climdata.io/sunshine-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(inspectUC *usecase.InspectUseCase) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(inspectUC)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/dataset", handler.GetDataset)
	v1.GET("/stats", handler.GetStats)
	v1.GET("/point", handler.GetPoint)
	v1.GET("/render", handler.GetRender)
	v1.GET("/tidy", handler.GetTidy)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
