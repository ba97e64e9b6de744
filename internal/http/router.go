package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/geo-skeletons/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(catalog *usecase.Catalog) *gin.Engine {
	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	handler := NewHandler(catalog)

	v1 := router.Group("/v1")
	datasets := v1.Group("/datasets")
	datasets.GET("", handler.ListDatasets)
	datasets.GET("/:name", handler.GetDataset)
	datasets.GET("/:name/fields/:field", handler.GetField)
	datasets.GET("/:name/nearest", handler.GetNearest)
	datasets.GET("/:name/sample", handler.GetSample)
	datasets.GET("/:name/xy", handler.GetXY)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
