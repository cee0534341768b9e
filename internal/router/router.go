package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wellspring-app/nutrition-service/config"
	"github.com/wellspring-app/nutrition-service/internal/api"
	"github.com/wellspring-app/nutrition-service/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	cfg *config.Config,
	nutritionHandler *api.NutritionHandler,
	photoHandler *api.PhotoHandler,
	tokenValidator middleware.TokenValidator,
	uploadLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Nutrition lookup routes
	nutrition := v1.Group("/nutrition")
	{
		nutrition.GET("/search", nutritionHandler.Search)
		nutrition.GET("/barcode/:code", nutritionHandler.Barcode)
		nutrition.POST("/estimate", nutritionHandler.Estimate)
	}

	// Community photo routes; listing is public, uploading requires a
	// bearer token from the main journal backend.
	v1.GET("/community-photos/:fdcId", photoHandler.List)

	upload := v1.Group("/community-photos")
	upload.Use(middleware.AuthMiddleware(tokenValidator))
	if uploadLimiter != nil {
		upload.Use(uploadLimiter.RateLimitMiddleware())
	}
	{
		upload.POST("", photoHandler.Upload)
	}

	return router
}
