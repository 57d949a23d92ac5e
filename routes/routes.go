package routes

import (
	"time"

	"fundimatch/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all endpoints on the router.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthHandler)

	api := r.Group("/api")
	{
		api.POST("/match", handlers.MatchHandler)
		api.GET("/locales", handlers.LocalesHandler)
		api.GET("/professions", handlers.ProfessionsHandler)
		api.POST("/admin/reload", handlers.ReloadHandler)
	}
}
