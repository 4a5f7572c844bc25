package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nutriscope/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/search", handler.CombinedSearch)

		fdc := v1.Group("/fdc")
		{
			fdc.GET("/search", handler.FDCSearch)
			fdc.GET("/food", handler.FDCFood)
			fdc.POST("/foods", handler.FDCFoodsBatch)
		}

		cnf := v1.Group("/cnf")
		{
			cnf.GET("/search", handler.CNFSearch)
			cnf.GET("/food", handler.CNFFood)
		}

		off := v1.Group("/off")
		{
			off.GET("/search", handler.OFFSearch)
			off.GET("/product", handler.OFFProduct)
		}

		v1.GET("/nutrition/scale", handler.ScaleNutrition)
	}

	return router
}
