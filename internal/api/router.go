package api

import (
	"github.com/gin-gonic/gin"

	"github.com/PRichardsKSMTA/alvys-ingest/internal/api/handler"
	"github.com/PRichardsKSMTA/alvys-ingest/internal/api/middleware"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	runner handler.Runner,
	failures handler.FailureLister,
	mode string,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	healthHandler := handler.NewHealthHandler()
	runsHandler := handler.NewRunsHandler(runner, failures)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/runs", runsHandler.StartRun)
		v1.GET("/runs/failed", runsHandler.ListFailed)
	}

	return r
}
