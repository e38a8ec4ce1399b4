package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/handler"
	"github.com/preparenow/alerts-backend-go/internal/middleware"
	"github.com/preparenow/alerts-backend-go/internal/service"
)

// SetupRouter builds the gin engine with all routes mounted
func SetupRouter(svc *service.MonitoringService, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Alerts Backend API is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		handler.NewMonitoringHandler(svc).Register(v1)
		handler.NewEventHandler(svc).Register(v1)
		handler.NewZoneHandler(svc).Register(v1)
		handler.NewDeveloperHandler(svc).Register(v1)
	}

	return r
}
