package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preparenow/alerts-backend-go/internal/monitor"
	"github.com/preparenow/alerts-backend-go/internal/position"
	"github.com/preparenow/alerts-backend-go/pkg/response"
)

type monitoringService interface {
	StartMonitoring(ctx context.Context) error
	StopMonitoring() error
	Status() (monitor.State, bool)
	ManualCheck(ctx context.Context) ([]string, error)
}

// MonitoringHandler handles HTTP requests for the monitoring lifecycle
type MonitoringHandler struct {
	service monitoringService
}

// NewMonitoringHandler creates a new monitoring handler
func NewMonitoringHandler(service monitoringService) *MonitoringHandler {
	return &MonitoringHandler{service: service}
}

// Register mounts the monitoring routes
func (h *MonitoringHandler) Register(r *gin.RouterGroup) {
	r.POST("/monitoring/start", h.Start)
	r.POST("/monitoring/stop", h.Stop)
	r.GET("/monitoring/status", h.Status)
	r.POST("/monitoring/check", h.Check)
}

// Start handles POST /api/v1/monitoring/start
func (h *MonitoringHandler) Start(c *gin.Context) {
	if err := h.service.StartMonitoring(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, monitor.ErrNoZones):
			response.Error(c, http.StatusConflict, "No zones available; retry after the zone feed delivers", err)
		case errors.Is(err, position.ErrNoLocation):
			response.Error(c, http.StatusServiceUnavailable, "No location available; enable the developer override to simulate one", err)
		case errors.Is(err, position.ErrPermissionDenied):
			response.Error(c, http.StatusForbidden, "Location permission denied", err)
		default:
			response.Error(c, http.StatusBadGateway, "Failed to start monitoring", err)
		}
		return
	}
	state, grace := h.service.Status()
	response.Success(c, gin.H{"state": state, "graceActive": grace})
}

// Stop handles POST /api/v1/monitoring/stop
func (h *MonitoringHandler) Stop(c *gin.Context) {
	if err := h.service.StopMonitoring(); err != nil {
		response.Error(c, http.StatusBadGateway, "Failed to stop monitoring", err)
		return
	}
	state, grace := h.service.Status()
	response.Success(c, gin.H{"state": state, "graceActive": grace})
}

// Status handles GET /api/v1/monitoring/status
func (h *MonitoringHandler) Status(c *gin.Context) {
	state, grace := h.service.Status()
	response.Success(c, gin.H{"state": state, "graceActive": grace})
}

// Check handles POST /api/v1/monitoring/check
func (h *MonitoringHandler) Check(c *gin.Context) {
	triggered, err := h.service.ManualCheck(c.Request.Context())
	if err != nil {
		if errors.Is(err, position.ErrNoLocation) {
			response.Error(c, http.StatusServiceUnavailable, "No location available; enable the developer override to simulate one", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Manual check failed", err)
		return
	}
	if triggered == nil {
		triggered = []string{}
	}
	response.Success(c, gin.H{"triggeredZoneIds": triggered})
}
