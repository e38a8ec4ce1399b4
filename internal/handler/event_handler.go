package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/preparenow/alerts-backend-go/internal/models"
	"github.com/preparenow/alerts-backend-go/pkg/response"
)

type eventService interface {
	EventHistory(limit int) ([]models.Event, error)
	CriticalEvents() ([]models.Event, error)
	ClearEventHistory() error
}

// EventHandler handles HTTP requests for the zone-transition event history
type EventHandler struct {
	service eventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(service eventService) *EventHandler {
	return &EventHandler{service: service}
}

// Register mounts the event routes
func (h *EventHandler) Register(r *gin.RouterGroup) {
	r.GET("/events", h.List)
	r.GET("/events/critical", h.Critical)
	r.DELETE("/events", h.Clear)
}

// List handles GET /api/v1/events
func (h *EventHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error(c, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		limit = n
	}

	events, err := h.service.EventHistory(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to read event history", err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	response.Success(c, gin.H{"events": events, "total": len(events)})
}

// Critical handles GET /api/v1/events/critical
func (h *EventHandler) Critical(c *gin.Context) {
	events, err := h.service.CriticalEvents()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to read critical events", err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	response.Success(c, gin.H{"events": events, "total": len(events)})
}

// Clear handles DELETE /api/v1/events
func (h *EventHandler) Clear(c *gin.Context) {
	if err := h.service.ClearEventHistory(); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to clear event history", err)
		return
	}
	response.Success(c, nil)
}
