package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preparenow/alerts-backend-go/internal/models"
	"github.com/preparenow/alerts-backend-go/pkg/response"
)

type overrideService interface {
	SetOverride(enabled bool, p models.Position) error
	Override() (bool, models.Position)
}

type overrideRequest struct {
	Enabled   bool    `json:"enabled"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DeveloperHandler handles HTTP requests for the test-mode position override
type DeveloperHandler struct {
	service overrideService
}

// NewDeveloperHandler creates a new developer handler
func NewDeveloperHandler(service overrideService) *DeveloperHandler {
	return &DeveloperHandler{service: service}
}

// Register mounts the developer routes
func (h *DeveloperHandler) Register(r *gin.RouterGroup) {
	r.PUT("/developer/override", h.Set)
	r.GET("/developer/override", h.Get)
}

// Set handles PUT /api/v1/developer/override
func (h *DeveloperHandler) Set(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid override payload", err)
		return
	}

	pos := models.Position{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := h.service.SetOverride(req.Enabled, pos); err != nil {
		if errors.Is(err, models.ErrInvalidPosition) {
			response.Error(c, http.StatusBadRequest, "Invalid override position", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to set override", err)
		return
	}

	enabled, p := h.service.Override()
	response.Success(c, gin.H{"enabled": enabled, "position": p})
}

// Get handles GET /api/v1/developer/override
func (h *DeveloperHandler) Get(c *gin.Context) {
	enabled, p := h.service.Override()
	response.Success(c, gin.H{"enabled": enabled, "position": p})
}
