package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/preparenow/alerts-backend-go/internal/models"
	"github.com/preparenow/alerts-backend-go/internal/position"
	"github.com/preparenow/alerts-backend-go/pkg/response"
)

type zoneService interface {
	ReplaceZones(zones []models.Zone)
	NearbyZones(ctx context.Context, at *models.Position) ([]models.ZoneMembership, error)
	ActiveZones(ctx context.Context) ([]models.ZoneMembership, error)
}

// ZoneHandler handles HTTP requests for the zone catalog
type ZoneHandler struct {
	service zoneService
}

// NewZoneHandler creates a new zone handler
func NewZoneHandler(service zoneService) *ZoneHandler {
	return &ZoneHandler{service: service}
}

// Register mounts the zone routes
func (h *ZoneHandler) Register(r *gin.RouterGroup) {
	r.PUT("/zones", h.Replace)
	r.GET("/zones/nearby", h.Nearby)
	r.GET("/zones/active", h.Active)
}

// Replace handles PUT /api/v1/zones, the zone feed's delivery point. Any
// delivery is an authoritative replacement of the catalog.
func (h *ZoneHandler) Replace(c *gin.Context) {
	var zones []models.Zone
	if err := c.ShouldBindJSON(&zones); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid zone payload", err)
		return
	}
	for _, z := range zones {
		if err := validateZone(z); err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid zone payload", err)
			return
		}
	}

	h.service.ReplaceZones(zones)
	response.Success(c, gin.H{"accepted": len(zones)})
}

// Nearby handles GET /api/v1/zones/nearby. With lat/lon query parameters the
// memberships are computed against that point; without them, against the
// current position.
func (h *ZoneHandler) Nearby(c *gin.Context) {
	var at *models.Position
	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw != "" || lonRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			response.Error(c, http.StatusBadRequest, "Invalid lat/lon parameters", nil)
			return
		}
		at = &models.Position{Latitude: lat, Longitude: lon}
	}

	zones, err := h.service.NearbyZones(c.Request.Context(), at)
	if err != nil {
		writePositionError(c, err)
		return
	}
	if zones == nil {
		zones = []models.ZoneMembership{}
	}
	response.Success(c, gin.H{"zones": zones, "total": len(zones)})
}

// Active handles GET /api/v1/zones/active
func (h *ZoneHandler) Active(c *gin.Context) {
	zones, err := h.service.ActiveZones(c.Request.Context())
	if err != nil {
		writePositionError(c, err)
		return
	}
	if zones == nil {
		zones = []models.ZoneMembership{}
	}
	response.Success(c, gin.H{"zones": zones, "total": len(zones)})
}

func writePositionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidPosition):
		response.Error(c, http.StatusBadRequest, "Invalid position", err)
	case errors.Is(err, position.ErrNoLocation):
		response.Error(c, http.StatusServiceUnavailable, "No location available; enable the developer override to simulate one", err)
	default:
		response.Error(c, http.StatusInternalServerError, "Failed to compute zone memberships", err)
	}
}

func validateZone(z models.Zone) error {
	if z.ID == "" {
		return fmt.Errorf("zone id is required")
	}
	if z.RadiusMeters <= 0 {
		return fmt.Errorf("zone %s: radius must be positive", z.ID)
	}
	if err := z.Center().Validate(); err != nil {
		return fmt.Errorf("zone %s: %w", z.ID, err)
	}
	return nil
}
