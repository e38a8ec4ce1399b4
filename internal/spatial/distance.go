package spatial

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// DistanceMeters calculates the great-circle distance between two positions in
// meters using the Haversine formula
func DistanceMeters(a, b models.Position) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// IsInside reports whether the position lies within the zone's radius.
// A position exactly on the boundary counts as inside.
func IsInside(p models.Position, zone models.Zone) bool {
	return DistanceMeters(p, zone.Center()) <= zone.RadiusMeters
}

// Membership computes the derived distance/containment relation between a
// position and a zone
func Membership(p models.Position, zone models.Zone) models.ZoneMembership {
	d := DistanceMeters(p, zone.Center())
	return models.ZoneMembership{
		Zone:           zone,
		DistanceMeters: d,
		IsInside:       d <= zone.RadiusMeters,
	}
}

// DestinationPoint calculates the destination position given a start position,
// bearing (degrees, 0 is North) and distance in meters
func DestinationPoint(start models.Position, bearing, distance float64) models.Position {
	p := s2.LatLngFromDegrees(start.Latitude, start.Longitude)
	bearingRad := bearing * math.Pi / 180
	angularDistance := distance / EarthRadiusMeters

	latRad := p.Lat.Radians()
	lonRad := p.Lng.Radians()

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(angularDistance) +
		math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(bearingRad))

	lon2 := lonRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(lat2))

	return models.Position{
		Latitude:  lat2 * 180 / math.Pi,
		Longitude: lon2 * 180 / math.Pi,
	}
}
