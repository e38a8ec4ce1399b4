package models

// HazardType classifies the kind of danger a zone represents
type HazardType string

const (
	HazardFlood      HazardType = "flood"
	HazardFire       HazardType = "fire"
	HazardStorm      HazardType = "storm"
	HazardEarthquake HazardType = "earthquake"
	HazardEvacuation HazardType = "evacuation"
	HazardTornado    HazardType = "tornado"
	HazardHurricane  HazardType = "hurricane"
	HazardTsunami    HazardType = "tsunami"
	HazardOther      HazardType = "other"
)

// Severity is the danger level of a zone, totally ordered info < warning < high < critical
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordering of the severity; unknown severities rank below info
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is as dangerous as other or more
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// Zone represents a circular hazard region
type Zone struct {
	ID           string     `json:"id"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	RadiusMeters float64    `json:"radiusMeters"`
	HazardType   HazardType `json:"hazardType"`
	Severity     Severity   `json:"severity"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Active       bool       `json:"active"`
}

// Center returns the zone center as a Position
func (z Zone) Center() Position {
	return Position{Latitude: z.Latitude, Longitude: z.Longitude}
}

// ZoneMembership is a zone annotated with its relation to a position.
// Derived on demand, never stored.
type ZoneMembership struct {
	Zone
	DistanceMeters float64 `json:"distanceMeters"`
	IsInside       bool    `json:"isInside"`
}
