package models

import "time"

// TransitionType is the direction of a zone boundary crossing
type TransitionType string

const (
	TransitionEnter TransitionType = "enter"
	TransitionExit  TransitionType = "exit"
)

// Event is an immutable record of a zone transition. Zone fields are
// denormalized at transition time because the zone may later disappear
// from the catalog.
type Event struct {
	ID          string         `json:"id"`
	ZoneID      string         `json:"zoneId"`
	Transition  TransitionType `json:"transitionType"`
	HazardType  HazardType     `json:"hazardType"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	OccurredAt  time.Time      `json:"timestamp"`
}
