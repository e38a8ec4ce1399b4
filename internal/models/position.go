package models

import "errors"

// ErrInvalidPosition is returned when a latitude/longitude pair is out of range
var ErrInvalidPosition = errors.New("position out of range: latitude must be in [-90,90], longitude in [-180,180]")

// Position is a single latitude/longitude reading in degrees
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the coordinate ranges
func (p Position) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidPosition
	}
	return nil
}
