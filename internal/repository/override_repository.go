package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

// OverrideRepository persists the operator's test-mode position override so it
// survives process restarts
type OverrideRepository struct {
	db *sql.DB
}

// NewOverrideRepository creates a new override repository
func NewOverrideRepository(db *sql.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// Save stores the override state, replacing any previous one
func (r *OverrideRepository) Save(enabled bool, p models.Position) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	_, err := r.db.Exec(`INSERT INTO position_override (id, enabled, latitude, longitude, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET enabled = excluded.enabled,
			latitude = excluded.latitude, longitude = excluded.longitude,
			updated_at = excluded.updated_at`,
		enabledInt, p.Latitude, p.Longitude, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	return nil
}

// Load returns the stored override state; found is false when none was saved
func (r *OverrideRepository) Load() (enabled bool, p models.Position, found bool, err error) {
	var enabledInt int
	row := r.db.QueryRow(`SELECT enabled, latitude, longitude FROM position_override WHERE id = 1`)
	if err := row.Scan(&enabledInt, &p.Latitude, &p.Longitude); err != nil {
		if err == sql.ErrNoRows {
			return false, models.Position{}, false, nil
		}
		return false, models.Position{}, false, fmt.Errorf("failed to load override: %w", err)
	}
	return enabledInt == 1, p, true, nil
}
