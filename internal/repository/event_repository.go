package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

// EventRepository handles database operations for the zone-transition event log.
// The log is append-only; trimming to the retention cap is the only removal
// besides an explicit Clear.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert appends a transition event
func (r *EventRepository) Insert(e models.Event) error {
	_, err := r.db.Exec(`INSERT INTO zone_events
		(id, zone_id, transition, hazard_type, severity, title, description, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ZoneID, string(e.Transition), string(e.HazardType), string(e.Severity),
		e.Title, e.Description, e.OccurredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Trim keeps only the newest cap events
func (r *EventRepository) Trim(cap int) error {
	_, err := r.db.Exec(`DELETE FROM zone_events WHERE id NOT IN (
		SELECT id FROM zone_events ORDER BY occurred_at DESC, rowid DESC LIMIT ?)`, cap)
	if err != nil {
		return fmt.Errorf("failed to trim events: %w", err)
	}
	return nil
}

// List returns the newest events first, up to limit (0 means no limit beyond
// the retention cap)
func (r *EventRepository) List(limit int) ([]models.Event, error) {
	query := `SELECT id, zone_id, transition, hazard_type, severity, title, description, occurred_at
		FROM zone_events ORDER BY occurred_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CriticalEntries returns retained enter events with severity high or critical,
// newest first
func (r *EventRepository) CriticalEntries() ([]models.Event, error) {
	rows, err := r.db.Query(`SELECT id, zone_id, transition, hazard_type, severity, title, description, occurred_at
		FROM zone_events
		WHERE transition = ? AND severity IN (?, ?)
		ORDER BY occurred_at DESC, rowid DESC`,
		string(models.TransitionEnter), string(models.SeverityHigh), string(models.SeverityCritical))
	if err != nil {
		return nil, fmt.Errorf("failed to query critical events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LastTransition returns the most recent retained event for the
// (zoneID, transition) pair, or nil if none exists
func (r *EventRepository) LastTransition(zoneID string, t models.TransitionType) (*models.Event, error) {
	row := r.db.QueryRow(`SELECT id, zone_id, transition, hazard_type, severity, title, description, occurred_at
		FROM zone_events WHERE zone_id = ? AND transition = ?
		ORDER BY occurred_at DESC, rowid DESC LIMIT 1`, zoneID, string(t))

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last transition: %w", err)
	}
	return e, nil
}

// HasEnter reports whether any retained enter event exists for the zone
func (r *EventRepository) HasEnter(zoneID string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM zone_events WHERE zone_id = ? AND transition = ?`,
		zoneID, string(models.TransitionEnter)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query enter events: %w", err)
	}
	return n > 0, nil
}

// Clear deletes the whole event log
func (r *EventRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM zone_events`); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	var transition, hazard, severity, occurredAt string
	err := row.Scan(&e.ID, &e.ZoneID, &transition, &hazard, &severity, &e.Title, &e.Description, &occurredAt)
	if err != nil {
		return nil, err
	}
	e.Transition = models.TransitionType(transition)
	e.HazardType = models.HazardType(hazard)
	e.Severity = models.Severity(severity)
	ts, err := time.Parse(time.RFC3339Nano, occurredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
	}
	e.OccurredAt = ts
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
