package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

// EventStore is the persistence surface the gate admits events into
type EventStore interface {
	Insert(e models.Event) error
	Trim(cap int) error
	LastTransition(zoneID string, t models.TransitionType) (*models.Event, error)
	HasEnter(zoneID string) (bool, error)
}

// Gate is the dedup/cooldown decision point. Admission and the log write are
// a single operation: callers can never check and then write separately,
// which is what keeps concurrent triggers from double-recording a transition.
type Gate struct {
	mu        sync.Mutex
	store     EventStore
	cooldown  time.Duration
	retention int
	now       func() time.Time
	logger    *zap.Logger
}

// NewGate creates a gate over the given store
func NewGate(store EventStore, cooldown time.Duration, retention int, logger *zap.Logger) *Gate {
	return &Gate{
		store:     store,
		cooldown:  cooldown,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock replaces the gate's clock, for tests
func (g *Gate) SetClock(now func() time.Time) {
	g.now = now
}

// Admit decides whether a transition may be recorded and, if so, records it.
// Returns the persisted event and true on admission; nil and false when the
// transition is rejected by the exit-requires-prior-enter rule or the
// cooldown window. A write failure returns an error with nothing admitted.
//
// The whole scan-then-write runs under the gate mutex, so concurrent callers
// serialize here rather than racing past the duplicate check.
func (g *Gate) Admit(zone models.Zone, t models.TransitionType) (*models.Event, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// An exit is only meaningful if the retained log confirms the user was
	// ever inside. Note this scans the capped log: an enter that aged out
	// during a very long stay suppresses the matching exit.
	if t == models.TransitionExit {
		hasEnter, err := g.store.HasEnter(zone.ID)
		if err != nil {
			g.logger.Warn("enter-scan failed, treating log as empty", zap.String("zone", zone.ID), zap.Error(err))
			hasEnter = false
		}
		if !hasEnter {
			g.logger.Debug("exit rejected, no prior enter", zap.String("zone", zone.ID))
			return nil, false, nil
		}
	}

	now := g.now()

	last, err := g.store.LastTransition(zone.ID, t)
	if err != nil {
		// Degrade to empty-log semantics: a broken read must not silence
		// a genuine alert.
		g.logger.Warn("cooldown scan failed, admitting", zap.String("zone", zone.ID), zap.Error(err))
		last = nil
	}
	if last != nil && now.Sub(last.OccurredAt) < g.cooldown {
		g.logger.Debug("transition within cooldown window",
			zap.String("zone", zone.ID),
			zap.String("transition", string(t)),
			zap.Duration("since", now.Sub(last.OccurredAt)))
		return nil, false, nil
	}

	event := models.Event{
		ID:          uuid.NewString(),
		ZoneID:      zone.ID,
		Transition:  t,
		HazardType:  zone.HazardType,
		Severity:    zone.Severity,
		Title:       zone.Title,
		Description: zone.Description,
		OccurredAt:  now,
	}

	if err := g.store.Insert(event); err != nil {
		return nil, false, fmt.Errorf("failed to record %s for zone %s: %w", t, zone.ID, err)
	}
	if err := g.store.Trim(g.retention); err != nil {
		// The event is durable; a failed trim only delays cleanup.
		g.logger.Warn("failed to trim event log", zap.Error(err))
	}

	return &event, true, nil
}
