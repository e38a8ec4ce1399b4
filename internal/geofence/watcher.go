// Package geofence provides an in-process stand-in for a platform geofencing
// capability: a watcher that re-evaluates containment on an interval and
// emits enter/exit callbacks by diffing the set of zones the position is
// inside.
package geofence

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/models"
	"github.com/preparenow/alerts-backend-go/internal/spatial"
)

// PositionFunc resolves the position to evaluate against
type PositionFunc func(ctx context.Context) (models.Position, error)

// Watcher tracks region containment and fires boundary-crossing callbacks.
// Registering while running replaces the watched set; containment state for
// zones that survive the replacement is kept so they do not re-fire.
type Watcher struct {
	mu      sync.Mutex
	zones   []models.Zone
	inside  map[string]bool
	onEnter func(string)
	onExit  func(string)
	stop    chan struct{}

	position PositionFunc
	interval time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher polling the given position source
func NewWatcher(position PositionFunc, interval time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		inside:   make(map[string]bool),
		position: position,
		interval: interval,
		logger:   logger,
	}
}

// Register replaces the watched zone set and callbacks, starting the
// evaluation loop if it is not already running
func (w *Watcher) Register(zones []models.Zone, onEnter, onExit func(zoneID string)) error {
	w.mu.Lock()
	w.zones = zones
	w.onEnter = onEnter
	w.onExit = onExit

	keep := make(map[string]bool, len(zones))
	for _, z := range zones {
		keep[z.ID] = true
	}
	for id := range w.inside {
		if !keep[id] {
			delete(w.inside, id)
		}
	}

	if w.stop == nil {
		w.stop = make(chan struct{})
		go w.loop(w.stop)
	}
	w.mu.Unlock()
	return nil
}

// Unregister stops the evaluation loop and clears containment state
func (w *Watcher) Unregister() error {
	w.mu.Lock()
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
	w.zones = nil
	w.inside = make(map[string]bool)
	w.onEnter = nil
	w.onExit = nil
	w.mu.Unlock()
	return nil
}

func (w *Watcher) loop(stop chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Evaluate(context.Background())
		}
	}
}

// Evaluate resolves the position once and fires callbacks for every zone
// boundary crossed since the previous evaluation. Also called directly when
// a synthetic position change should take effect without waiting for the
// next tick.
func (w *Watcher) Evaluate(ctx context.Context) {
	pos, err := w.position(ctx)
	if err != nil {
		w.logger.Debug("geofence evaluation skipped", zap.Error(err))
		return
	}

	type crossing struct {
		zoneID string
		enter  bool
	}

	w.mu.Lock()
	var crossings []crossing
	for _, zone := range w.zones {
		nowInside := spatial.IsInside(pos, zone)
		if nowInside != w.inside[zone.ID] {
			crossings = append(crossings, crossing{zoneID: zone.ID, enter: nowInside})
			w.inside[zone.ID] = nowInside
		}
	}
	onEnter, onExit := w.onEnter, w.onExit
	w.mu.Unlock()

	for _, c := range crossings {
		if c.enter && onEnter != nil {
			onEnter(c.zoneID)
		} else if !c.enter && onExit != nil {
			onExit(c.zoneID)
		}
	}
}
