// Package catalog holds the in-memory snapshot of hazard zones. The catalog
// performs no I/O; an external collaborator (the zone feed) pushes refreshed
// lists through SetZones.
package catalog

import (
	"sync"

	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

// Catalog is a concurrency-safe, atomically replaceable zone list with
// change subscriptions
type Catalog struct {
	mu          sync.RWMutex
	zones       []models.Zone
	subscribers map[int]func([]models.Zone)
	nextSubID   int

	logger *zap.Logger
}

// New creates an empty catalog
func New(logger *zap.Logger) *Catalog {
	return &Catalog{
		subscribers: make(map[int]func([]models.Zone)),
		logger:      logger,
	}
}

// SetZones atomically replaces the catalog contents, keeping only active
// zones, and notifies all subscribers with the filtered list
func (c *Catalog) SetZones(zones []models.Zone) {
	filtered := make([]models.Zone, 0, len(zones))
	for _, z := range zones {
		if z.Active {
			filtered = append(filtered, z)
		}
	}

	c.mu.Lock()
	c.zones = filtered
	subs := make([]func([]models.Zone), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		c.notify(fn, filtered)
	}
}

// notify delivers one snapshot to one subscriber. A panicking subscriber must
// not prevent delivery to the others.
func (c *Catalog) notify(fn func([]models.Zone), zones []models.Zone) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("zone subscriber panicked", zap.Any("panic", r))
		}
	}()
	fn(snapshot(zones))
}

// Zones returns a copy of the current zone list
func (c *Catalog) Zones() []models.Zone {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot(c.zones)
}

// Len returns the number of active zones
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.zones)
}

// Subscribe registers a callback invoked on every SetZones. The returned
// function removes the subscription.
func (c *Catalog) Subscribe(fn func([]models.Zone)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func snapshot(zones []models.Zone) []models.Zone {
	out := make([]models.Zone, len(zones))
	copy(out, zones)
	return out
}
