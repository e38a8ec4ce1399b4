package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/catalog"
	"github.com/preparenow/alerts-backend-go/internal/models"
	"github.com/preparenow/alerts-backend-go/internal/spatial"
)

// ErrNoZones indicates Start was called with an empty zone catalog. Retry
// once the zone feed has delivered.
var ErrNoZones = errors.New("no zones available to monitor")

// State is the monitoring lifecycle state
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateActive   State = "active"
)

// GeofenceProvider is the platform geofencing capability. Register replaces
// the watched region set; callbacks fire with the crossed zone's ID.
type GeofenceProvider interface {
	Register(zones []models.Zone, onEnter, onExit func(zoneID string)) error
	Unregister() error
}

// PositionSource resolves the current position
type PositionSource interface {
	RequestPermission(ctx context.Context) error
	Current(ctx context.Context) (models.Position, error)
}

// Notifier delivers user-facing alerts for admitted transitions
type Notifier interface {
	Dispatch(zone models.Zone, t models.TransitionType)
}

// ZoneLoader fetches zones when the catalog is empty at start time
type ZoneLoader func(ctx context.Context) ([]models.Zone, error)

// Monitor orchestrates geofence registration, transition callbacks, startup
// reconciliation and the periodic re-check loop, driving every transition
// through the gate before any notification goes out.
type Monitor struct {
	mu         sync.Mutex
	state      State
	graceUntil time.Time
	cron       *cron.Cron
	unsubZones func()

	catalog  *catalog.Catalog
	source   PositionSource
	provider GeofenceProvider
	gate     *Gate
	notifier Notifier
	loader   ZoneLoader

	pollInterval time.Duration
	gracePeriod  time.Duration
	checkTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// Config wires a Monitor
type Config struct {
	Catalog  *catalog.Catalog
	Source   PositionSource
	Provider GeofenceProvider
	Gate     *Gate
	Notifier Notifier
	Loader   ZoneLoader // optional

	PollInterval time.Duration
	GracePeriod  time.Duration
	Logger       *zap.Logger
}

// New creates a stopped monitor
func New(cfg Config) *Monitor {
	return &Monitor{
		state:        StateStopped,
		catalog:      cfg.Catalog,
		source:       cfg.Source,
		provider:     cfg.Provider,
		gate:         cfg.Gate,
		notifier:     cfg.Notifier,
		loader:       cfg.Loader,
		pollInterval: cfg.PollInterval,
		gracePeriod:  cfg.GracePeriod,
		checkTimeout: 30 * time.Second,
		now:          time.Now,
		logger:       cfg.Logger,
	}
}

// SetClock replaces the monitor's clock, for tests
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}

// State returns the current lifecycle state and whether the startup grace
// window is still open
func (m *Monitor) State() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.state == StateActive && m.now().Before(m.graceUntil)
}

// Start brings the monitor to Active. Idempotent: a second Start while
// Active returns immediately without re-registering, since re-registration
// would re-fire synthetic "already inside" callbacks and double-notify.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateActive {
		return nil
	}
	m.state = StateStarting

	zones := m.catalog.Zones()
	if len(zones) == 0 && m.loader != nil {
		loaded, err := m.loader(ctx)
		if err != nil {
			m.logger.Warn("zone load failed", zap.Error(err))
		} else {
			m.catalog.SetZones(loaded)
			zones = m.catalog.Zones()
		}
	}
	if len(zones) == 0 {
		m.state = StateStopped
		return ErrNoZones
	}

	if err := m.source.RequestPermission(ctx); err != nil {
		m.state = StateStopped
		return fmt.Errorf("location permission not granted: %w", err)
	}

	if err := m.provider.Register(zones, m.onEnter, m.onExit); err != nil {
		m.state = StateStopped
		return fmt.Errorf("failed to register geofence regions: %w", err)
	}

	pos, err := m.source.Current(ctx)
	if err != nil {
		if uerr := m.provider.Unregister(); uerr != nil {
			m.logger.Warn("unregister after failed start", zap.Error(uerr))
		}
		m.state = StateStopped
		return fmt.Errorf("failed to resolve position at start: %w", err)
	}

	// Silent startup reconciliation: record containment that predates this
	// session without waking the user for it.
	for _, zone := range zones {
		if !spatial.IsInside(pos, zone) {
			continue
		}
		if _, admitted, err := m.gate.Admit(zone, models.TransitionEnter); err != nil {
			m.logger.Error("startup reconciliation write failed", zap.String("zone", zone.ID), zap.Error(err))
		} else if admitted {
			m.logger.Info("reconciled pre-existing containment", zap.String("zone", zone.ID))
		}
	}

	// Exits observed before this deadline are registration artifacts,
	// not movement.
	m.graceUntil = m.now().Add(m.gracePeriod)

	m.unsubZones = m.catalog.Subscribe(m.onZonesReplaced)

	m.cron = cron.New()
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.pollInterval), m.pollTick); err != nil {
		// Interval comes from config; a parse failure means the poll loop
		// is lost, not the monitor.
		m.logger.Error("failed to schedule periodic check", zap.Error(err))
	} else {
		m.cron.Start()
	}

	m.state = StateActive
	m.logger.Info("monitoring started", zap.Int("zones", len(zones)))
	return nil
}

// Stop unregisters regions and cancels the periodic check. Idempotent.
// In-flight manual checks complete but their results are advisory only.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateStopped {
		return nil
	}

	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
	if m.unsubZones != nil {
		m.unsubZones()
		m.unsubZones = nil
	}

	err := m.provider.Unregister()
	m.state = StateStopped
	if err != nil {
		return fmt.Errorf("failed to unregister geofence regions: %w", err)
	}
	m.logger.Info("monitoring stopped")
	return nil
}

// ManualCheck resolves the current position and attempts an enter admission
// for every zone containing it. Cooldown-blocked attempts are skipped
// silently. Returns the IDs of zones whose enter was newly admitted.
//
// Safe to call concurrently with OS callbacks and with itself: the gate's
// serialized admit-and-write is what prevents double-recording, not any
// locking here. Exits are never evaluated by a manual check.
func (m *Monitor) ManualCheck(ctx context.Context) ([]string, error) {
	pos, err := m.source.Current(ctx)
	if err != nil {
		return nil, err
	}

	triggered := []string{}
	for _, zone := range m.catalog.Zones() {
		if !spatial.IsInside(pos, zone) {
			continue
		}
		event, admitted, err := m.gate.Admit(zone, models.TransitionEnter)
		if err != nil {
			m.logger.Error("manual check write failed", zap.String("zone", zone.ID), zap.Error(err))
			continue
		}
		if !admitted {
			continue
		}
		m.notifier.Dispatch(zone, models.TransitionEnter)
		triggered = append(triggered, event.ZoneID)
	}
	return triggered, nil
}

// onEnter handles an enter callback from the geofence provider
func (m *Monitor) onEnter(zoneID string) {
	zone, ok := m.findZone(zoneID)
	if !ok {
		m.logger.Warn("enter callback for unknown zone", zap.String("zone", zoneID))
		return
	}
	_, admitted, err := m.gate.Admit(zone, models.TransitionEnter)
	if err != nil {
		m.logger.Error("enter admission failed", zap.String("zone", zoneID), zap.Error(err))
		return
	}
	if admitted {
		m.notifier.Dispatch(zone, models.TransitionEnter)
	}
}

// onExit handles an exit callback from the geofence provider
func (m *Monitor) onExit(zoneID string) {
	if m.inGrace() {
		m.logger.Debug("exit discarded during startup grace window", zap.String("zone", zoneID))
		return
	}
	zone, ok := m.findZone(zoneID)
	if !ok {
		m.logger.Warn("exit callback for unknown zone", zap.String("zone", zoneID))
		return
	}
	_, admitted, err := m.gate.Admit(zone, models.TransitionExit)
	if err != nil {
		m.logger.Error("exit admission failed", zap.String("zone", zoneID), zap.Error(err))
		return
	}
	if admitted {
		m.notifier.Dispatch(zone, models.TransitionExit)
	}
}

// onZonesReplaced re-registers the provider with the refreshed catalog
func (m *Monitor) onZonesReplaced(zones []models.Zone) {
	m.mu.Lock()
	active := m.state == StateActive
	m.mu.Unlock()
	if !active {
		return
	}
	if err := m.provider.Register(zones, m.onEnter, m.onExit); err != nil {
		m.logger.Error("re-registration after zone refresh failed", zap.Error(err))
	}
}

func (m *Monitor) pollTick() {
	ctx, cancel := context.WithTimeout(context.Background(), m.checkTimeout)
	defer cancel()
	if _, err := m.ManualCheck(ctx); err != nil {
		m.logger.Warn("periodic check failed", zap.Error(err))
	}
}

func (m *Monitor) inGrace() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Before(m.graceUntil)
}

func (m *Monitor) findZone(zoneID string) (models.Zone, bool) {
	for _, z := range m.catalog.Zones() {
		if z.ID == zoneID {
			return z, true
		}
	}
	return models.Zone{}, false
}
