package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/catalog"
	"github.com/preparenow/alerts-backend-go/internal/models"
	"github.com/preparenow/alerts-backend-go/internal/monitor"
	"github.com/preparenow/alerts-backend-go/internal/position"
	"github.com/preparenow/alerts-backend-go/internal/spatial"
)

// MonitorAPI is the monitor lifecycle surface the service composes
type MonitorAPI interface {
	Start(ctx context.Context) error
	Stop() error
	State() (monitor.State, bool)
	ManualCheck(ctx context.Context) ([]string, error)
}

// EventLog is the read/clear surface over the persisted event history
type EventLog interface {
	List(limit int) ([]models.Event, error)
	CriticalEntries() ([]models.Event, error)
	Clear() error
}

// MonitoringService owns the explicit state the application composes: zone
// catalog, position source, monitor and event history. UI-facing callers go
// through here and never bypass the gate.
type MonitoringService struct {
	monitor MonitorAPI
	catalog *catalog.Catalog
	source  *position.Source
	events  EventLog
	logger  *zap.Logger
}

// NewMonitoringService creates the service and wires the override-driven
// position change subscription: operator movement immediately runs one
// manual check pass so simulated moves surface alerts without waiting for a
// poll cycle.
func NewMonitoringService(mon MonitorAPI, cat *catalog.Catalog, src *position.Source, events EventLog, logger *zap.Logger) *MonitoringService {
	s := &MonitoringService{
		monitor: mon,
		catalog: cat,
		source:  src,
		events:  events,
		logger:  logger,
	}

	src.Subscribe(func(models.Position) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := mon.ManualCheck(ctx); err != nil {
			logger.Warn("check after override change failed", zap.Error(err))
		}
	})

	return s
}

// StartMonitoring brings geofence monitoring to Active
func (s *MonitoringService) StartMonitoring(ctx context.Context) error {
	return s.monitor.Start(ctx)
}

// StopMonitoring stops geofence monitoring
func (s *MonitoringService) StopMonitoring() error {
	return s.monitor.Stop()
}

// Status returns the monitoring state and whether the startup grace window
// is open
func (s *MonitoringService) Status() (monitor.State, bool) {
	return s.monitor.State()
}

// ManualCheck runs one enter-evaluation pass over the catalog
func (s *MonitoringService) ManualCheck(ctx context.Context) ([]string, error) {
	return s.monitor.ManualCheck(ctx)
}

// EventHistory returns the newest events first
func (s *MonitoringService) EventHistory(limit int) ([]models.Event, error) {
	return s.events.List(limit)
}

// CriticalEvents returns retained enter events with severity high or critical
func (s *MonitoringService) CriticalEvents() ([]models.Event, error) {
	return s.events.CriticalEntries()
}

// ClearEventHistory wipes the event log
func (s *MonitoringService) ClearEventHistory() error {
	return s.events.Clear()
}

// ReplaceZones delivers a refreshed zone list from the external feed
func (s *MonitoringService) ReplaceZones(zones []models.Zone) {
	s.catalog.SetZones(zones)
}

// NearbyZones returns every catalog zone with its distance/containment
// relative to the given position, sorted ascending by distance. A nil
// position resolves the current one.
func (s *MonitoringService) NearbyZones(ctx context.Context, at *models.Position) ([]models.ZoneMembership, error) {
	pos, err := s.resolve(ctx, at)
	if err != nil {
		return nil, err
	}

	zones := s.catalog.Zones()
	memberships := make([]models.ZoneMembership, 0, len(zones))
	for _, z := range zones {
		memberships = append(memberships, spatial.Membership(pos, z))
	}
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].DistanceMeters < memberships[j].DistanceMeters
	})
	return memberships, nil
}

// ActiveZones returns the zones currently containing the position
func (s *MonitoringService) ActiveZones(ctx context.Context) ([]models.ZoneMembership, error) {
	all, err := s.NearbyZones(ctx, nil)
	if err != nil {
		return nil, err
	}
	active := make([]models.ZoneMembership, 0, len(all))
	for _, m := range all {
		if m.IsInside {
			active = append(active, m)
		}
	}
	return active, nil
}

// SetOverride enables or disables the operator's test-mode position
func (s *MonitoringService) SetOverride(enabled bool, p models.Position) error {
	return s.source.SetOverride(enabled, p)
}

// Override returns the current override state
func (s *MonitoringService) Override() (bool, models.Position) {
	return s.source.Override()
}

func (s *MonitoringService) resolve(ctx context.Context, at *models.Position) (models.Position, error) {
	if at != nil {
		if err := at.Validate(); err != nil {
			return models.Position{}, err
		}
		return *at, nil
	}
	return s.source.Current(ctx)
}
