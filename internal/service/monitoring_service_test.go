package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/catalog"
	"github.com/preparenow/alerts-backend-go/internal/models"
	"github.com/preparenow/alerts-backend-go/internal/monitor"
	"github.com/preparenow/alerts-backend-go/internal/position"
)

type mockMonitor struct {
	startFn       func(ctx context.Context) error
	stopFn        func() error
	stateFn       func() (monitor.State, bool)
	manualCheckFn func(ctx context.Context) ([]string, error)
	checkCalls    int
}

func (m *mockMonitor) Start(ctx context.Context) error {
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	return nil
}

func (m *mockMonitor) Stop() error {
	if m.stopFn != nil {
		return m.stopFn()
	}
	return nil
}

func (m *mockMonitor) State() (monitor.State, bool) {
	if m.stateFn != nil {
		return m.stateFn()
	}
	return monitor.StateStopped, false
}

func (m *mockMonitor) ManualCheck(ctx context.Context) ([]string, error) {
	m.checkCalls++
	if m.manualCheckFn != nil {
		return m.manualCheckFn(ctx)
	}
	return nil, nil
}

type mockEventLog struct {
	listFn     func(limit int) ([]models.Event, error)
	criticalFn func() ([]models.Event, error)
	clearFn    func() error
}

func (m *mockEventLog) List(limit int) ([]models.Event, error) {
	if m.listFn != nil {
		return m.listFn(limit)
	}
	return nil, nil
}

func (m *mockEventLog) CriticalEntries() ([]models.Event, error) {
	if m.criticalFn != nil {
		return m.criticalFn()
	}
	return nil, nil
}

func (m *mockEventLog) Clear() error {
	if m.clearFn != nil {
		return m.clearFn()
	}
	return nil
}

type stubProvider struct{}

func (stubProvider) RequestPermission(context.Context) error { return nil }
func (stubProvider) Position(context.Context, position.Accuracy) (models.Position, error) {
	return models.Position{}, errors.New("unavailable")
}
func (stubProvider) LastKnown(context.Context) (models.Position, error) {
	return models.Position{}, errors.New("unavailable")
}

func derbyZones() []models.Zone {
	return []models.Zone{
		{ID: "near", Latitude: 52.9225, Longitude: -1.4746, RadiusMeters: 300, Active: true},
		{ID: "far", Latitude: 52.9425, Longitude: -1.4746, RadiusMeters: 300, Active: true},
	}
}

func newTestService(mon MonitorAPI, events EventLog) (*MonitoringService, *catalog.Catalog, *position.Source) {
	cat := catalog.New(zap.NewNop())
	src := position.NewSource(stubProvider{}, zap.NewNop())
	svc := NewMonitoringService(mon, cat, src, events, zap.NewNop())
	return svc, cat, src
}

func TestNearbyZones_SortedByDistance(t *testing.T) {
	svc, cat, _ := newTestService(&mockMonitor{}, &mockEventLog{})
	cat.SetZones(derbyZones())

	at := models.Position{Latitude: 52.9225, Longitude: -1.4746}
	zones, err := svc.NearbyZones(context.Background(), &at)
	if err != nil {
		t.Fatalf("nearby zones: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].ID != "near" || zones[1].ID != "far" {
		t.Errorf("expected ascending distance order, got %s then %s", zones[0].ID, zones[1].ID)
	}
	if !zones[0].IsInside {
		t.Error("position at center must be inside the near zone")
	}
	if zones[1].IsInside {
		t.Error("position ~2.2km away must be outside the far zone")
	}
	if zones[0].DistanceMeters > zones[1].DistanceMeters {
		t.Error("distances not ascending")
	}
}

func TestNearbyZones_RejectsInvalidPosition(t *testing.T) {
	svc, cat, _ := newTestService(&mockMonitor{}, &mockEventLog{})
	cat.SetZones(derbyZones())

	bad := models.Position{Latitude: 999}
	if _, err := svc.NearbyZones(context.Background(), &bad); !errors.Is(err, models.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestNearbyZones_NoPositionAvailable(t *testing.T) {
	svc, cat, _ := newTestService(&mockMonitor{}, &mockEventLog{})
	cat.SetZones(derbyZones())

	if _, err := svc.NearbyZones(context.Background(), nil); !errors.Is(err, position.ErrNoLocation) {
		t.Fatalf("expected ErrNoLocation without override or provider, got %v", err)
	}
}

func TestActiveZones_InsideOnly(t *testing.T) {
	svc, cat, src := newTestService(&mockMonitor{}, &mockEventLog{})
	cat.SetZones(derbyZones())

	if err := src.SetOverride(true, models.Position{Latitude: 52.9225, Longitude: -1.4746}); err != nil {
		t.Fatalf("set override: %v", err)
	}

	active, err := svc.ActiveZones(context.Background())
	if err != nil {
		t.Fatalf("active zones: %v", err)
	}
	if len(active) != 1 || active[0].ID != "near" {
		t.Fatalf("expected only the containing zone, got %+v", active)
	}
}

func TestOverrideChange_TriggersManualCheck(t *testing.T) {
	mon := &mockMonitor{}
	svc, _, _ := newTestService(mon, &mockEventLog{})

	if err := svc.SetOverride(true, models.Position{Latitude: 1, Longitude: 2}); err != nil {
		t.Fatalf("set override: %v", err)
	}
	if mon.checkCalls != 1 {
		t.Errorf("expected one manual check after override change, got %d", mon.checkCalls)
	}

	// Disabling does not trigger a check
	if err := svc.SetOverride(false, models.Position{}); err != nil {
		t.Fatalf("disable override: %v", err)
	}
	if mon.checkCalls != 1 {
		t.Errorf("expected no check on disable, got %d", mon.checkCalls)
	}
}

func TestEventHistoryDelegation(t *testing.T) {
	wantErr := errors.New("db gone")
	log := &mockEventLog{
		listFn: func(limit int) ([]models.Event, error) {
			if limit != 25 {
				t.Errorf("limit not forwarded: %d", limit)
			}
			return []models.Event{{ID: "e1"}}, nil
		},
		clearFn: func() error { return wantErr },
	}
	svc, _, _ := newTestService(&mockMonitor{}, log)

	events, err := svc.EventHistory(25)
	if err != nil || len(events) != 1 {
		t.Fatalf("unexpected history result: %v %v", events, err)
	}
	if err := svc.ClearEventHistory(); !errors.Is(err, wantErr) {
		t.Errorf("clear error not propagated: %v", err)
	}
}

func TestReplaceZones_FiltersThroughCatalog(t *testing.T) {
	svc, cat, _ := newTestService(&mockMonitor{}, &mockEventLog{})

	svc.ReplaceZones([]models.Zone{
		{ID: "a", Active: true},
		{ID: "b", Active: false},
	})
	if cat.Len() != 1 {
		t.Errorf("expected inactive zones filtered, got %d", cat.Len())
	}
}
