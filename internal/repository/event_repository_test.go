package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/preparenow/alerts-backend-go/internal/database"
	"github.com/preparenow/alerts-backend-go/internal/models"
)

func openTestDB(t *testing.T) *EventRepository {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "events.db")})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEventRepository(db)
}

func testEvent(id, zoneID string, transition models.TransitionType, at time.Time) models.Event {
	return models.Event{
		ID:          id,
		ZoneID:      zoneID,
		Transition:  transition,
		HazardType:  models.HazardFlood,
		Severity:    models.SeverityHigh,
		Title:       "Flood Zone",
		Description: "River flooding risk",
		OccurredAt:  at,
	}
}

func TestInsertAndList_NewestFirst(t *testing.T) {
	repo := openTestDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"e1", "e2", "e3"} {
		ev := testEvent(id, "z1", models.TransitionEnter, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Insert(ev); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	events, err := repo.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].ID != "e3" || events[2].ID != "e1" {
		t.Errorf("expected newest-first ordering, got %s..%s", events[0].ID, events[2].ID)
	}
}

func TestTrim_KeepsNewest(t *testing.T) {
	repo := openTestDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		ev := testEvent(string(rune('a'+i)), "z1", models.TransitionEnter, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Insert(ev); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := repo.Trim(4); err != nil {
		t.Fatalf("trim: %v", err)
	}

	events, err := repo.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 retained events, got %d", len(events))
	}
	if events[0].ID != "j" {
		t.Errorf("expected newest event retained, got %s", events[0].ID)
	}
}

func TestLastTransition(t *testing.T) {
	repo := openTestDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	last, err := repo.LastTransition("z1", models.TransitionEnter)
	if err != nil {
		t.Fatalf("last transition: %v", err)
	}
	if last != nil {
		t.Fatal("expected nil for empty log")
	}

	if err := repo.Insert(testEvent("e1", "z1", models.TransitionEnter, base)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(testEvent("e2", "z1", models.TransitionEnter, base.Add(time.Minute))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(testEvent("e3", "z2", models.TransitionEnter, base.Add(2*time.Minute))); err != nil {
		t.Fatalf("insert: %v", err)
	}

	last, err = repo.LastTransition("z1", models.TransitionEnter)
	if err != nil {
		t.Fatalf("last transition: %v", err)
	}
	if last == nil || last.ID != "e2" {
		t.Fatalf("expected e2, got %+v", last)
	}
	if !last.OccurredAt.Equal(base.Add(time.Minute)) {
		t.Errorf("timestamp not round-tripped: %v", last.OccurredAt)
	}

	last, err = repo.LastTransition("z1", models.TransitionExit)
	if err != nil {
		t.Fatalf("last transition: %v", err)
	}
	if last != nil {
		t.Fatal("expected nil for transition never recorded")
	}
}

func TestHasEnter(t *testing.T) {
	repo := openTestDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ok, err := repo.HasEnter("z1")
	if err != nil {
		t.Fatalf("has enter: %v", err)
	}
	if ok {
		t.Fatal("expected no enter event yet")
	}

	if err := repo.Insert(testEvent("e1", "z1", models.TransitionExit, base)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ok, err = repo.HasEnter("z1")
	if err != nil {
		t.Fatalf("has enter: %v", err)
	}
	if ok {
		t.Fatal("exit event must not count as enter")
	}

	if err := repo.Insert(testEvent("e2", "z1", models.TransitionEnter, base.Add(time.Minute))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ok, err = repo.HasEnter("z1")
	if err != nil {
		t.Fatalf("has enter: %v", err)
	}
	if !ok {
		t.Fatal("expected enter event to be found")
	}
}

func TestCriticalEntries(t *testing.T) {
	repo := openTestDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	events := []models.Event{
		{ID: "e1", ZoneID: "z1", Transition: models.TransitionEnter, HazardType: models.HazardFlood, Severity: models.SeverityInfo, OccurredAt: base},
		{ID: "e2", ZoneID: "z2", Transition: models.TransitionEnter, HazardType: models.HazardFire, Severity: models.SeverityCritical, OccurredAt: base.Add(time.Minute)},
		{ID: "e3", ZoneID: "z2", Transition: models.TransitionExit, HazardType: models.HazardFire, Severity: models.SeverityCritical, OccurredAt: base.Add(2 * time.Minute)},
		{ID: "e4", ZoneID: "z3", Transition: models.TransitionEnter, HazardType: models.HazardStorm, Severity: models.SeverityHigh, OccurredAt: base.Add(3 * time.Minute)},
	}
	for _, e := range events {
		if err := repo.Insert(e); err != nil {
			t.Fatalf("insert %s: %v", e.ID, err)
		}
	}

	critical, err := repo.CriticalEntries()
	if err != nil {
		t.Fatalf("critical entries: %v", err)
	}
	if len(critical) != 2 {
		t.Fatalf("expected 2 critical entries, got %d", len(critical))
	}
	if critical[0].ID != "e4" || critical[1].ID != "e2" {
		t.Errorf("unexpected critical set: %s, %s", critical[0].ID, critical[1].ID)
	}
}

func TestClear(t *testing.T) {
	repo := openTestDB(t)
	if err := repo.Insert(testEvent("e1", "z1", models.TransitionEnter, time.Now())); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	events, err := repo.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty log, got %d events", len(events))
	}
}

func TestOverrideRoundTrip(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "events.db")})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewOverrideRepository(db)

	_, _, found, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("expected no stored override")
	}

	want := models.Position{Latitude: 52.9225, Longitude: -1.4746}
	if err := repo.Save(true, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	enabled, got, found, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found || !enabled || got != want {
		t.Errorf("round trip mismatch: enabled=%v found=%v pos=%+v", enabled, found, got)
	}

	if err := repo.Save(false, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	enabled, _, _, err = repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if enabled {
		t.Error("expected override disabled after second save")
	}
}
