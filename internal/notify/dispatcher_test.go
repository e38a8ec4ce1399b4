package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

type mockSender struct {
	sendFn func(n Notification) error
	sent   []Notification
}

func (m *mockSender) Send(n Notification) error {
	m.sent = append(m.sent, n)
	if m.sendFn != nil {
		return m.sendFn(n)
	}
	return nil
}

type mockMirror struct {
	mu        sync.Mutex
	publishFn func(ctx context.Context, rec AlertRecord) error
	published []AlertRecord
	done      chan struct{}
}

func newMockMirror() *mockMirror {
	return &mockMirror{done: make(chan struct{}, 8)}
}

func (m *mockMirror) Publish(ctx context.Context, rec AlertRecord) error {
	m.mu.Lock()
	m.published = append(m.published, rec)
	fn := m.publishFn
	m.mu.Unlock()
	m.done <- struct{}{}
	if fn != nil {
		return fn(ctx, rec)
	}
	return nil
}

func (m *mockMirror) waitForPublish(t *testing.T) AlertRecord {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("mirror publish never happened")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published[len(m.published)-1]
}

func criticalFireZone() models.Zone {
	return models.Zone{
		ID:           "fire-1",
		Latitude:     52.9225,
		Longitude:    -1.5046,
		RadiusMeters: 400,
		HazardType:   models.HazardFire,
		Severity:     models.SeverityCritical,
		Title:        "Fire Risk - West Derby",
		Description:  "Industrial fire hazard",
		Active:       true,
	}
}

func TestMessageFor_SpecificTemplates(t *testing.T) {
	zone := criticalFireZone()

	msg := MessageFor(zone, models.TransitionEnter)
	if msg.Title != "CRITICAL FIRE ALERT" {
		t.Errorf("unexpected enter title: %s", msg.Title)
	}

	msg = MessageFor(zone, models.TransitionExit)
	if msg.Title != "Left Fire Zone" {
		t.Errorf("unexpected exit title: %s", msg.Title)
	}
}

func TestMessageFor_GenericFallbacks(t *testing.T) {
	zone := criticalFireZone()
	zone.HazardType = models.HazardTsunami
	zone.Severity = models.SeverityWarning

	msg := MessageFor(zone, models.TransitionEnter)
	if msg.Title != "WARNING ALERT" {
		t.Errorf("unexpected fallback enter title: %s", msg.Title)
	}
	if msg.Body != "You have entered a warning tsunami zone." {
		t.Errorf("unexpected fallback enter body: %s", msg.Body)
	}

	msg = MessageFor(zone, models.TransitionExit)
	if msg.Title != "Zone Exited" {
		t.Errorf("unexpected fallback exit title: %s", msg.Title)
	}
}

func TestDispatch_ElevatesHighSeverity(t *testing.T) {
	sender := &mockSender{}
	d := NewDispatcher(sender, nil, zap.NewNop())

	zone := criticalFireZone()
	d.Dispatch(zone, models.TransitionEnter)

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sender.sent))
	}
	n := sender.sent[0]
	if !n.Sound || !n.HighPriority {
		t.Errorf("critical severity must elevate sound and priority: %+v", n)
	}
	if n.Data["zoneId"] != "fire-1" || n.Data["eventType"] != "enter" {
		t.Errorf("unexpected data payload: %+v", n.Data)
	}

	zone.Severity = models.SeverityWarning
	d.Dispatch(zone, models.TransitionEnter)
	n = sender.sent[1]
	if n.Sound || n.HighPriority {
		t.Errorf("warning severity must not elevate: %+v", n)
	}
}

func TestDispatch_MirrorsEnterOnly(t *testing.T) {
	sender := &mockSender{}
	mirror := newMockMirror()
	d := NewDispatcher(sender, mirror, zap.NewNop())

	zone := criticalFireZone()
	d.Dispatch(zone, models.TransitionEnter)

	rec := mirror.waitForPublish(t)
	if rec.ZoneID != "fire-1" || rec.Severity != models.SeverityCritical {
		t.Errorf("unexpected mirror record: %+v", rec)
	}
	if rec.Latitude != zone.Latitude || rec.Radius != zone.RadiusMeters {
		t.Errorf("mirror record missing geometry: %+v", rec)
	}
	if rec.ID == "" {
		t.Error("mirror record must carry an ID")
	}

	d.Dispatch(zone, models.TransitionExit)
	time.Sleep(50 * time.Millisecond)
	mirror.mu.Lock()
	n := len(mirror.published)
	mirror.mu.Unlock()
	if n != 1 {
		t.Errorf("exit transitions must not be mirrored, got %d records", n)
	}
}

func TestDispatch_MirrorFailureSwallowed(t *testing.T) {
	sender := &mockSender{}
	mirror := newMockMirror()
	mirror.publishFn = func(context.Context, AlertRecord) error {
		return errors.New("feed down")
	}
	d := NewDispatcher(sender, mirror, zap.NewNop())

	// Must not panic or block; local notification still delivered
	d.Dispatch(criticalFireZone(), models.TransitionEnter)
	mirror.waitForPublish(t)
	if len(sender.sent) != 1 {
		t.Errorf("local delivery must be unaffected by mirror failure, got %d", len(sender.sent))
	}
}

func TestDispatch_SenderFailureDoesNotPanic(t *testing.T) {
	sender := &mockSender{sendFn: func(Notification) error { return errors.New("surface gone") }}
	d := NewDispatcher(sender, nil, zap.NewNop())
	d.Dispatch(criticalFireZone(), models.TransitionEnter)
}
