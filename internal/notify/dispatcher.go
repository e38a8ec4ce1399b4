// Package notify formats zone-transition alerts, hands them to the platform
// notification surface, and best-effort mirrors enter alerts to a shared
// remote feed.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

// Notification is the payload handed to the platform notification surface
type Notification struct {
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Sound        bool              `json:"sound"`
	HighPriority bool              `json:"highPriority"`
	Data         map[string]string `json:"data"`
}

// Sender is the platform notification surface
type Sender interface {
	Send(n Notification) error
}

// AlertRecord is the summarized alert mirrored to the remote feed for other
// clients to read
type AlertRecord struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    models.Severity   `json:"severity"`
	HazardType  models.HazardType `json:"hazardType"`
	ZoneID      string            `json:"zoneId"`
	Timestamp   time.Time         `json:"timestamp"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Radius      float64           `json:"radius"`
}

// Mirror is the write-only remote alert sink
type Mirror interface {
	Publish(ctx context.Context, rec AlertRecord) error
}

// Dispatcher formats and delivers alerts for admitted transitions
type Dispatcher struct {
	sender        Sender
	mirror        Mirror // nil disables mirroring
	mirrorTimeout time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

// NewDispatcher creates a dispatcher. mirror may be nil.
func NewDispatcher(sender Sender, mirror Mirror, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender:        sender,
		mirror:        mirror,
		mirrorTimeout: 10 * time.Second,
		now:           time.Now,
		logger:        logger,
	}
}

// Dispatch delivers a local notification for the transition and, on enter,
// mirrors a summary to the remote feed. Mirror failures are logged and
// swallowed: the local event log is the source of truth and an already
// committed admission is never rolled back or blocked by the side channel.
func (d *Dispatcher) Dispatch(zone models.Zone, t models.TransitionType) {
	msg := MessageFor(zone, t)
	elevated := zone.Severity.AtLeast(models.SeverityHigh)

	n := Notification{
		Title:        msg.Title,
		Body:         msg.Body,
		Sound:        elevated,
		HighPriority: zone.Severity == models.SeverityCritical,
		Data: map[string]string{
			"zoneId":     zone.ID,
			"severity":   string(zone.Severity),
			"hazardType": string(zone.HazardType),
			"eventType":  string(t),
		},
	}
	if err := d.sender.Send(n); err != nil {
		d.logger.Error("notification delivery failed", zap.String("zone", zone.ID), zap.Error(err))
	}

	if t != models.TransitionEnter || d.mirror == nil {
		return
	}

	rec := AlertRecord{
		ID:          uuid.NewString(),
		Title:       zone.Title,
		Description: zone.Description,
		Severity:    zone.Severity,
		HazardType:  zone.HazardType,
		ZoneID:      zone.ID,
		Timestamp:   d.now(),
		Latitude:    zone.Latitude,
		Longitude:   zone.Longitude,
		Radius:      zone.RadiusMeters,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.mirrorTimeout)
		defer cancel()
		if err := d.mirror.Publish(ctx, rec); err != nil {
			d.logger.Warn("remote alert mirror failed", zap.String("zone", zone.ID), zap.Error(err))
		}
	}()
}

// LogSender is a notification surface that writes alerts to the log. It is
// the default delivery path when no platform surface is attached.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-backed notification sender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification
func (s *LogSender) Send(n Notification) error {
	s.logger.Info("notification",
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.Bool("sound", n.Sound),
		zap.Bool("highPriority", n.HighPriority),
		zap.Any("data", n.Data))
	return nil
}
