package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/api"
	"github.com/preparenow/alerts-backend-go/internal/catalog"
	"github.com/preparenow/alerts-backend-go/internal/config"
	"github.com/preparenow/alerts-backend-go/internal/database"
	"github.com/preparenow/alerts-backend-go/internal/geofence"
	"github.com/preparenow/alerts-backend-go/internal/logger"
	"github.com/preparenow/alerts-backend-go/internal/models"
	"github.com/preparenow/alerts-backend-go/internal/monitor"
	"github.com/preparenow/alerts-backend-go/internal/notify"
	"github.com/preparenow/alerts-backend-go/internal/position"
	"github.com/preparenow/alerts-backend-go/internal/repository"
	"github.com/preparenow/alerts-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	zlog := logger.New(cfg.Environment)
	defer func() { _ = zlog.Sync() }()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	eventRepo := repository.NewEventRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)

	cat := catalog.New(zlog)
	cat.SetZones(seedZones())

	srcOpts := []position.Option{
		position.WithOverrideStore(overrideRepo),
		position.WithStageTimeout(cfg.PositionTimeout),
	}
	if enabled, pos, found, err := overrideRepo.Load(); err != nil {
		zlog.Warn("could not restore override state", zap.Error(err))
	} else if found {
		srcOpts = append(srcOpts, position.WithRestoredOverride(enabled, pos))
	}
	src := position.NewSource(position.HeadlessProvider{}, zlog, srcOpts...)

	var mirror notify.Mirror
	if cfg.MirrorEnabled {
		m, err := notify.NewMQTTMirror(cfg.MirrorBroker, cfg.MirrorClientID, cfg.MirrorTopic)
		if err != nil {
			// Best-effort channel: run without it rather than failing startup
			zlog.Warn("alert mirror unavailable", zap.Error(err))
		} else {
			defer m.Close()
			mirror = m
		}
	}
	dispatcher := notify.NewDispatcher(notify.NewLogSender(zlog), mirror, zlog)

	watcher := geofence.NewWatcher(src.Current, cfg.PollInterval, zlog)
	gate := monitor.NewGate(eventRepo, cfg.CooldownWindow, cfg.RetentionCap, zlog)

	mon := monitor.New(monitor.Config{
		Catalog:      cat,
		Source:       src,
		Provider:     watcher,
		Gate:         gate,
		Notifier:     dispatcher,
		PollInterval: cfg.PollInterval,
		GracePeriod:  cfg.GracePeriod,
		Logger:       zlog,
	})

	// Simulated movement should cross boundaries immediately, not on the
	// next watcher tick
	src.Subscribe(func(models.Position) {
		watcher.Evaluate(context.Background())
	})

	svc := service.NewMonitoringService(mon, cat, src, eventRepo, zlog)

	router := api.SetupRouter(svc, zlog)
	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// seedZones are the demo hazard zones used until the external feed delivers
// a catalog through PUT /api/v1/zones
func seedZones() []models.Zone {
	return []models.Zone{
		{
			ID:           "flood-derby-center",
			Latitude:     52.9225,
			Longitude:    -1.4746,
			RadiusMeters: 500,
			HazardType:   models.HazardFlood,
			Severity:     models.SeverityHigh,
			Title:        "Flood Zone - Derby City Centre",
			Description:  "River Derwent flooding risk",
			Active:       true,
		},
		{
			ID:           "evacuation-north-derby",
			Latitude:     52.9425,
			Longitude:    -1.4746,
			RadiusMeters: 300,
			HazardType:   models.HazardEvacuation,
			Severity:     models.SeverityCritical,
			Title:        "Evacuation Zone - North Derby",
			Description:  "Immediate evacuation required",
			Active:       true,
		},
		{
			ID:           "fire-west-derby",
			Latitude:     52.9225,
			Longitude:    -1.5046,
			RadiusMeters: 400,
			HazardType:   models.HazardFire,
			Severity:     models.SeverityWarning,
			Title:        "Fire Risk - West Derby",
			Description:  "Industrial fire hazard",
			Active:       true,
		},
		{
			ID:           "storm-east-derby",
			Latitude:     52.9225,
			Longitude:    -1.4446,
			RadiusMeters: 600,
			HazardType:   models.HazardStorm,
			Severity:     models.SeverityWarning,
			Title:        "Storm Warning - East Derby",
			Description:  "Severe weather approaching",
			Active:       true,
		},
	}
}
