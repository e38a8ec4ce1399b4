// Package position abstracts "where is the user now": a live platform
// provider with tiered accuracy fallback, optionally shadowed by an
// operator-supplied test-mode override.
package position

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

var (
	// ErrPermissionDenied indicates the user has not granted location access
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrNoLocation indicates every fallback tier was exhausted. Enabling the
	// test-mode override is the recovery path on headless environments.
	ErrNoLocation = errors.New("no location available")
)

// Accuracy selects the provider tier to query
type Accuracy int

const (
	AccuracyHigh Accuracy = iota
	AccuracyLow
)

// Provider is the live platform location capability
type Provider interface {
	RequestPermission(ctx context.Context) error
	Position(ctx context.Context, acc Accuracy) (models.Position, error)
	LastKnown(ctx context.Context) (models.Position, error)
}

// OverrideStore persists override state across restarts
type OverrideStore interface {
	Save(enabled bool, p models.Position) error
}

// Source resolves the current position. The override, when enabled, takes
// priority over the live provider.
type Source struct {
	mu              sync.RWMutex
	provider        Provider
	override        models.Position
	overrideEnabled bool
	subscribers     map[int]func(models.Position)
	nextSubID       int

	store        OverrideStore
	stageTimeout time.Duration
	logger       *zap.Logger
}

// Option configures a Source
type Option func(*Source)

// WithOverrideStore persists override changes to the given store
func WithOverrideStore(store OverrideStore) Option {
	return func(s *Source) { s.store = store }
}

// WithStageTimeout bounds each fallback stage of Current
func WithStageTimeout(d time.Duration) Option {
	return func(s *Source) { s.stageTimeout = d }
}

// WithRestoredOverride seeds the override state loaded from persistence.
// Invalid positions are ignored rather than restored.
func WithRestoredOverride(enabled bool, p models.Position) Option {
	return func(s *Source) {
		if p.Validate() != nil {
			return
		}
		s.overrideEnabled = enabled
		s.override = p
	}
}

// NewSource creates a position source backed by the given live provider
func NewSource(provider Provider, logger *zap.Logger, opts ...Option) *Source {
	s := &Source{
		provider:     provider,
		subscribers:  make(map[int]func(models.Position)),
		stageTimeout: 15 * time.Second,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestPermission asks the live provider for location access. Denial is
// user-facing and recoverable, never fatal.
func (s *Source) RequestPermission(ctx context.Context) error {
	return s.provider.RequestPermission(ctx)
}

// Current resolves the position: the override when enabled, otherwise the
// live provider with cascading fallback high accuracy -> low accuracy ->
// last-known cached -> ErrNoLocation.
func (s *Source) Current(ctx context.Context) (models.Position, error) {
	s.mu.RLock()
	if s.overrideEnabled {
		p := s.override
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	if p, err := s.stage(ctx, func(ctx context.Context) (models.Position, error) {
		return s.provider.Position(ctx, AccuracyHigh)
	}); err == nil {
		return p, nil
	} else {
		s.logger.Debug("high-accuracy position failed", zap.Error(err))
	}

	if p, err := s.stage(ctx, func(ctx context.Context) (models.Position, error) {
		return s.provider.Position(ctx, AccuracyLow)
	}); err == nil {
		return p, nil
	} else {
		s.logger.Debug("low-accuracy position failed", zap.Error(err))
	}

	if p, err := s.stage(ctx, s.provider.LastKnown); err == nil {
		return p, nil
	} else {
		s.logger.Debug("last-known position failed", zap.Error(err))
	}

	return models.Position{}, ErrNoLocation
}

func (s *Source) stage(ctx context.Context, fn func(context.Context) (models.Position, error)) (models.Position, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()
	return fn(stageCtx)
}

// SetOverride enables or disables the test-mode override. Enabling validates
// the position, makes it the active position, and notifies subscribers
// synchronously. Out-of-range positions are rejected with the previous state
// unchanged. Disabling reverts to the live provider on the next Current call.
func (s *Source) SetOverride(enabled bool, p models.Position) error {
	if enabled {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if enabled {
		s.override = p
	}
	s.overrideEnabled = enabled
	persisted := s.override
	subs := make([]func(models.Position), 0, len(s.subscribers))
	if enabled {
		for _, fn := range s.subscribers {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(enabled, persisted); err != nil {
			s.logger.Warn("failed to persist override", zap.Error(err))
		}
	}

	for _, fn := range subs {
		fn(p)
	}
	return nil
}

// Override returns the current override state
func (s *Source) Override() (bool, models.Position) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overrideEnabled, s.override
}

// Subscribe registers a callback fired on override-driven position changes.
// Live GPS ticks do not fan out here; only synthetic operator movement does.
func (s *Source) Subscribe(fn func(models.Position)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}
